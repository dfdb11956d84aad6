package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/IVANFROL/reklama-oleg/pkg/db/option"
	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
	"github.com/IVANFROL/reklama-oleg/pkg/featureflags"
	"github.com/IVANFROL/reklama-oleg/pkg/repository"
	"github.com/IVANFROL/reklama-oleg/services/catalog"
	"github.com/IVANFROL/reklama-oleg/services/identity"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdProvider is the slice of the catalog the ledger needs.
type AdProvider interface {
	GetActiveAd(ctx context.Context, id int64) (*catalog.Ad, error)
}

// Service owns every balance mutation in the system. Each mutating
// operation runs its read-check and its writes inside one transaction with
// the user row locked, so concurrent requests against the same user cannot
// double-credit a view or double-spend a balance.
type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	ads   AdProvider
	flags featureflags.FeatureFlag

	users        repository.Repository[identity.User]
	views        repository.Repository[AdView]
	applications repository.Repository[Application]
}

type ServiceParams struct {
	fx.In
	DB      *gorm.DB
	Node    *snowflake.Node
	Catalog *catalog.Service
	Flags   featureflags.FeatureFlag `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:           p.DB,
		node:         p.Node,
		ads:          p.Catalog,
		flags:        p.Flags,
		users:        repository.ProvideStore[identity.User](p.DB),
		views:        repository.ProvideStore[AdView](p.DB),
		applications: repository.ProvideStore[Application](p.DB),
	}
}

// startOfDay returns midnight of the server-local calendar day containing t.
// The reward window is the calendar date, not a rolling 24h span.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RecordAdView credits the ad's reward to the user and records the view.
// Fails with NotFound when the ad is missing or inactive, and with
// AlreadyRewarded when the user already viewed this ad today.
func (s *Service) RecordAdView(ctx context.Context, userID, adID int64) (*AdView, error) {
	ad, err := s.ads.GetActiveAd(ctx, adID)
	if err != nil {
		return nil, err
	}

	var view *AdView
	err = s.db.Transaction(func(tx *gorm.DB) error {
		usersTx := s.users.WithTrx(tx)
		viewsTx := s.views.WithTrx(tx)

		user, err := usersTx.FindOne(ctx, &identity.User{ID: userID},
			repository.WithScope(option.LockingUpdate))
		if err != nil {
			return err
		}
		if user == nil {
			return errutil.NotFound("User not found")
		}

		existing, err := viewsTx.FindOne(ctx, &AdView{UserID: userID, AdID: adID},
			repository.WithWhere("viewed_at >= ?", startOfDay(time.Now())))
		if err != nil {
			return err
		}
		if existing != nil {
			return errutil.AlreadyRewarded("Ad already viewed today")
		}

		view = &AdView{
			ID:           s.node.Generate().Int64(),
			UserID:       userID,
			AdID:         adID,
			ViewedAt:     time.Now(),
			RewardEarned: ad.RewardAmount,
		}
		if err := viewsTx.Create(ctx, view); err != nil {
			return err
		}

		return usersTx.Update(ctx, userID, map[string]any{
			"balance": gorm.Expr("balance + ?", ad.RewardAmount),
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("ad view rewarded",
		zap.Int64("user_id", userID),
		zap.Int64("ad_id", adID),
		zap.Float64("reward", view.RewardEarned),
	)
	return view, nil
}

type SubmitApplicationInput struct {
	Title       string
	Description string
	PhotoURL    *string
	VideoURL    *string
}

// SubmitApplication creates a pending application and debits the fixed cost
// from the owner's balance. The cost is never refunded, even when the
// application is later rejected.
func (s *Service) SubmitApplication(ctx context.Context, userID int64, in SubmitApplicationInput) (*Application, error) {
	var application *Application
	err := s.db.Transaction(func(tx *gorm.DB) error {
		usersTx := s.users.WithTrx(tx)
		applicationsTx := s.applications.WithTrx(tx)

		user, err := usersTx.FindOne(ctx, &identity.User{ID: userID},
			repository.WithScope(option.LockingUpdate))
		if err != nil {
			return err
		}
		if user == nil {
			return errutil.NotFound("User not found")
		}

		if user.Balance < ApplicationCost {
			return errutil.InsufficientFunds(fmt.Sprintf(
				"Недостаточно средств. Нужно %.1f монет, у вас %.1f",
				ApplicationCost, user.Balance,
			))
		}

		application = &Application{
			ID:          s.node.Generate().Int64(),
			UserID:      userID,
			Title:       in.Title,
			Description: in.Description,
			Status:      StatusPending,
			Cost:        ApplicationCost,
			PhotoURL:    in.PhotoURL,
			VideoURL:    in.VideoURL,
		}
		if err := applicationsTx.Create(ctx, application); err != nil {
			return err
		}

		return usersTx.Update(ctx, userID, map[string]any{
			"balance": gorm.Expr("balance - ?", ApplicationCost),
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("application submitted",
		zap.Int64("user_id", userID),
		zap.Int64("application_id", application.ID),
		zap.Float64("cost", application.Cost),
	)
	return application, nil
}

// UpdateApplicationStatus overwrites the status field and nothing else. The
// legacy service accepted any string here; the validate-application-status
// toggle constrains it to the three known values.
func (s *Service) UpdateApplicationStatus(ctx context.Context, applicationID int64, status string) (*Application, error) {
	if s.statusValidationEnabled(ctx) {
		switch status {
		case StatusPending, StatusApproved, StatusRejected:
		default:
			return nil, errutil.ValidationFailed("status must be one of pending, approved, rejected")
		}
	}

	application, err := s.applications.FindOne(ctx, &Application{ID: applicationID})
	if err != nil {
		return nil, err
	}
	if application == nil {
		return nil, errutil.NotFound("Application not found")
	}

	if err := s.applications.Update(ctx, applicationID, map[string]any{
		"status": status,
	}); err != nil {
		return nil, err
	}

	application.Status = status
	return application, nil
}

func (s *Service) statusValidationEnabled(ctx context.Context) bool {
	if s.flags == nil {
		return false
	}
	return s.flags.IsEnabled(ctx, featureflags.ValidateApplicationStatus, false)
}

// Cost reports the current submission fee.
func (s *Service) Cost() float64 {
	return ApplicationCost
}

// ListUserApplications returns the caller's applications, oldest first.
func (s *Service) ListUserApplications(ctx context.Context, userID int64) ([]*Application, error) {
	return s.applications.Find(ctx, &Application{UserID: userID},
		repository.WithOrder("created_at asc"))
}

// ListApplications returns every application for the admin view.
func (s *Service) ListApplications(ctx context.Context) ([]*Application, error) {
	return s.applications.Find(ctx, nil, repository.WithOrder("created_at asc"))
}

// ListUserAdViews returns the caller's reward history, oldest first.
func (s *Service) ListUserAdViews(ctx context.Context, userID int64) ([]*AdView, error) {
	return s.views.Find(ctx, &AdView{UserID: userID},
		repository.WithOrder("viewed_at asc"))
}
