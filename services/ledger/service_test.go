package ledger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
	"github.com/IVANFROL/reklama-oleg/services/catalog"
	"github.com/IVANFROL/reklama-oleg/services/identity"
	"github.com/IVANFROL/reklama-oleg/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fixture struct {
	db      *gorm.DB
	node    *snowflake.Node
	catalog *catalog.Service
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t,
		&identity.User{},
		&catalog.Ad{},
		&AdView{},
		&Application{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cat := catalog.NewService(catalog.ServiceParams{DB: db, Node: node})
	svc := NewService(ServiceParams{DB: db, Node: node, Catalog: cat})

	return &fixture{db: db, node: node, catalog: cat, svc: svc}
}

func (f *fixture) createUser(t *testing.T, username string, balance float64) *identity.User {
	t.Helper()

	user := &identity.User{
		ID:           f.node.Generate().Int64(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		Balance:      balance,
		Role:         identity.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) createAd(t *testing.T, title string, reward float64) *catalog.Ad {
	t.Helper()

	ad, err := f.catalog.CreateAd(context.Background(), catalog.CreateAdInput{
		Title:        title,
		Description:  "test ad",
		RewardAmount: reward,
	})
	require.NoError(t, err)
	return ad
}

func (f *fixture) balance(t *testing.T, userID int64) float64 {
	t.Helper()

	var user identity.User
	require.NoError(t, f.db.First(&user, "id = ?", userID).Error)
	return user.Balance
}

func errCode(t *testing.T, err error) errutil.CoreStatus {
	t.Helper()

	var be errutil.BaseError
	require.ErrorAs(t, err, &be)
	return be.Code
}

func TestRecordAdViewCreditsReward(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 0)
	ad := f.createAd(t, "Coffee", 10)

	view, err := f.svc.RecordAdView(context.Background(), user.ID, ad.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, view.UserID)
	require.Equal(t, ad.ID, view.AdID)
	require.Equal(t, 10.0, view.RewardEarned)
	require.False(t, view.ViewedAt.IsZero())

	require.Equal(t, 10.0, f.balance(t, user.ID))
}

func TestRecordAdViewSameDayRejected(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 0)
	ad := f.createAd(t, "Coffee", 10)

	_, err := f.svc.RecordAdView(context.Background(), user.ID, ad.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordAdView(context.Background(), user.ID, ad.ID)
	require.Error(t, err)
	require.Equal(t, errutil.StatusAlreadyRewarded, errCode(t, err))

	require.Equal(t, 10.0, f.balance(t, user.ID))

	var n int64
	require.NoError(t, f.db.Model(&AdView{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestRecordAdViewDistinctAdsSameDay(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 0)
	first := f.createAd(t, "Coffee", 10)
	second := f.createAd(t, "Pizza", 15)

	_, err := f.svc.RecordAdView(context.Background(), user.ID, first.ID)
	require.NoError(t, err)
	_, err = f.svc.RecordAdView(context.Background(), user.ID, second.ID)
	require.NoError(t, err)

	require.Equal(t, 25.0, f.balance(t, user.ID))
}

func TestRecordAdViewUnknownAd(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 0)

	_, err := f.svc.RecordAdView(context.Background(), user.ID, 424242)
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errCode(t, err))
	require.Equal(t, 0.0, f.balance(t, user.ID))
}

func TestRecordAdViewInactiveAd(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 0)
	ad := f.createAd(t, "Coffee", 10)

	require.NoError(t, f.db.Model(&catalog.Ad{}).
		Where("id = ?", ad.ID).
		Update("is_active", false).Error)

	_, err := f.svc.RecordAdView(context.Background(), user.ID, ad.ID)
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errCode(t, err))
}

func TestConcurrentAdViewsRewardOnce(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 0)
	ad := f.createAd(t, "Coffee", 10)

	const workers = 8
	var successes atomic.Int64

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := f.svc.RecordAdView(context.Background(), user.ID, ad.ID)
			if err == nil {
				successes.Add(1)
				return nil
			}
			var be errutil.BaseError
			if !errors.As(err, &be) || be.Code != errutil.StatusAlreadyRewarded {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.EqualValues(t, 1, successes.Load())
	require.Equal(t, 10.0, f.balance(t, user.ID))

	var n int64
	require.NoError(t, f.db.Model(&AdView{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestSubmitApplicationInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 49.9)

	_, err := f.svc.SubmitApplication(context.Background(), user.ID, SubmitApplicationInput{
		Title:       "My application",
		Description: "please review",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusInsufficientFunds, errCode(t, err))

	require.Equal(t, 49.9, f.balance(t, user.ID))

	var n int64
	require.NoError(t, f.db.Model(&Application{}).Count(&n).Error)
	require.EqualValues(t, 0, n)
}

func TestSubmitApplicationDebitsCost(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 50)
	photo := "/uploads/photo.png"

	application, err := f.svc.SubmitApplication(context.Background(), user.ID, SubmitApplicationInput{
		Title:       "My application",
		Description: "please review",
		PhotoURL:    &photo,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, application.Status)
	require.Equal(t, ApplicationCost, application.Cost)
	require.Equal(t, &photo, application.PhotoURL)
	require.Nil(t, application.VideoURL)

	require.Equal(t, 0.0, f.balance(t, user.ID))
}

func TestConcurrentSubmissionsRespectBalance(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 125)

	const workers = 5
	var successes atomic.Int64

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := f.svc.SubmitApplication(context.Background(), user.ID, SubmitApplicationInput{
				Title:       "My application",
				Description: "please review",
			})
			if err == nil {
				successes.Add(1)
				return nil
			}
			var be errutil.BaseError
			if !errors.As(err, &be) || be.Code != errutil.StatusInsufficientFunds {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.EqualValues(t, 2, successes.Load())
	require.Equal(t, 25.0, f.balance(t, user.ID))

	var n int64
	require.NoError(t, f.db.Model(&Application{}).Count(&n).Error)
	require.EqualValues(t, 2, n)
}

func TestUpdateApplicationStatusNoRefund(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 50)

	application, err := f.svc.SubmitApplication(context.Background(), user.ID, SubmitApplicationInput{
		Title:       "My application",
		Description: "please review",
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, f.balance(t, user.ID))

	updated, err := f.svc.UpdateApplicationStatus(context.Background(), application.ID, StatusRejected)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, updated.Status)

	// Rejection never refunds the submission fee.
	require.Equal(t, 0.0, f.balance(t, user.ID))

	var stored Application
	require.NoError(t, f.db.First(&stored, "id = ?", application.ID).Error)
	require.Equal(t, StatusRejected, stored.Status)
	require.Equal(t, application.UserID, stored.UserID)
	require.Equal(t, application.Cost, stored.Cost)
	require.Equal(t, application.Title, stored.Title)
}

func TestUpdateApplicationStatusUnknownApplication(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateApplicationStatus(context.Background(), 424242, StatusApproved)
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errCode(t, err))
}

type flagStub map[string]bool

func (s flagStub) IsEnabled(ctx context.Context, name string, fallback bool) bool {
	if v, ok := s[name]; ok {
		return v
	}
	return fallback
}

func TestUpdateApplicationStatusValidation(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 50)

	application, err := f.svc.SubmitApplication(context.Background(), user.ID, SubmitApplicationInput{
		Title:       "My application",
		Description: "please review",
	})
	require.NoError(t, err)

	// With validation off, any string goes through unchanged.
	updated, err := f.svc.UpdateApplicationStatus(context.Background(), application.ID, "weird")
	require.NoError(t, err)
	require.Equal(t, "weird", updated.Status)

	f.svc.flags = flagStub{"validate-application-status": true}

	_, err = f.svc.UpdateApplicationStatus(context.Background(), application.ID, "weird")
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errCode(t, err))

	updated, err = f.svc.UpdateApplicationStatus(context.Background(), application.ID, StatusApproved)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, updated.Status)
}

func TestListUserApplications(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice", 100)
	bob := f.createUser(t, "bob", 100)

	first, err := f.svc.SubmitApplication(context.Background(), alice.ID, SubmitApplicationInput{
		Title:       "First",
		Description: "d",
	})
	require.NoError(t, err)
	_, err = f.svc.SubmitApplication(context.Background(), bob.ID, SubmitApplicationInput{
		Title:       "Other user",
		Description: "d",
	})
	require.NoError(t, err)
	second, err := f.svc.SubmitApplication(context.Background(), alice.ID, SubmitApplicationInput{
		Title:       "Second",
		Description: "d",
	})
	require.NoError(t, err)

	mine, err := f.svc.ListUserApplications(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, first.ID, mine[0].ID)
	require.Equal(t, second.ID, mine[1].ID)

	all, err := f.svc.ListApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestListUserAdViews(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice", 0)
	bob := f.createUser(t, "bob", 0)
	ad := f.createAd(t, "Coffee", 10)
	other := f.createAd(t, "Pizza", 15)

	_, err := f.svc.RecordAdView(context.Background(), alice.ID, ad.ID)
	require.NoError(t, err)
	_, err = f.svc.RecordAdView(context.Background(), bob.ID, ad.ID)
	require.NoError(t, err)
	_, err = f.svc.RecordAdView(context.Background(), alice.ID, other.ID)
	require.NoError(t, err)

	views, err := f.svc.ListUserAdViews(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, ad.ID, views[0].AdID)
	require.Equal(t, other.ID, views[1].AdID)
}

// Earn-then-spend walkthrough: a fresh user views ads until the balance
// covers the fee, submits, and ends back at the remainder with a pending
// application on file.
func TestEarnThenSpendFlow(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice", 0)

	rewards := []float64{10, 15, 8, 20, 12}
	for i, reward := range rewards {
		ad := f.createAd(t, "Ad "+string(rune('A'+i)), reward)
		_, err := f.svc.RecordAdView(context.Background(), user.ID, ad.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 65.0, f.balance(t, user.ID))

	application, err := f.svc.SubmitApplication(context.Background(), user.ID, SubmitApplicationInput{
		Title:       "My application",
		Description: "please review",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, application.Status)
	require.Equal(t, 15.0, f.balance(t, user.ID))

	_, err = f.svc.SubmitApplication(context.Background(), user.ID, SubmitApplicationInput{
		Title:       "Another",
		Description: "please review",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusInsufficientFunds, errCode(t, err))
	require.Equal(t, 15.0, f.balance(t, user.ID))
}
