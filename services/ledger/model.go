package ledger

import (
	"time"
)

// ApplicationCost is the submission fee debited from the owner's balance
// when an application is created. The value each application actually paid
// is snapshotted on the record.
const ApplicationCost = 50.0

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// AdView is a fact record: one reward credited to a user for viewing an ad.
// At most one exists per (user, ad) per server-local calendar day. Rows are
// never mutated or deleted.
type AdView struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index:idx_ad_views_user_ad"`
	AdID         int64     `gorm:"column:ad_id;not null;index:idx_ad_views_user_ad"`
	ViewedAt     time.Time `gorm:"column:viewed_at;not null;index"`
	RewardEarned float64   `gorm:"column:reward_earned;type:decimal(15,2);not null"`
}

func (AdView) TableName() string { return "ad_views" }

// Application is a paid user submission awaiting administrative review.
// Everything except status is immutable after creation; rejection does not
// refund the cost.
type Application struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	Title       string    `gorm:"column:title;not null;index"`
	Description string    `gorm:"column:description;not null"`
	Status      string    `gorm:"column:status;not null;default:'pending'"`
	Cost        float64   `gorm:"column:cost;type:decimal(15,2);not null;default:50"`
	PhotoURL    *string   `gorm:"column:photo_url"`
	VideoURL    *string   `gorm:"column:video_url"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Application) TableName() string { return "applications" }

type AdViewResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	AdID         int64     `json:"ad_id"`
	ViewedAt     time.Time `json:"viewed_at"`
	RewardEarned float64   `json:"reward_earned"`
}

func (v *AdView) Response() AdViewResponse {
	return AdViewResponse{
		ID:           v.ID,
		UserID:       v.UserID,
		AdID:         v.AdID,
		ViewedAt:     v.ViewedAt,
		RewardEarned: v.RewardEarned,
	}
}

type ApplicationResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Cost        float64   `json:"cost"`
	PhotoURL    *string   `json:"photo_url"`
	VideoURL    *string   `json:"video_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Application) Response() ApplicationResponse {
	return ApplicationResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Title:       a.Title,
		Description: a.Description,
		Status:      a.Status,
		Cost:        a.Cost,
		PhotoURL:    a.PhotoURL,
		VideoURL:    a.VideoURL,
		CreatedAt:   a.CreatedAt,
	}
}
