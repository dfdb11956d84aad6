package catalog

import (
	"time"
)

// Ad is a catalog entry. Entries are immutable once created; deactivation is
// the only lifecycle event and happens out of band.
type Ad struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Title        string    `gorm:"column:title;not null;index"`
	Slug         string    `gorm:"column:slug;not null;index"`
	Description  string    `gorm:"column:description;not null"`
	RewardAmount float64   `gorm:"column:reward_amount;type:decimal(15,2);not null"`
	ImageURL     *string   `gorm:"column:image_url"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Ad) TableName() string { return "ads" }

type AdResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	RewardAmount float64   `json:"reward_amount"`
	ImageURL     *string   `json:"image_url"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Ad) Response() AdResponse {
	return AdResponse{
		ID:           a.ID,
		Title:        a.Title,
		Slug:         a.Slug,
		Description:  a.Description,
		RewardAmount: a.RewardAmount,
		ImageURL:     a.ImageURL,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}
}
