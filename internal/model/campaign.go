package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Campaign status values. Only pending -> active|rejected is driven by this service;
// completed and expired are set by external processes.
const (
	CampaignStatusPending   = "pending"
	CampaignStatusActive    = "active"
	CampaignStatusRejected  = "rejected"
	CampaignStatusCompleted = "completed"
	CampaignStatusExpired   = "expired"
)

var CampaignCategories = []string{"medical", "food", "rescue", "shelter", "other", "adoption"}

type Campaign struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Title         string          `gorm:"type:varchar(255);not null" json:"title"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Location      string          `gorm:"type:varchar(255);not null" json:"location"`
	Category      string          `gorm:"type:varchar(20);not null;index" json:"category"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"current_amount"`
	Deadline      time.Time       `gorm:"not null" json:"deadline"`
	BankAccount   string          `gorm:"type:varchar(50);not null" json:"bank_account"`
	ImageURL      string          `gorm:"type:varchar(500);not null" json:"image_url"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNotes    *string         `gorm:"type:text" json:"admin_notes"`
	ReviewedBy    *uuid.UUID      `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer      *AdminUser      `gorm:"foreignKey:ReviewedBy" json:"-"`
	ReviewedAt    *time.Time      `json:"reviewed_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

// DaysRemaining is the whole number of days from now until the deadline, never negative.
func (c *Campaign) DaysRemaining(now time.Time) int {
	d := c.Deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d.Hours() / 24)
	if d-time.Duration(days)*24*time.Hour > 0 {
		days++
	}
	return days
}
