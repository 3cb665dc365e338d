package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentMethodQRIS         = "qris"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodEWallet      = "e_wallet"
)

// Payment status values. Donations are recorded as success at creation.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

type Donation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"-"`
	CampaignID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign      *Campaign       `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE;" json:"-"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	TransactionID *string         `gorm:"type:varchar(255)" json:"transaction_id"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	newID(&d.ID)
	return nil
}
