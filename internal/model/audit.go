package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActorUser   = "user"
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

const (
	ActionCreateCampaign         = "CREATE_CAMPAIGN"
	ActionUpdateCampaign         = "UPDATE_CAMPAIGN"
	ActionReviewCampaign         = "REVIEW_CAMPAIGN"
	ActionSubmitCommunityRequest = "SUBMIT_COMMUNITY_REQUEST"
	ActionReviewCommunityRequest = "REVIEW_COMMUNITY_REQUEST"
	ActionUpdateUserRole         = "UPDATE_USER_ROLE"
	ActionUpdateUserVerification = "UPDATE_USER_VERIFICATION"
	ActionCreateAdmin            = "CREATE_ADMIN"
	ActionUpdateAdmin            = "UPDATE_ADMIN"
	ActionUpdateDonationPayment  = "UPDATE_DONATION_PAYMENT"
	ActionSeedSuperAdmin         = "SEED_SUPER_ADMIN"
)

// AuditLog records who changed what. ActorID points at users or admin_users depending on ActorType.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"`
	ActorType  string     `gorm:"type:varchar(10);not null" json:"actor_type"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
