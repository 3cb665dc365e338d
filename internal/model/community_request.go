package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CommunityStatusPending  = "pending"
	CommunityStatusApproved = "approved"
	CommunityStatusRejected = "rejected"
)

// CommunityRequest asks for promotion to community_member. ktp_number is unique across
// all requests regardless of owner or status.
type CommunityRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	FullName      string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Gender        string     `gorm:"type:varchar(10);not null" json:"gender"`
	BirthPlace    string     `gorm:"type:varchar(255);not null" json:"birth_place"`
	BirthDate     time.Time  `gorm:"type:date;not null" json:"birth_date"`
	KTPNumber     string     `gorm:"type:varchar(16);uniqueIndex;not null" json:"ktp_number"`
	KTPPhoto      string     `gorm:"type:varchar(500);not null" json:"ktp_photo"`
	Reason        string     `gorm:"type:text;not null" json:"reason"`
	DataAgreement bool       `gorm:"not null;default:false" json:"data_agreement"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNotes    *string    `gorm:"type:text" json:"admin_notes"`
	ReviewedBy    *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *CommunityRequest) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}
