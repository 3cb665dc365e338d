package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles persisted on users.role. Guest is virtual and never stored.
const (
	UserRoleUser            = "user"
	UserRoleCommunityMember = "community_member"
)

// User is an end user: a donor, and after community approval, a campaign owner.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Email      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone      string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Password   string         `gorm:"type:varchar(255);not null" json:"-"`
	Gender     *string        `gorm:"type:varchar(10)" json:"gender"`
	BirthDate  *time.Time     `gorm:"type:date" json:"birth_date"`
	Address    *string        `gorm:"type:text" json:"address"`
	Role       string         `gorm:"type:varchar(30);not null;default:'user';index" json:"role"`
	IsVerified bool           `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}
