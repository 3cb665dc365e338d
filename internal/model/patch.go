package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// The patch types below are the only partial-update paths. Each lists its writable columns
// explicitly; role, password, status and ownership columns are never reachable through them.

type UserProfilePatch struct {
	Name      *string
	Gender    *string
	BirthDate *time.Time
	Phone     *string
	Address   *string
}

func (p UserProfilePatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Gender != nil {
		cols["gender"] = *p.Gender
	}
	if p.BirthDate != nil {
		cols["birth_date"] = *p.BirthDate
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	return cols
}

type CampaignPatch struct {
	Title        *string
	Description  *string
	Location     *string
	Category     *string
	TargetAmount *decimal.Decimal
	Deadline     *time.Time
	BankAccount  *string
	ImageURL     *string
}

func (p CampaignPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Location != nil {
		cols["location"] = *p.Location
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.TargetAmount != nil {
		cols["target_amount"] = *p.TargetAmount
	}
	if p.Deadline != nil {
		cols["deadline"] = *p.Deadline
	}
	if p.BankAccount != nil {
		cols["bank_account"] = *p.BankAccount
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

// AdminPatch.PasswordHash must already be hashed by the caller.
type AdminPatch struct {
	Username     *string
	Email        *string
	FullName     *string
	Role         *string
	IsActive     *bool
	PasswordHash *string
}

func (p AdminPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Username != nil {
		cols["username"] = *p.Username
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.FullName != nil {
		cols["full_name"] = *p.FullName
	}
	if p.Role != nil {
		cols["role"] = *p.Role
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	if p.PasswordHash != nil {
		cols["password"] = *p.PasswordHash
	}
	return cols
}
