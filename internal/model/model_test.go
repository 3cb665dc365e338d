package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		deadline time.Time
		want     int
	}{
		{"past deadline", now.Add(-time.Hour), 0},
		{"exactly now", now, 0},
		{"partial day rounds up", now.Add(30 * time.Hour), 2},
		{"whole days", now.Add(72 * time.Hour), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Campaign{Deadline: tt.deadline}
			assert.Equal(t, tt.want, c.DaysRemaining(now))
		})
	}
}

func TestPatchColumnsOnlySetFields(t *testing.T) {
	name := "Mochi"
	assert.Equal(t, map[string]interface{}{"name": "Mochi"}, UserProfilePatch{Name: &name}.Columns())
	assert.Empty(t, UserProfilePatch{}.Columns())

	target := decimal.NewFromInt(5000000)
	cols := CampaignPatch{TargetAmount: &target}.Columns()
	assert.Len(t, cols, 1)
	assert.True(t, target.Equal(cols["target_amount"].(decimal.Decimal)))

	hash := "$2a$hash"
	active := false
	cols = AdminPatch{PasswordHash: &hash, IsActive: &active}.Columns()
	assert.Equal(t, map[string]interface{}{"password": hash, "is_active": false}, cols)
}

func TestNewIDKeepsExisting(t *testing.T) {
	id := uuid.New()
	u := User{ID: id}
	assert.NoError(t, u.BeforeCreate(nil))
	assert.Equal(t, id, u.ID)

	var fresh User
	assert.NoError(t, fresh.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, fresh.ID)
}
