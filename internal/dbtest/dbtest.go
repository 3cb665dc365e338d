// Package dbtest opens throwaway sqlite databases with the production schema for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"donation-api/internal/database"
	"donation-api/internal/logger"
	"donation-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns an in-memory database private to t, migrated with database.Models.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "'", "").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         database.NewGormLogger(logger.Nop()),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and serializes transactions.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// User inserts a user with a unique email and phone.
func User(t testing.TB, db *gorm.DB, role string, verified bool) *model.User {
	t.Helper()
	id := uuid.New()
	u := &model.User{
		ID:         id,
		Name:       "User " + id.String()[:8],
		Email:      id.String()[:8] + "@example.com",
		Phone:      "08" + strings.ReplaceAll(id.String(), "-", "")[:10],
		Password:   "x",
		Role:       role,
		IsVerified: verified,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Admin inserts an admin with the given password hash.
func Admin(t testing.TB, db *gorm.DB, username, role, passwordHash string, active bool) *model.AdminUser {
	t.Helper()
	a := &model.AdminUser{
		Username: username,
		Email:    username + "@admin.test",
		Password: passwordHash,
		FullName: strings.ToUpper(username[:1]) + username[1:],
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(a).Error)
	if !active {
		// is_active defaults to true, so false has to be written explicitly.
		require.NoError(t, db.Model(a).Update("is_active", false).Error)
		a.IsActive = false
	}
	return a
}

// Campaign inserts a campaign owned by owner with the given status and raised amount.
func Campaign(t testing.TB, db *gorm.DB, owner *model.User, status string, current string) *model.Campaign {
	t.Helper()
	c := &model.Campaign{
		UserID:        owner.ID,
		Title:         "Help the shelter cats",
		Description:   "Food and vaccines for the rescued cats this month.",
		Location:      "Bandung",
		Category:      "shelter",
		TargetAmount:  decimal.RequireFromString("5000000"),
		CurrentAmount: decimal.RequireFromString(current),
		Deadline:      time.Now().Add(30 * 24 * time.Hour),
		BankAccount:   "1234567890",
		ImageURL:      "campaigns/test.png",
		Status:        status,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
