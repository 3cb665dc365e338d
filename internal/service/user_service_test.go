package service

import (
	"context"
	"net/http"
	"testing"

	"donation-api/internal/dbtest"
	"donation-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := dbtest.User(t, e.db, model.UserRoleUser, false)
	other := dbtest.User(t, e.db, model.UserRoleUser, false)
	svc := NewUserService(e.users, e.stats, e.hasher)

	name := " Dewi "
	birth := "1990-02-14"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Name: &name, BirthDate: &birth})
	require.NoError(t, err)
	assert.Equal(t, "Dewi", updated.Name)
	require.NotNil(t, updated.BirthDate)
	assert.Equal(t, 1990, updated.BirthDate.Year())
	assert.Equal(t, model.UserRoleUser, updated.Role)

	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Phone: &other.Phone})
	appErr := requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, "Phone number already in use", appErr.Message)

	// Keeping one's own phone is not a conflict.
	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Phone: &user.Phone})
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	auth := e.authService()
	reg, err := auth.Register(ctx, registerRequest())
	require.NoError(t, err)
	svc := NewUserService(e.users, e.stats, e.hasher)

	err = svc.ChangePassword(ctx, reg.User.ID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "another1", ConfirmPassword: "another1"})
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "Current password is incorrect", appErr.Message)

	require.NoError(t, svc.ChangePassword(ctx, reg.User.ID, ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1", ConfirmPassword: "another1"}))

	_, err = auth.Login(ctx, LoginRequest{Email: "budi@example.com", Password: "another1"})
	require.NoError(t, err)
}

func TestUserStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := dbtest.User(t, e.db, model.UserRoleCommunityMember, true)
	c := dbtest.Campaign(t, e.db, owner, model.CampaignStatusActive, "0")

	_, err := e.donationService().Create(ctx, owner, donate(c.ID, "42000"))
	require.NoError(t, err)

	stats, err := NewUserService(e.users, e.stats, e.hasher).GetStats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalDonations)
	assert.Equal(t, int64(1), stats.ActiveCampaigns)
	assert.True(t, stats.TotalRaised.Equal(decimal.NewFromInt(42000)))

	impact, err := NewStatsService(e.stats).Impact(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), impact.ActiveDonors)
}
