package service

import (
	"context"
	"net/http"
	"testing"

	"donation-api/internal/config"
	"donation-api/internal/dbtest"
	"donation-api/internal/model"
	"donation-api/internal/permission"
	"donation-api/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) authService() AuthService {
	return NewAuthService(e.users, e.admins, e.audit, e.tx, e.codec, e.hasher, e.log)
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		Name:            "Budi Santoso",
		Email:           "Budi@Example.com",
		Phone:           "081234567890",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.authService()

	reg, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", reg.User.Email)
	assert.Equal(t, model.UserRoleUser, reg.User.Role)
	assert.Equal(t, "Bearer", reg.TokenType)
	assert.Equal(t, int64(3600), reg.ExpiresIn)
	assert.Contains(t, reg.Permissions, string(permission.CreateDonation))
	assert.NotEqual(t, "secret123", reg.User.Password)

	claims, err := e.codec.Verify(token.KindUser, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.Subject)

	_, err = e.codec.Verify(token.KindAdmin, reg.Token)
	assert.Error(t, err, "user token must not pass as an admin token")

	t.Run("duplicate email or phone", func(t *testing.T) {
		_, err := svc.Register(ctx, registerRequest())
		requireStatus(t, err, http.StatusConflict)
	})

	t.Run("login", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{Email: "budi@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, resp.User.ID)

		_, err = svc.Login(ctx, LoginRequest{Email: "budi@example.com", Password: "wrong"})
		appErr := requireStatus(t, err, http.StatusUnauthorized)
		assert.Equal(t, "Invalid email or password", appErr.Message)

		_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
		requireStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("refresh", func(t *testing.T) {
		pair, err := svc.Refresh(ctx, reg.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)

		_, err = svc.Refresh(ctx, reg.Token)
		requireStatus(t, err, http.StatusUnauthorized)
	})
}

func TestAdminLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	hash, err := e.hasher.Hash("admin-pass")
	require.NoError(t, err)
	active := dbtest.Admin(t, e.db, "ops", model.AdminRoleAdmin, hash, true)
	dbtest.Admin(t, e.db, "retired", model.AdminRoleAdmin, hash, false)
	svc := e.authService()

	resp, err := svc.AdminLogin(ctx, AdminLoginRequest{Username: "ops", Password: "admin-pass"})
	require.NoError(t, err)
	assert.Equal(t, active.ID, resp.Admin.ID)
	require.NotNil(t, resp.Admin.LastLogin)
	assert.Contains(t, resp.Permissions, string(permission.ManageCampaigns))

	stored, err := e.admins.GetByID(ctx, active.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)

	_, err = e.codec.Verify(token.KindAdmin, resp.Token)
	require.NoError(t, err)
	_, err = e.codec.Verify(token.KindUser, resp.Token)
	assert.Error(t, err)

	byEmail, err := svc.AdminLogin(ctx, AdminLoginRequest{Email: "ops@admin.test", Password: "admin-pass"})
	require.NoError(t, err)
	assert.Equal(t, active.ID, byEmail.Admin.ID)

	_, err = svc.AdminLogin(ctx, AdminLoginRequest{Username: "retired", Password: "admin-pass"})
	appErr := requireStatus(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Invalid credentials", appErr.Message)

	_, err = svc.AdminLogin(ctx, AdminLoginRequest{Username: "ops", Password: "nope"})
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.AdminLogin(ctx, AdminLoginRequest{Password: "admin-pass"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestEnsureSuperAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.authService()
	seed := config.SeedConfig{SuperAdminUsername: "root", SuperAdminEmail: "Root@Example.com", SuperAdminPassword: "change-me-now"}

	require.NoError(t, svc.EnsureSuperAdmin(ctx, seed))
	require.NoError(t, svc.EnsureSuperAdmin(ctx, seed), "seeding twice is a no-op")

	count, err := e.admins.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), e.auditCount(t, model.ActionSeedSuperAdmin))

	resp, err := svc.AdminLogin(ctx, AdminLoginRequest{Email: "root@example.com", Password: "change-me-now"})
	require.NoError(t, err)
	assert.Equal(t, model.AdminRoleSuperAdmin, resp.Admin.Role)
}

func TestCreateDebugAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.authService()

	resp, err := svc.CreateDebugAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "debug_admin", resp.Credentials.Username)
	assert.Equal(t, model.AdminRoleSuperAdmin, resp.Admin.Role)

	_, err = svc.CreateDebugAdmin(ctx)
	requireStatus(t, err, http.StatusConflict)
}

func TestMeAndVerify(t *testing.T) {
	e := newEnv(t)
	svc := e.authService()
	user := &model.User{Role: model.UserRoleCommunityMember}
	admin := &model.AdminUser{Role: model.AdminRoleSuperAdmin}

	me := svc.Me(user, nil)
	assert.Equal(t, "user", me.Type)
	assert.True(t, me.Capabilities.CanCreateCampaign)
	assert.False(t, me.Capabilities.CanManageAdmins)

	me = svc.Me(nil, admin)
	assert.Equal(t, "admin", me.Type)
	assert.True(t, me.Capabilities.CanManageAdmins)

	v := svc.VerifyToken(nil, admin)
	assert.True(t, v.Valid)
	assert.Equal(t, "admin", v.Type)
	assert.Equal(t, model.AdminRoleSuperAdmin, v.Role)
}
