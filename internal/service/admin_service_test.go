package service

import (
	"context"
	"net/http"
	"testing"

	"donation-api/internal/dbtest"
	"donation-api/internal/model"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) adminService() AdminService {
	return NewAdminService(e.admins, e.users, e.stats, e.audit, e.tx, e.hasher, e.log)
}

func TestAdminDirectory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := dbtest.Admin(t, e.db, "root", model.AdminRoleSuperAdmin, "x", true)
	svc := e.adminService()

	created, err := svc.CreateAdmin(ctx, root.ID, CreateAdminRequest{
		Username: "moderator", Email: "Mod@Example.com", Password: "longenough", FullName: "Moderator",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AdminRoleAdmin, created.Role)
	assert.Equal(t, "mod@example.com", created.Email)
	assert.True(t, created.IsActive)
	assert.True(t, e.hasher.Matches(created.Password, "longenough"))
	assert.Equal(t, int64(1), e.auditCount(t, model.ActionCreateAdmin))

	_, err = svc.CreateAdmin(ctx, root.ID, CreateAdminRequest{Username: "moderator", Email: "other@example.com", Password: "longenough", FullName: "Dup"})
	appErr := requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, "Admin already exists with this username or email", appErr.Message)

	t.Run("update", func(t *testing.T) {
		inactive := false
		pw := "rotated-password"
		role := model.AdminRoleSuperAdmin
		updated, err := svc.UpdateAdmin(ctx, root.ID, created.ID, UpdateAdminRequest{IsActive: &inactive, Password: &pw, Role: &role})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
		assert.Equal(t, model.AdminRoleSuperAdmin, updated.Role)
		assert.True(t, e.hasher.Matches(updated.Password, pw))
		assert.Equal(t, int64(1), e.auditCount(t, model.ActionUpdateAdmin))
	})

	t.Run("update rejects taken username", func(t *testing.T) {
		taken := "root"
		_, err := svc.UpdateAdmin(ctx, root.ID, created.ID, UpdateAdminRequest{Username: &taken})
		requireStatus(t, err, http.StatusConflict)
	})

	t.Run("update with nothing", func(t *testing.T) {
		_, err := svc.UpdateAdmin(ctx, root.ID, created.ID, UpdateAdminRequest{})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("unknown admin", func(t *testing.T) {
		_, err := svc.GetAdmin(ctx, uuid.New())
		requireStatus(t, err, http.StatusNotFound)
		name := "Ghost"
		_, err = svc.UpdateAdmin(ctx, root.ID, uuid.New(), UpdateAdminRequest{FullName: &name})
		requireStatus(t, err, http.StatusNotFound)
	})

	admins, total, err := svc.ListAdmins(ctx, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, admins, 2)
}

func TestAdminUserOverrides(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := dbtest.Admin(t, e.db, "ops", model.AdminRoleAdmin, "x", true)
	user := dbtest.User(t, e.db, model.UserRoleUser, false)
	svc := e.adminService()

	verified, err := svc.UpdateUserStatus(ctx, admin.ID, user.ID, true)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	promoted, err := svc.UpdateUserRole(ctx, admin.ID, user.ID, model.UserRoleCommunityMember)
	require.NoError(t, err)
	assert.Equal(t, model.UserRoleCommunityMember, promoted.Role)

	_, err = svc.UpdateUserRole(ctx, admin.ID, user.ID, model.AdminRoleSuperAdmin)
	appErr := requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "Invalid role. Must be 'user' or 'community_member'", appErr.Message)

	_, err = svc.UpdateUserStatus(ctx, admin.ID, uuid.New(), true)
	requireStatus(t, err, http.StatusNotFound)

	assert.Equal(t, int64(1), e.auditCount(t, model.ActionUpdateUserVerification))
	assert.Equal(t, int64(1), e.auditCount(t, model.ActionUpdateUserRole))

	members, total, err := svc.ListUsers(ctx, UserListFilter{Role: model.UserRoleCommunityMember}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, members, 1)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.Users.CommunityMembers)
	assert.Equal(t, int64(1), dash.Users.Verified)
}

func TestAuditLogListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := dbtest.Admin(t, e.db, "ops", model.AdminRoleAdmin, "x", true)
	user := dbtest.User(t, e.db, model.UserRoleUser, false)

	_, err := e.adminService().UpdateUserStatus(ctx, admin.ID, user.ID, true)
	require.NoError(t, err)

	logs, total, err := NewAuditService(e.audit).GetAuditLogs(ctx, AuditLogFilter{Action: model.ActionUpdateUserVerification}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActorAdmin, logs[0].ActorType)
	assert.Equal(t, user.ID.String(), logs[0].EntityID)
}
