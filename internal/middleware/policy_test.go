package middleware

import (
	"net/http"
	"testing"

	"donation-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	r.POST("/campaigns", f.gate.RequireUser(), RequireRole(model.UserRoleCommunityMember), okHandler)
	r.GET("/open", RequireRole(model.UserRoleUser), okHandler)

	w, env := perform(r, http.MethodPost, "/campaigns", f.userToken(t, f.user), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Required roles: community_member", env.Message)
	assert.Equal(t, "current role: user", env.Error)

	w, env = perform(r, http.MethodGet, "/open", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", env.Message)

	member := &model.User{ID: uuid.New(), Email: "m@example.com", Role: model.UserRoleCommunityMember}
	f.store.users[member.ID] = member
	w, _ = perform(r, http.MethodPost, "/campaigns", f.userToken(t, member), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminRole(t *testing.T) {
	f := newFixture(t)
	plain := &model.AdminUser{ID: uuid.New(), Username: "ops", Role: model.AdminRoleAdmin, IsActive: true}
	f.store.admins[plain.ID] = plain

	r := gin.New()
	r.GET("/admins", f.gate.RequireAdmin(), RequireAdminRole(model.AdminRoleSuperAdmin), okHandler)

	w, env := perform(r, http.MethodGet, "/admins", f.adminToken(t, plain), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Required admin roles: super_admin", env.Message)

	w, _ = perform(r, http.MethodGet, "/admins", f.adminToken(t, f.admin), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireVerifiedUser(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	r.GET("/v", f.gate.RequireUser(), RequireVerifiedUser(), okHandler)

	w, env := perform(r, http.MethodGet, "/v", f.userToken(t, f.user), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Account verification required", env.Message)

	f.user.IsVerified = true
	w, _ = perform(r, http.MethodGet, "/v", f.userToken(t, f.user), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireOwnership(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	r.GET("/users/:user_id/campaigns", f.gate.RequireUser(), RequireOwnership("user_id"), okHandler)
	r.POST("/things", f.gate.RequireUser(), RequireOwnership("user_id"), func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": body["user_id"]})
	})
	raw := f.userToken(t, f.user)
	other := uuid.NewString()

	w, _ := perform(r, http.MethodGet, "/users/"+f.user.ID.String()+"/campaigns", raw, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := perform(r, http.MethodGet, "/users/"+other+"/campaigns", raw, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. You can only access your own resources", env.Message)

	w, _ = perform(r, http.MethodPost, "/things", raw, `{"user_id":"`+other+`"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	t.Run("body is still readable by the handler", func(t *testing.T) {
		w, _ := perform(r, http.MethodPost, "/things", raw, `{"user_id":"`+f.user.ID.String()+`"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), f.user.ID.String())
	})

	t.Run("absent field passes", func(t *testing.T) {
		w, _ := perform(r, http.MethodPost, "/things", raw, `{}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("query field", func(t *testing.T) {
		w, _ := perform(r, http.MethodPost, "/things?user_id="+other, raw, `{}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireAdminOrOwner(t *testing.T) {
	f := newFixture(t)
	r := gin.New()
	r.GET("/users/:user_id/donations", f.gate.RequireAny(), RequireAdminOrOwner("user_id"), okHandler)
	other := uuid.NewString()

	w, _ := perform(r, http.MethodGet, "/users/"+other+"/donations", f.adminToken(t, f.admin), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := perform(r, http.MethodGet, "/users/"+other+"/donations", f.userToken(t, f.user), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin access or resource ownership required", env.Message)

	w, _ = perform(r, http.MethodGet, "/users/"+f.user.ID.String()+"/donations", f.userToken(t, f.user), "")
	assert.Equal(t, http.StatusOK, w.Code)
}
