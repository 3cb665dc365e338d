package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func deny(c *gin.Context, message, detail string) {
	c.AbortWithStatusJSON(http.StatusForbidden, response.Error(message, detail))
}

// RequireRole admits users whose role is in roles. Must run after a gate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !contains(roles, user.Role) {
			deny(c, "Access denied. Required roles: "+strings.Join(roles, ", "), "current role: "+user.Role)
			return
		}
		c.Next()
	}
}

// RequireAdminRole admits admins whose role is in roles.
func RequireAdminRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := CurrentAdmin(c)
		if admin == nil {
			abort(c, http.StatusUnauthorized, "Admin authentication required")
			return
		}
		if !contains(roles, admin.Role) {
			deny(c, "Access denied. Required admin roles: "+strings.Join(roles, ", "), "current role: "+admin.Role)
			return
		}
		c.Next()
	}
}

func RequireVerifiedUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !user.IsVerified {
			deny(c, "Account verification required", "")
			return
		}
		c.Next()
	}
}

// RequireOwnership rejects requests whose field (path, then JSON body, then query) names a
// different user. The check passes when the field is absent.
func RequireOwnership(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if owner := resourceOwner(c, field); owner != "" && owner != user.ID.String() {
			deny(c, "Access denied. You can only access your own resources", "")
			return
		}
		c.Next()
	}
}

// RequireAdminOrOwner lets any admin through and otherwise behaves like RequireOwnership.
func RequireAdminOrOwner(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentAdmin(c) != nil {
			c.Next()
			return
		}
		user := CurrentUser(c)
		if user == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if owner := resourceOwner(c, field); owner != "" && owner != user.ID.String() {
			deny(c, "Access denied. Admin access or resource ownership required", "")
			return
		}
		c.Next()
	}
}

func resourceOwner(c *gin.Context, field string) string {
	if v := c.Param(field); v != "" {
		return v
	}
	if v := bodyField(c, field); v != "" {
		return v
	}
	return c.Query(field)
}

// bodyField peeks at a JSON body and restores it for the handler.
func bodyField(c *gin.Context, field string) string {
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		return ""
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	switch v := body[field].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
