package middleware

import (
	"errors"
	"net/http"
	"strings"

	"donation-api/internal/logger"
	"donation-api/internal/token"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gate resolves the bearer token on a request into a Principal.
type Gate struct {
	codec *token.Codec
	store PrincipalStore
	log   logger.ILogger
}

func NewGate(codec *token.Codec, store PrincipalStore, log logger.ILogger) *Gate {
	return &Gate{codec: codec, store: store, log: log}
}

type gateMessages struct {
	missing, expired, malformed, invalid, notFound string
}

var (
	userMessages = gateMessages{
		missing:   "Access token required",
		expired:   "Token has expired, please login again",
		malformed: "Invalid token format",
		invalid:   "Invalid or expired token",
		notFound:  "User not found or token invalid",
	}
	adminMessages = gateMessages{
		missing:   "Admin access token required",
		expired:   "Admin token has expired, please login again",
		malformed: "Invalid admin token format",
		invalid:   "Invalid or expired admin token",
		notFound:  "Admin not found or token invalid",
	}
)

const (
	invalidHeaderMessage = "Invalid authorization header format. Expected 'Bearer <token>'"
	lookupFailedMessage  = "Internal server error"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, response.Error(message, ""))
}

// bearer returns the token, or ok=false when the header is missing or not a Bearer header.
// present reports whether any Authorization header was sent.
func bearer(c *gin.Context) (raw string, present bool, ok bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false, false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true, false
	}
	return parts[1], true, true
}

func (m gateMessages) forVerifyError(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return m.expired
	case errors.Is(err, token.ErrMalformed):
		return m.malformed
	default:
		return m.invalid
	}
}

// RequireUser admits only user-audience tokens whose user still exists.
func (g *Gate) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present, ok := bearer(c)
		if !present {
			abort(c, http.StatusUnauthorized, userMessages.missing)
			return
		}
		if !ok {
			abort(c, http.StatusUnauthorized, invalidHeaderMessage)
			return
		}
		p, status, msg := g.resolveUser(c, raw)
		if p == nil {
			abort(c, status, msg)
			return
		}
		SetPrincipal(c, p)
		c.Next()
	}
}

// RequireAdmin admits only admin-audience tokens whose admin is still active.
func (g *Gate) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present, ok := bearer(c)
		if !present {
			abort(c, http.StatusUnauthorized, adminMessages.missing)
			return
		}
		if !ok {
			abort(c, http.StatusUnauthorized, invalidHeaderMessage)
			return
		}
		p, status, msg := g.resolveAdmin(c, raw)
		if p == nil {
			abort(c, status, msg)
			return
		}
		SetPrincipal(c, p)
		c.Next()
	}
}

// RequireAny accepts either kind. The user audience is tried first.
func (g *Gate) RequireAny() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, present, ok := bearer(c)
		if !present {
			abort(c, http.StatusUnauthorized, userMessages.missing)
			return
		}
		if !ok {
			abort(c, http.StatusUnauthorized, invalidHeaderMessage)
			return
		}
		p, status, msg := g.resolveAny(c, raw)
		if p == nil {
			abort(c, status, msg)
			return
		}
		SetPrincipal(c, p)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present and never rejects.
func (g *Gate) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, _, ok := bearer(c); ok {
			if p, _, _ := g.resolveAny(c, raw); p != nil {
				SetPrincipal(c, p)
			}
		}
		c.Next()
	}
}

func (g *Gate) resolveAny(c *gin.Context, raw string) (*Principal, int, string) {
	p, status, msg := g.resolveUser(c, raw)
	if p != nil || status != http.StatusForbidden {
		return p, status, msg
	}
	// Only fall back to the admin audience when the token was not a valid user token.
	if ap, astatus, amsg := g.resolveAdmin(c, raw); ap != nil || astatus != http.StatusForbidden {
		return ap, astatus, amsg
	}
	return nil, status, msg
}

func (g *Gate) resolveUser(c *gin.Context, raw string) (*Principal, int, string) {
	claims, err := g.codec.Verify(token.KindUser, raw)
	if err != nil {
		g.log.Debug("auth", "user token rejected", map[string]interface{}{"error": err, "path": c.FullPath()})
		return nil, http.StatusForbidden, userMessages.forVerifyError(err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, http.StatusForbidden, userMessages.malformed
	}
	user, err := g.store.UserByID(c.Request.Context(), id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		g.lookupFailed(c, "user", err)
		return nil, http.StatusInternalServerError, lookupFailedMessage
	}
	if user == nil {
		return nil, http.StatusUnauthorized, userMessages.notFound
	}
	return NewUserPrincipal(user), 0, ""
}

func (g *Gate) resolveAdmin(c *gin.Context, raw string) (*Principal, int, string) {
	claims, err := g.codec.Verify(token.KindAdmin, raw)
	if err != nil {
		g.log.Debug("auth", "admin token rejected", map[string]interface{}{"error": err, "path": c.FullPath()})
		return nil, http.StatusForbidden, adminMessages.forVerifyError(err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, http.StatusForbidden, adminMessages.malformed
	}
	admin, err := g.store.ActiveAdminByID(c.Request.Context(), id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		g.lookupFailed(c, "admin", err)
		return nil, http.StatusInternalServerError, lookupFailedMessage
	}
	if admin == nil {
		return nil, http.StatusUnauthorized, adminMessages.notFound
	}
	return NewAdminPrincipal(admin), 0, ""
}

func (g *Gate) lookupFailed(c *gin.Context, kind string, err error) {
	g.log.Error("auth", "principal lookup failed", map[string]interface{}{
		"kind": kind, "error": err, "path": c.FullPath(),
	})
}
