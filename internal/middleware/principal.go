package middleware

import (
	"context"

	"donation-api/internal/model"
	"donation-api/internal/permission"
	"donation-api/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalAdmin PrincipalKind = "admin"
)

const principalKey = "principal"

// Principal is the authenticated caller. Exactly one of User and Admin is set, matching Kind.
type Principal struct {
	Kind        PrincipalKind
	User        *model.User
	Admin       *model.AdminUser
	Permissions []string
}

func NewUserPrincipal(u *model.User) *Principal {
	return &Principal{Kind: PrincipalUser, User: u, Permissions: permission.Strings(permission.Role(u.Role))}
}

func NewAdminPrincipal(a *model.AdminUser) *Principal {
	return &Principal{Kind: PrincipalAdmin, Admin: a, Permissions: permission.Strings(permission.Role(a.Role))}
}

func (p *Principal) ID() uuid.UUID {
	if p.Kind == PrincipalAdmin {
		return p.Admin.ID
	}
	return p.User.ID
}

func (p *Principal) Role() string {
	if p.Kind == PrincipalAdmin {
		return p.Admin.Role
	}
	return p.User.Role
}

func SetPrincipal(c *gin.Context, p *Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns nil for anonymous requests.
func CurrentPrincipal(c *gin.Context) *Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}

func CurrentUser(c *gin.Context) *model.User {
	if p := CurrentPrincipal(c); p != nil && p.Kind == PrincipalUser {
		return p.User
	}
	return nil
}

func CurrentAdmin(c *gin.Context) *model.AdminUser {
	if p := CurrentPrincipal(c); p != nil && p.Kind == PrincipalAdmin {
		return p.Admin
	}
	return nil
}

// PrincipalStore re-reads principals on every request so deletions and deactivations apply immediately.
type PrincipalStore interface {
	UserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ActiveAdminByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error)
}

type RepoPrincipalStore struct {
	users  repository.UserRepository
	admins repository.AdminRepository
}

func NewPrincipalStore(users repository.UserRepository, admins repository.AdminRepository) *RepoPrincipalStore {
	return &RepoPrincipalStore{users: users, admins: admins}
}

func (s *RepoPrincipalStore) UserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *RepoPrincipalStore) ActiveAdminByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error) {
	return s.admins.GetActiveByID(ctx, id)
}

// IsActiveAdmin lets the websocket endpoint re-check admins the same way the gate does.
func (s *RepoPrincipalStore) IsActiveAdmin(ctx context.Context, id string) bool {
	adminID, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	a, err := s.admins.GetActiveByID(ctx, adminID)
	return err == nil && a != nil
}
