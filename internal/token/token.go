// Package token issues and verifies the signed session tokens for users and admins.
// Every principal kind has its own audience, so a token minted for one kind never
// verifies as the other.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindAdmin   Kind = "admin"
	KindRefresh Kind = "refresh"
)

var (
	ErrExpired       = errors.New("token has expired")
	ErrNotYetValid   = errors.New("token not active yet")
	ErrSignature     = errors.New("token signature is invalid")
	ErrAudience      = errors.New("token audience mismatch")
	ErrMalformed     = errors.New("token is malformed")
	ErrInvalid       = errors.New("invalid token")
	ErrMissingClaims = errors.New("token claims incomplete")
	ErrUnknownKind   = errors.New("unknown token kind")
)

type Config struct {
	Secret          []byte
	Issuer          string
	UserAudience    string
	AdminAudience   string
	RefreshAudience string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

// Claims carried by every token. Email is set for users, Username for admins.
type Claims struct {
	Type     Kind   `json:"type"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens.
type Codec struct {
	cfg Config
	now func() time.Time
}

func NewCodec(cfg Config) *Codec {
	return &Codec{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the codec using now as its time source.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) AccessTTL() time.Duration {
	return c.cfg.AccessTTL
}

func (c *Codec) audience(kind Kind) (string, error) {
	switch kind {
	case KindUser:
		return c.cfg.UserAudience, nil
	case KindAdmin:
		return c.cfg.AdminAudience, nil
	case KindRefresh:
		return c.cfg.RefreshAudience, nil
	}
	return "", ErrUnknownKind
}

func (c *Codec) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.cfg.RefreshTTL
	}
	return c.cfg.AccessTTL
}

// Issue signs a token of the given kind for subject. Only Email/Username/Role are read from extra.
func (c *Codec) Issue(kind Kind, subject string, extra Claims) (string, time.Time, error) {
	aud, err := c.audience(kind)
	if err != nil {
		return "", time.Time{}, err
	}
	if subject == "" || extra.Role == "" {
		return "", time.Time{}, ErrMissingClaims
	}
	if (kind == KindUser || kind == KindRefresh) && extra.Email == "" {
		return "", time.Time{}, ErrMissingClaims
	}
	if kind == KindAdmin && extra.Username == "" {
		return "", time.Time{}, ErrMissingClaims
	}

	now := c.now()
	expiresAt := now.Add(c.ttl(kind))
	claims := Claims{
		Type:     kind,
		Email:    extra.Email,
		Username: extra.Username,
		Role:     extra.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses raw as a token of the given kind. The returned error always wraps one of the
// package sentinels so callers can tell the failure causes apart.
func (c *Codec) Verify(kind Kind, raw string) (*Claims, error) {
	aud, err := c.audience(kind)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(aud),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	_, err = parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.cfg.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || claims.Type != kind {
		return nil, ErrMissingClaims
	}
	return claims, nil
}

func classify(err error) error {
	var sentinel error
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		sentinel = ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		sentinel = ErrSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		sentinel = ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		sentinel = ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		sentinel = ErrAudience
	default:
		sentinel = ErrInvalid
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
