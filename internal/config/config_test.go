package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset uses fallback", "", time.Hour},
		{"go duration", "36h", 36 * time.Hour},
		{"day suffix", "7d", 7 * 24 * time.Hour},
		{"garbage uses fallback", "soon", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_TTL", tt.value)
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_TTL", time.Hour))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg := Load()

	assert.Equal(t, "cat-donation-api", cfg.JWT.Issuer)
	assert.Equal(t, "cat-donation-users", cfg.JWT.UserAudience)
	assert.Equal(t, "cat-donation-admins", cfg.JWT.AdminAudience)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, devJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
}

func TestLoadPanicsWithoutSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	assert.Panics(t, func() { Load() })
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=disable", d.DSN())
}
