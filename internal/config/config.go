package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret = "default_super_secret_key"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	Log      LogConfig
	Security SecurityConfig
	Seed     SeedConfig
}

type AppConfig struct {
	Env         string
	Port        string
	BaseURL     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret          string
	Issuer          string
	UserAudience    string
	AdminAudience   string
	RefreshAudience string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

type UploadConfig struct {
	Driver   string // local or s3
	Dir      string
	MaxSize  int64
	S3Bucket string
	S3Region string
}

type LogConfig struct {
	Path string
}

type SecurityConfig struct {
	BcryptCost int
}

// SeedConfig describes the super admin created at startup when no admin exists yet.
type SeedConfig struct {
	SuperAdminUsername string
	SuperAdminEmail    string
	SuperAdminPassword string
}

// Load reads configs/.env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := &Config{
		App: AppConfig{
			Env:         getEnv("APP_ENV", EnvDevelopment),
			Port:        getEnv("PORT", "8080"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
			CORSOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "cat_donation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			Issuer:          getEnv("JWT_ISSUER", "cat-donation-api"),
			UserAudience:    getEnv("JWT_USER_AUDIENCE", "cat-donation-users"),
			AdminAudience:   getEnv("JWT_ADMIN_AUDIENCE", "cat-donation-admins"),
			RefreshAudience: getEnv("JWT_REFRESH_AUDIENCE", "cat-donation-users-refresh"),
			AccessTTL:       getEnvAsDuration("JWT_EXPIRE", 24*time.Hour),
			RefreshTTL:      getEnvAsDuration("JWT_REFRESH_EXPIRE", 7*24*time.Hour),
		},
		Upload: UploadConfig{
			Driver:   getEnv("UPLOAD_DRIVER", "local"),
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxSize:  int64(getEnvAsInt("UPLOAD_MAX_SIZE", 5*1024*1024)),
			S3Bucket: os.Getenv("S3_BUCKET"),
			S3Region: getEnv("AWS_REGION", "ap-southeast-1"),
		},
		Log: LogConfig{
			Path: getEnv("LOG_PATH", "logs/app.log"),
		},
		Security: SecurityConfig{
			BcryptCost: getEnvAsInt("BCRYPT_ROUNDS", 12),
		},
		Seed: SeedConfig{
			SuperAdminUsername: os.Getenv("SEED_SUPER_ADMIN_USERNAME"),
			SuperAdminEmail:    os.Getenv("SEED_SUPER_ADMIN_EMAIL"),
			SuperAdminPassword: os.Getenv("SEED_SUPER_ADMIN_PASSWORD"),
		},
	}

	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		cfg.JWT.Secret = devJWTSecret
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction || os.Getenv("GIN_MODE") == "release"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("36h") and the "<n>d" day suffix.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if strings.HasSuffix(raw, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(raw, "d")); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
