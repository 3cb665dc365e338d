package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"sync"
	"testing"
	"time"

	"donation-api/internal/apperror"
	"donation-api/internal/database"
	"donation-api/internal/dbtest"
	"donation-api/internal/logger"
	"donation-api/internal/repository"
	"donation-api/internal/token"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected failure")

// memStorage records saves and deletes without touching disk.
type memStorage struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	err     error
}

func (s *memStorage) Save(_ context.Context, file *multipart.FileHeader, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	ref := folder + "/" + file.Filename
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *memStorage) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ref)
	return nil
}

type recordedEvent struct {
	name string
	data map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(event string, data map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.name)
	}
	return out
}

// failingAudit lets the wrapped change run, then fails the audit write.
type failingAudit struct {
	repository.AuditRepository
}

func (failingAudit) Record(context.Context, string, uuid.UUID, string, string, string, map[string]interface{}) error {
	return errInjected
}

type failingAmount struct {
	repository.CampaignRepository
}

func (failingAmount) SetCurrentAmount(context.Context, uuid.UUID, decimal.Decimal) error {
	return errInjected
}

// failingRole fails the promotion that follows the request's status write.
type failingRole struct {
	repository.UserRepository
}

func (failingRole) UpdateRole(context.Context, uuid.UUID, string) error {
	return errInjected
}

// openPostgres connects to TEST_DATABASE_DSN for tests that need real row locks.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := database.NewConnection(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// uniqueKTP returns a 16 digit number that will not collide with earlier runs.
func uniqueKTP() string {
	return fmt.Sprintf("%016d", uuid.New().ID())
}

type env struct {
	db        *gorm.DB
	users     repository.UserRepository
	admins    repository.AdminRepository
	campaigns repository.CampaignRepository
	donations repository.DonationRepository
	community repository.CommunityRepository
	audit     repository.AuditRepository
	stats     repository.StatsRepository
	tx        repository.TransactionManager
	storage   *memStorage
	events    *recordingPublisher
	codec     *token.Codec
	hasher    *PasswordHasher
	log       logger.ILogger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	return &env{
		db:        db,
		users:     repository.NewUserRepository(db),
		admins:    repository.NewAdminRepository(db),
		campaigns: repository.NewCampaignRepository(db),
		donations: repository.NewDonationRepository(db),
		community: repository.NewCommunityRepository(db),
		audit:     repository.NewAuditRepository(db),
		stats:     repository.NewStatsRepository(db),
		tx:        repository.NewTransactionManager(db),
		storage:   &memStorage{},
		events:    &recordingPublisher{},
		codec: token.NewCodec(token.Config{
			Secret:          []byte("service-test-secret"),
			Issuer:          "cat-donation-api",
			UserAudience:    "cat-donation-users",
			AdminAudience:   "cat-donation-admins",
			RefreshAudience: "cat-donation-users-refresh",
			AccessTTL:       time.Hour,
			RefreshTTL:      24 * time.Hour,
		}),
		hasher: NewPasswordHasher(bcrypt.MinCost),
		log:    logger.Nop(),
	}
}

func (e *env) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Table("audit_logs").Where("action = ?", action).Count(&n).Error)
	return n
}

func requireStatus(t *testing.T, err error, status int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, status, appErr.StatusCode, appErr.Message)
	return appErr
}
