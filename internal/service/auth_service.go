package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"donation-api/internal/apperror"
	"donation-api/internal/config"
	"donation-api/internal/logger"
	"donation-api/internal/metrics"
	"donation-api/internal/model"
	"donation-api/internal/permission"
	"donation-api/internal/repository"
	"donation-api/internal/token"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=255"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,min=10,max=20,phone"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminLoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserAuthResponse struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	TokenType    string              `json:"token_type"`
	ExpiresIn    int64               `json:"expires_in"`
	User         *model.User         `json:"user"`
	Permissions  []string            `json:"permissions"`
	RoleInfo     permission.RoleInfo `json:"roleInfo"`
}

type AdminAuthResponse struct {
	Token       string              `json:"token"`
	TokenType   string              `json:"token_type"`
	ExpiresIn   int64               `json:"expires_in"`
	Admin       *model.AdminUser    `json:"admin"`
	Permissions []string            `json:"permissions"`
	RoleInfo    permission.RoleInfo `json:"roleInfo"`
}

// MeResponse describes the caller. Exactly one of User and Admin is set.
type MeResponse struct {
	Type         string              `json:"type"`
	User         *model.User         `json:"user,omitempty"`
	Admin        *model.AdminUser    `json:"admin,omitempty"`
	Permissions  []string            `json:"permissions"`
	RoleInfo     permission.RoleInfo `json:"roleInfo"`
	Capabilities permission.Flags    `json:"capabilities"`
}

type VerifyTokenResponse struct {
	Valid bool   `json:"valid"`
	Type  string `json:"type"`
	ID    string `json:"id"`
	Role  string `json:"role"`
}

type DebugAdminCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type DebugAdminResponse struct {
	Admin       *model.AdminUser      `json:"admin"`
	Credentials DebugAdminCredentials `json:"credentials"`
}

const (
	tokenTypeBearer    = "Bearer"
	debugAdminUsername = "debug_admin"
	debugAdminPassword = "admin123"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserAuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*UserAuthResponse, error)
	AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminAuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Me(user *model.User, admin *model.AdminUser) *MeResponse
	VerifyToken(user *model.User, admin *model.AdminUser) *VerifyTokenResponse
	CreateDebugAdmin(ctx context.Context) (*DebugAdminResponse, error)
	EnsureSuperAdmin(ctx context.Context, seed config.SeedConfig) error
}

type authService struct {
	userRepo  repository.UserRepository
	adminRepo repository.AdminRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	codec     *token.Codec
	hasher    *PasswordHasher
	log       logger.ILogger
	now       func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	adminRepo repository.AdminRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	codec *token.Codec,
	hasher *PasswordHasher,
	log logger.ILogger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		adminRepo: adminRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		codec:     codec,
		hasher:    hasher,
		log:       log,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*UserAuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, email, req.Phone)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	if exists {
		return nil, apperror.Conflict("User already exists with this email or phone number")
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	// Self-registration always yields the base role; promotion goes through community review.
	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    req.Phone,
		Password: hashed,
		Role:     model.UserRoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if apperror.IsDuplicateKey(err) {
			return nil, apperror.Conflict("User already exists with this email or phone number")
		}
		return nil, apperror.FromDB(err, "")
	}

	s.log.Info("auth", "user registered", map[string]interface{}{"user_id": user.ID.String()})
	return s.userSession(user)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*UserAuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Internal("Internal server error", err)
		}
		metrics.ObserveLogin(string(token.KindUser), false)
		return nil, apperror.Unauthorized("Invalid email or password")
	}
	if !s.hasher.Matches(user.Password, req.Password) {
		metrics.ObserveLogin(string(token.KindUser), false)
		s.log.Warn("auth", "user login failed", map[string]interface{}{"user_id": user.ID.String()})
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	metrics.ObserveLogin(string(token.KindUser), true)
	return s.userSession(user)
}

func (s *authService) AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminAuthResponse, error) {
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" {
		return nil, apperror.BadRequest("Username or email is required")
	}

	admin, err := s.adminRepo.GetActiveByLogin(ctx, identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Internal("Internal server error", err)
		}
		metrics.ObserveLogin(string(token.KindAdmin), false)
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if !s.hasher.Matches(admin.Password, req.Password) {
		metrics.ObserveLogin(string(token.KindAdmin), false)
		s.log.Warn("auth", "admin login failed", map[string]interface{}{"admin_id": admin.ID.String()})
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	now := s.now()
	if err := s.adminRepo.TouchLastLogin(ctx, admin.ID, now); err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	admin.LastLogin = &now

	access, _, err := s.codec.Issue(token.KindAdmin, admin.ID.String(), token.Claims{Username: admin.Username, Role: admin.Role})
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}

	metrics.ObserveLogin(string(token.KindAdmin), true)
	role := permission.Role(admin.Role)
	return &AdminAuthResponse{
		Token:       access,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.codec.AccessTTL().Seconds()),
		Admin:       admin,
		Permissions: permission.Strings(role),
		RoleInfo:    permission.Info(role),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Verify(token.KindRefresh, refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, apperror.Unauthorized("Refresh token has expired, please login again")
		}
		return nil, apperror.Unauthorized("Invalid refresh token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("User not found or token invalid")
		}
		return nil, apperror.Internal("Internal server error", err)
	}
	return s.issuePair(user)
}

func (s *authService) issuePair(user *model.User) (*TokenPair, error) {
	claims := token.Claims{Email: user.Email, Role: user.Role}
	access, _, err := s.codec.Issue(token.KindUser, user.ID.String(), claims)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}
	refresh, _, err := s.codec.Issue(token.KindRefresh, user.ID.String(), claims)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}, nil
}

func (s *authService) userSession(user *model.User) (*UserAuthResponse, error) {
	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	role := permission.Role(user.Role)
	return &UserAuthResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         user,
		Permissions:  permission.Strings(role),
		RoleInfo:     permission.Info(role),
	}, nil
}

func (s *authService) Me(user *model.User, admin *model.AdminUser) *MeResponse {
	if admin != nil {
		role := permission.Role(admin.Role)
		return &MeResponse{
			Type:         "admin",
			Admin:        admin,
			Permissions:  permission.Strings(role),
			RoleInfo:     permission.Info(role),
			Capabilities: permission.FlagsFor(role),
		}
	}
	role := permission.Role(user.Role)
	return &MeResponse{
		Type:         "user",
		User:         user,
		Permissions:  permission.Strings(role),
		RoleInfo:     permission.Info(role),
		Capabilities: permission.FlagsFor(role),
	}
}

func (s *authService) VerifyToken(user *model.User, admin *model.AdminUser) *VerifyTokenResponse {
	if admin != nil {
		return &VerifyTokenResponse{Valid: true, Type: "admin", ID: admin.ID.String(), Role: admin.Role}
	}
	return &VerifyTokenResponse{Valid: true, Type: "user", ID: user.ID.String(), Role: user.Role}
}

// CreateDebugAdmin provisions a fixed super admin. Only routed in development.
func (s *authService) CreateDebugAdmin(ctx context.Context) (*DebugAdminResponse, error) {
	exists, err := s.adminRepo.ExistsByUsernameOrEmail(ctx, debugAdminUsername, "debug@admin.com", nil)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	if exists {
		return nil, apperror.Conflict("Debug admin already exists")
	}

	admin, err := s.createSystemAdmin(ctx, &model.AdminUser{
		Username: debugAdminUsername,
		Email:    "debug@admin.com",
		FullName: "Debug Administrator",
		Role:     model.AdminRoleSuperAdmin,
		IsActive: true,
	}, debugAdminPassword)
	if err != nil {
		return nil, err
	}
	return &DebugAdminResponse{
		Admin:       admin,
		Credentials: DebugAdminCredentials{Username: debugAdminUsername, Password: debugAdminPassword},
	}, nil
}

// EnsureSuperAdmin seeds the configured super admin when the directory is empty.
func (s *authService) EnsureSuperAdmin(ctx context.Context, seed config.SeedConfig) error {
	if seed.SuperAdminUsername == "" || seed.SuperAdminPassword == "" {
		return nil
	}
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := seed.SuperAdminEmail
	if email == "" {
		email = seed.SuperAdminUsername + "@localhost"
	}
	admin, err := s.createSystemAdmin(ctx, &model.AdminUser{
		Username: seed.SuperAdminUsername,
		Email:    strings.ToLower(email),
		FullName: "Super Administrator",
		Role:     model.AdminRoleSuperAdmin,
		IsActive: true,
	}, seed.SuperAdminPassword)
	if err != nil {
		return err
	}
	s.log.Info("auth", "super admin seeded", map[string]interface{}{"admin_id": admin.ID.String(), "username": admin.Username})
	return nil
}

// createSystemAdmin hashes the password and inserts the admin with its audit row in one transaction.
func (s *authService) createSystemAdmin(ctx context.Context, admin *model.AdminUser, password string) (*model.AdminUser, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}
	admin.Password = hashed

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.adminRepo.Create(txCtx, admin); err != nil {
			return apperror.FromDB(err, "")
		}
		return s.auditRepo.Record(txCtx, model.ActorSystem, uuid.Nil, model.ActionSeedSuperAdmin, admin.ID.String(), admin.Username,
			map[string]interface{}{"role": admin.Role})
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}
