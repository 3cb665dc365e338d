package service

import (
	"context"
	"strings"

	"donation-api/internal/apperror"
	"donation-api/internal/logger"
	"donation-api/internal/model"
	"donation-api/internal/permission"
	"donation-api/internal/repository"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
)

type UpdateUserStatusRequest struct {
	IsVerified *bool `json:"is_verified" binding:"required"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user community_member"`
}

type CreateAdminRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
	Role     string `json:"role" binding:"omitempty,oneof=admin super_admin"`
}

// UpdateAdminRequest lists the only admin columns that may be changed.
type UpdateAdminRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	FullName *string `json:"full_name" binding:"omitempty,min=2,max=255"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin super_admin"`
	IsActive *bool   `json:"is_active"`
}

type UserListFilter struct {
	Role   string
	Search string
}

type AdminService interface {
	Dashboard(ctx context.Context) (*repository.DashboardCounters, error)
	ListUsers(ctx context.Context, filter UserListFilter, p pagination.Params) ([]model.User, int64, error)
	UpdateUserStatus(ctx context.Context, adminID, userID uuid.UUID, verified bool) (*model.User, error)
	UpdateUserRole(ctx context.Context, adminID, userID uuid.UUID, role string) (*model.User, error)
	ListAdmins(ctx context.Context, p pagination.Params) ([]model.AdminUser, int64, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*model.AdminUser, error)
	CreateAdmin(ctx context.Context, actorID uuid.UUID, req CreateAdminRequest) (*model.AdminUser, error)
	UpdateAdmin(ctx context.Context, actorID, id uuid.UUID, req UpdateAdminRequest) (*model.AdminUser, error)
}

type adminService struct {
	adminRepo repository.AdminRepository
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hasher    *PasswordHasher
	log       logger.ILogger
}

func NewAdminService(
	adminRepo repository.AdminRepository,
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hasher *PasswordHasher,
	log logger.ILogger,
) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		userRepo:  userRepo,
		statsRepo: statsRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hasher:    hasher,
		log:       log,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*repository.DashboardCounters, error) {
	counters, err := s.statsRepo.Dashboard(ctx)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	return &counters, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter UserListFilter, p pagination.Params) ([]model.User, int64, error) {
	if filter.Role != "" && !permission.IsUserRole(permission.Role(filter.Role)) {
		return nil, 0, apperror.BadRequest("Invalid role filter")
	}
	users, total, err := s.userRepo.List(ctx, repository.UserFilter{Role: filter.Role, Search: strings.TrimSpace(filter.Search)}, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	return users, total, nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, adminID, userID uuid.UUID, verified bool) (*model.User, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.UpdateVerification(txCtx, userID, verified); err != nil {
			return apperror.FromDB(err, "User not found")
		}
		return s.auditRepo.Record(txCtx, model.ActorAdmin, adminID, model.ActionUpdateUserVerification, userID.String(), "",
			map[string]interface{}{"is_verified": verified})
	})
	if err != nil {
		return nil, err
	}
	return s.reloadUser(ctx, userID)
}

// UpdateUserRole is the admin override. Only persisted user roles are assignable.
func (s *adminService) UpdateUserRole(ctx context.Context, adminID, userID uuid.UUID, role string) (*model.User, error) {
	if !permission.IsAssignableUserRole(permission.Role(role)) {
		return nil, apperror.BadRequest("Invalid role. Must be 'user' or 'community_member'")
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.UpdateRole(txCtx, userID, role); err != nil {
			return apperror.FromDB(err, "User not found")
		}
		return s.auditRepo.Record(txCtx, model.ActorAdmin, adminID, model.ActionUpdateUserRole, userID.String(), "",
			map[string]interface{}{"role": role})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("admin", "user role overridden", map[string]interface{}{"user_id": userID.String(), "role": role, "admin_id": adminID.String()})
	return s.reloadUser(ctx, userID)
}

func (s *adminService) reloadUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "User not found")
	}
	return user, nil
}

func (s *adminService) ListAdmins(ctx context.Context, p pagination.Params) ([]model.AdminUser, int64, error) {
	admins, total, err := s.adminRepo.List(ctx, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	return admins, total, nil
}

func (s *adminService) GetAdmin(ctx context.Context, id uuid.UUID) (*model.AdminUser, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "Admin not found")
	}
	return admin, nil
}

func (s *adminService) CreateAdmin(ctx context.Context, actorID uuid.UUID, req CreateAdminRequest) (*model.AdminUser, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := req.Role
	if role == "" {
		role = model.AdminRoleAdmin
	}

	exists, err := s.adminRepo.ExistsByUsernameOrEmail(ctx, username, email, nil)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	if exists {
		return nil, apperror.Conflict("Admin already exists with this username or email")
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}
	admin := &model.AdminUser{
		Username: username,
		Email:    email,
		Password: hashed,
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
		IsActive: true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.adminRepo.Create(txCtx, admin); err != nil {
			if apperror.IsDuplicateKey(err) {
				return apperror.Conflict("Admin already exists with this username or email")
			}
			return apperror.FromDB(err, "")
		}
		return s.auditRepo.Record(txCtx, model.ActorAdmin, actorID, model.ActionCreateAdmin, admin.ID.String(), admin.Username,
			map[string]interface{}{"role": admin.Role})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("admin", "admin created", map[string]interface{}{"admin_id": admin.ID.String(), "actor_id": actorID.String()})
	return admin, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, actorID, id uuid.UUID, req UpdateAdminRequest) (*model.AdminUser, error) {
	patch := model.AdminPatch{
		Username: trimmed(req.Username),
		FullName: trimmed(req.FullName),
		Role:     req.Role,
		IsActive: req.IsActive,
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		patch.Email = &email
	}
	if req.Password != nil {
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperror.Internal("Failed to hash password", err)
		}
		patch.PasswordHash = &hashed
	}
	if len(patch.Columns()) == 0 {
		return nil, apperror.BadRequest("No fields to update")
	}

	if patch.Username != nil || patch.Email != nil {
		username, email := "", ""
		if patch.Username != nil {
			username = *patch.Username
		}
		if patch.Email != nil {
			email = *patch.Email
		}
		exists, err := s.adminRepo.ExistsByUsernameOrEmail(ctx, username, email, &id)
		if err != nil {
			return nil, apperror.Internal("Internal server error", err)
		}
		if exists {
			return nil, apperror.Conflict("Admin already exists with this username or email")
		}
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.adminRepo.Update(txCtx, id, patch); err != nil {
			return apperror.FromDB(err, "Admin not found")
		}
		fields := make([]string, 0, len(patch.Columns()))
		for col := range patch.Columns() {
			if col == "password" {
				col = "password (changed)"
			}
			fields = append(fields, col)
		}
		return s.auditRepo.Record(txCtx, model.ActorAdmin, actorID, model.ActionUpdateAdmin, id.String(), "",
			map[string]interface{}{"fields": fields})
	})
	if err != nil {
		return nil, err
	}
	return s.GetAdmin(ctx, id)
}
