package repository

import (
	"context"
	"strings"
	"time"

	"donation-api/internal/model"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *model.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error)
	GetActiveByLogin(ctx context.Context, identifier string) (*model.AdminUser, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, p pagination.Params) ([]model.AdminUser, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch model.AdminPatch) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *model.AdminUser) error {
	return GetDB(ctx, r.db).Create(admin).Error
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error) {
	var admin model.AdminUser
	if err := GetDB(ctx, r.db).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*model.AdminUser, error) {
	var admin model.AdminUser
	if err := GetDB(ctx, r.db).First(&admin, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetActiveByLogin matches identifier against username or email.
func (r *adminRepository) GetActiveByLogin(ctx context.Context, identifier string) (*model.AdminUser, error) {
	var admin model.AdminUser
	err := GetDB(ctx, r.db).
		Where("(username = ? OR email = ?) AND is_active = ?", identifier, strings.ToLower(identifier), true).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := GetDB(ctx, r.db).Unscoped().Model(&model.AdminUser{}).
		Where("username = ? OR email = ?", username, strings.ToLower(email))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *adminRepository) List(ctx context.Context, p pagination.Params) ([]model.AdminUser, int64, error) {
	var admins []model.AdminUser
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AdminUser{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC").Scopes(p.Scope).Find(&admins).Error; err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

func (r *adminRepository) Update(ctx context.Context, id uuid.UUID, patch model.AdminPatch) error {
	return updateColumns(GetDB(ctx, r.db).Model(&model.AdminUser{}).Where("id = ?", id), patch.Columns())
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.AdminUser{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.AdminUser{}).Count(&count).Error
	return count, err
}
