package repository

import (
	"context"
	"strings"

	"donation-api/internal/model"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserFilter struct {
	Role   string
	Search string
}

// UserRepository defines data access for end users
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	PhoneTaken(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, filter UserFilter, p pagination.Params) ([]model.User, int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch model.UserProfilePatch) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	UpdateVerification(ctx context.Context, id uuid.UUID, verified bool) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetForUpdate locks the user row so per-user submissions serialize.
func (r *userRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := forUpdate(GetDB(ctx, r.db)).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Where("email = ? OR phone = ?", strings.ToLower(email), phone).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) PhoneTaken(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Where("phone = ? AND id <> ?", phone, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, p pagination.Params) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := GetDB(ctx, r.db).Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Scopes(p.Scope).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, patch model.UserProfilePatch) error {
	return updateColumns(GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id), patch.Columns())
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return updateColumns(GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id),
		map[string]interface{}{"password": hash})
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return updateColumns(GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id),
		map[string]interface{}{"role": role})
}

func (r *userRepository) UpdateVerification(ctx context.Context, id uuid.UUID, verified bool) error {
	return updateColumns(GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id),
		map[string]interface{}{"is_verified": verified})
}

// updateColumns applies cols and reports gorm.ErrRecordNotFound when nothing matched.
func updateColumns(query *gorm.DB, cols map[string]interface{}) error {
	res := query.Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
