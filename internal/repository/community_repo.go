package repository

import (
	"context"

	"donation-api/internal/model"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityRepository interface {
	Create(ctx context.Context, req *model.CommunityRequest) error
	HasActiveRequest(ctx context.Context, userID uuid.UUID) (bool, error)
	KTPExists(ctx context.Context, ktp string) (bool, error)
	LatestByUser(ctx context.Context, userID uuid.UUID) (*model.CommunityRequest, error)
	FindPendingForUpdate(ctx context.Context, id uuid.UUID) (*model.CommunityRequest, error)
	Update(ctx context.Context, req *model.CommunityRequest) error
	List(ctx context.Context, status string, p pagination.Params) ([]model.CommunityRequest, int64, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, req *model.CommunityRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

// HasActiveRequest reports a pending or approved request. Rejected ones do not count.
func (r *communityRepository) HasActiveRequest(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.CommunityRequest{}).
		Where("user_id = ? AND status IN ?", userID,
			[]string{model.CommunityStatusPending, model.CommunityStatusApproved}).
		Count(&count).Error
	return count > 0, err
}

func (r *communityRepository) KTPExists(ctx context.Context, ktp string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.CommunityRequest{}).Where("ktp_number = ?", ktp).Count(&count).Error
	return count > 0, err
}

func (r *communityRepository) LatestByUser(ctx context.Context, userID uuid.UUID) (*model.CommunityRequest, error) {
	var req model.CommunityRequest
	err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPendingForUpdate locks the request row. Decided requests are reported as not found.
func (r *communityRepository) FindPendingForUpdate(ctx context.Context, id uuid.UUID) (*model.CommunityRequest, error) {
	var req model.CommunityRequest
	err := forUpdate(GetDB(ctx, r.db)).
		Where("id = ? AND status = ?", id, model.CommunityStatusPending).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *communityRepository) Update(ctx context.Context, req *model.CommunityRequest) error {
	return GetDB(ctx, r.db).Omit("User").Save(req).Error
}

func (r *communityRepository) List(ctx context.Context, status string, p pagination.Params) ([]model.CommunityRequest, int64, error) {
	var requests []model.CommunityRequest
	var total int64

	query := GetDB(ctx, r.db).Model(&model.CommunityRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("User").Order("created_at ASC").Scopes(p.Scope).Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
