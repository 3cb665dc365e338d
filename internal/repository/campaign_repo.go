package repository

import (
	"context"
	"strings"
	"time"

	"donation-api/internal/model"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CampaignFilter struct {
	Status   string
	Category string
	Search   string
	UserID   *uuid.UUID
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *model.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	FindActiveForUpdate(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Campaign, error)
	List(ctx context.Context, filter CampaignFilter, p pagination.Params) ([]model.Campaign, int64, error)
	Featured(ctx context.Context, limit int) ([]model.Campaign, error)
	UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch model.CampaignPatch) error
	Review(ctx context.Context, id uuid.UUID, status, notes string, adminID uuid.UUID, at time.Time) error
	SetCurrentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type campaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *model.Campaign) error {
	return GetDB(ctx, r.db).Create(campaign).Error
}

func (r *campaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := GetDB(ctx, r.db).Preload("User").First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// FindActiveForUpdate locks the campaign row until the surrounding transaction ends.
func (r *campaignRepository) FindActiveForUpdate(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var campaign model.Campaign
	err := forUpdate(GetDB(ctx, r.db)).
		Where("id = ? AND status = ?", id, model.CampaignStatusActive).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := forUpdate(GetDB(ctx, r.db)).Where("id = ?", id).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) List(ctx context.Context, filter CampaignFilter, p pagination.Params) ([]model.Campaign, int64, error) {
	var campaigns []model.Campaign
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Campaign{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", like, like)
	}

	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("User").Order("created_at DESC").Scopes(p.Scope).Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// Featured ranks active campaigns by raised amount, newest first on ties.
func (r *campaignRepository) Featured(ctx context.Context, limit int) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := GetDB(ctx, r.db).Preload("User").
		Where("status = ?", model.CampaignStatusActive).
		Order("current_amount DESC").Order("created_at DESC").
		Limit(limit).
		Find(&campaigns).Error
	return campaigns, err
}

// UpdateOwned only touches the row when ownerID owns it; otherwise gorm.ErrRecordNotFound.
func (r *campaignRepository) UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch model.CampaignPatch) error {
	return updateColumns(
		GetDB(ctx, r.db).Model(&model.Campaign{}).Where("id = ? AND user_id = ?", id, ownerID),
		patch.Columns(),
	)
}

func (r *campaignRepository) Review(ctx context.Context, id uuid.UUID, status, notes string, adminID uuid.UUID, at time.Time) error {
	return updateColumns(GetDB(ctx, r.db).Model(&model.Campaign{}).Where("id = ?", id), map[string]interface{}{
		"status":      status,
		"admin_notes": notes,
		"reviewed_by": adminID,
		"reviewed_at": at,
	})
}

func (r *campaignRepository) SetCurrentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return updateColumns(GetDB(ctx, r.db).Model(&model.Campaign{}).Where("id = ?", id),
		map[string]interface{}{"current_amount": amount})
}
