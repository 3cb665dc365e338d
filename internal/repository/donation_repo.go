package repository

import (
	"context"

	"donation-api/internal/model"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DonationCounts is the per-campaign aggregate shown on campaign listings.
type DonationCounts struct {
	CampaignID          uuid.UUID
	TotalDonations      int64
	SuccessfulDonations int64
}

type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*model.Donation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]model.Donation, int64, error)
	CountsByCampaign(ctx context.Context, campaignIDs []uuid.UUID) (map[uuid.UUID]DonationCounts, error)
	UpdatePaymentForUser(ctx context.Context, id, userID uuid.UUID, status string, transactionID *string) error
}

type donationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) Create(ctx context.Context, donation *model.Donation) error {
	return GetDB(ctx, r.db).Create(donation).Error
}

// GetForUser filters by owner in the query so other users' donations are never loaded.
func (r *donationRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*model.Donation, error) {
	var donation model.Donation
	err := GetDB(ctx, r.db).Preload("Campaign").Preload("User").
		Where("id = ? AND user_id = ?", id, userID).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) ListByUser(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]model.Donation, int64, error) {
	var donations []model.Donation
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Donation{}).Where("user_id = ?", userID)
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Campaign").Preload("User").
		Order("created_at DESC").Scopes(p.Scope).
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

func (r *donationRepository) CountsByCampaign(ctx context.Context, campaignIDs []uuid.UUID) (map[uuid.UUID]DonationCounts, error) {
	out := make(map[uuid.UUID]DonationCounts, len(campaignIDs))
	if len(campaignIDs) == 0 {
		return out, nil
	}

	var rows []DonationCounts
	err := GetDB(ctx, r.db).Model(&model.Donation{}).
		Select("campaign_id, COUNT(*) AS total_donations, "+
			"SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END) AS successful_donations", model.PaymentStatusSuccess).
		Where("campaign_id IN ?", campaignIDs).
		Group("campaign_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.CampaignID] = row
	}
	return out, nil
}

func (r *donationRepository) UpdatePaymentForUser(ctx context.Context, id, userID uuid.UUID, status string, transactionID *string) error {
	cols := map[string]interface{}{"payment_status": status}
	if transactionID != nil {
		cols["transaction_id"] = *transactionID
	}
	return updateColumns(
		GetDB(ctx, r.db).Model(&model.Donation{}).Where("id = ? AND user_id = ?", id, userID),
		cols,
	)
}
