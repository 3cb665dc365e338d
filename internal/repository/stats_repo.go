package repository

import (
	"context"

	"donation-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserCounters struct {
	Total            int64 `json:"total"`
	CommunityMembers int64 `json:"community_members"`
	Verified         int64 `json:"verified"`
}

type CampaignCounters struct {
	Total       int64           `json:"total"`
	Active      int64           `json:"active"`
	Pending     int64           `json:"pending"`
	TotalRaised decimal.Decimal `json:"total_raised"`
}

type DonationCounters struct {
	Total        int64           `json:"total"`
	Successful   int64           `json:"successful"`
	TotalDonated decimal.Decimal `json:"total_donated"`
}

type CommunityCounters struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}

type DashboardCounters struct {
	Users     UserCounters      `json:"users"`
	Campaigns CampaignCounters  `json:"campaigns"`
	Donations DonationCounters  `json:"donations"`
	Community CommunityCounters `json:"community"`
}

type ImpactCounters struct {
	ActiveCampaigns int64 `json:"active_campaigns"`
	ActiveDonors    int64 `json:"active_donors"`
}

type UserActivity struct {
	TotalDonations  int64           `json:"total_donations"`
	TotalDonated    decimal.Decimal `json:"total_donated"`
	TotalCampaigns  int64           `json:"total_campaigns"`
	ActiveCampaigns int64           `json:"active_campaigns"`
	TotalRaised     decimal.Decimal `json:"total_raised"`
}

// StatsRepository runs the read-only aggregate queries behind dashboards.
type StatsRepository interface {
	Dashboard(ctx context.Context) (DashboardCounters, error)
	Impact(ctx context.Context) (ImpactCounters, error)
	UserActivity(ctx context.Context, userID uuid.UUID) (UserActivity, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) count(ctx context.Context, m interface{}, where string, args ...interface{}) (int64, error) {
	var n int64
	q := GetDB(ctx, r.db).Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *statsRepository) sum(ctx context.Context, m interface{}, column, where string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	q := GetDB(ctx, r.db).Model(m).Select("SUM(" + column + ")")
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *statsRepository) Dashboard(ctx context.Context) (DashboardCounters, error) {
	var out DashboardCounters
	var err error

	steps := []func() error{
		func() error { out.Users.Total, err = r.count(ctx, &model.User{}, ""); return err },
		func() error {
			out.Users.CommunityMembers, err = r.count(ctx, &model.User{}, "role = ?", model.UserRoleCommunityMember)
			return err
		},
		func() error { out.Users.Verified, err = r.count(ctx, &model.User{}, "is_verified = ?", true); return err },
		func() error { out.Campaigns.Total, err = r.count(ctx, &model.Campaign{}, ""); return err },
		func() error {
			out.Campaigns.Active, err = r.count(ctx, &model.Campaign{}, "status = ?", model.CampaignStatusActive)
			return err
		},
		func() error {
			out.Campaigns.Pending, err = r.count(ctx, &model.Campaign{}, "status = ?", model.CampaignStatusPending)
			return err
		},
		func() error {
			out.Campaigns.TotalRaised, err = r.sum(ctx, &model.Campaign{}, "current_amount", "")
			return err
		},
		func() error { out.Donations.Total, err = r.count(ctx, &model.Donation{}, ""); return err },
		func() error {
			out.Donations.Successful, err = r.count(ctx, &model.Donation{}, "payment_status = ?", model.PaymentStatusSuccess)
			return err
		},
		func() error {
			out.Donations.TotalDonated, err = r.sum(ctx, &model.Donation{}, "amount", "payment_status = ?", model.PaymentStatusSuccess)
			return err
		},
		func() error { out.Community.Total, err = r.count(ctx, &model.CommunityRequest{}, ""); return err },
		func() error {
			out.Community.Pending, err = r.count(ctx, &model.CommunityRequest{}, "status = ?", model.CommunityStatusPending)
			return err
		},
		func() error {
			out.Community.Approved, err = r.count(ctx, &model.CommunityRequest{}, "status = ?", model.CommunityStatusApproved)
			return err
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return DashboardCounters{}, err
		}
	}
	return out, nil
}

func (r *statsRepository) Impact(ctx context.Context) (ImpactCounters, error) {
	var out ImpactCounters
	var err error

	if out.ActiveCampaigns, err = r.count(ctx, &model.Campaign{}, "status = ?", model.CampaignStatusActive); err != nil {
		return ImpactCounters{}, err
	}
	err = GetDB(ctx, r.db).Model(&model.Donation{}).
		Where("payment_status = ?", model.PaymentStatusSuccess).
		Distinct("user_id").
		Count(&out.ActiveDonors).Error
	if err != nil {
		return ImpactCounters{}, err
	}
	return out, nil
}

func (r *statsRepository) UserActivity(ctx context.Context, userID uuid.UUID) (UserActivity, error) {
	var out UserActivity
	var err error

	if out.TotalDonations, err = r.count(ctx, &model.Donation{}, "user_id = ? AND payment_status = ?", userID, model.PaymentStatusSuccess); err != nil {
		return UserActivity{}, err
	}
	if out.TotalDonated, err = r.sum(ctx, &model.Donation{}, "amount", "user_id = ? AND payment_status = ?", userID, model.PaymentStatusSuccess); err != nil {
		return UserActivity{}, err
	}
	if out.TotalCampaigns, err = r.count(ctx, &model.Campaign{}, "user_id = ?", userID); err != nil {
		return UserActivity{}, err
	}
	if out.ActiveCampaigns, err = r.count(ctx, &model.Campaign{}, "user_id = ? AND status = ?", userID, model.CampaignStatusActive); err != nil {
		return UserActivity{}, err
	}
	if out.TotalRaised, err = r.sum(ctx, &model.Campaign{}, "current_amount", "user_id = ?", userID); err != nil {
		return UserActivity{}, err
	}
	return out, nil
}
