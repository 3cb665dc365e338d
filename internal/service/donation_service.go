package service

import (
	"context"
	"encoding/json"
	"strings"

	"donation-api/internal/apperror"
	"donation-api/internal/logger"
	"donation-api/internal/metrics"
	"donation-api/internal/model"
	"donation-api/internal/repository"
	"donation-api/internal/validation"
	"donation-api/internal/websocket"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateDonationRequest struct {
	CampaignID    string      `json:"campaign_id" binding:"required,uuid"`
	Amount        json.Number `json:"amount" binding:"required,decimalgt0"`
	PaymentMethod string      `json:"payment_method" binding:"required,oneof=qris bank_transfer e_wallet"`
	Notes         *string     `json:"notes" binding:"omitempty,max=500"`
}

type UpdatePaymentRequest struct {
	PaymentStatus string  `json:"payment_status" binding:"required,oneof=pending success failed cancelled"`
	TransactionID *string `json:"transaction_id" binding:"omitempty,max=255"`
}

type DonationResponse struct {
	model.Donation
	CampaignTitle string `json:"campaign_title,omitempty"`
	DonorName     string `json:"donor_name,omitempty"`
}

type DonationService interface {
	Create(ctx context.Context, donor *model.User, req CreateDonationRequest) (*DonationResponse, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*DonationResponse, error)
	ListByUser(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]DonationResponse, int64, error)
	UpdatePayment(ctx context.Context, id, userID uuid.UUID, req UpdatePaymentRequest) (*DonationResponse, error)
}

type donationService struct {
	donationRepo repository.DonationRepository
	campaignRepo repository.CampaignRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	events       websocket.Publisher
	log          logger.ILogger
}

func NewDonationService(
	donationRepo repository.DonationRepository,
	campaignRepo repository.CampaignRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events websocket.Publisher,
	log logger.ILogger,
) DonationService {
	return &donationService{
		donationRepo: donationRepo,
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		events:       events,
		log:          log,
	}
}

// Create records a successful donation and adds its amount to the campaign in one transaction.
// The campaign row stays locked from the read until commit, so concurrent donors serialize.
func (s *donationService) Create(ctx context.Context, donor *model.User, req CreateDonationRequest) (*DonationResponse, error) {
	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return nil, apperror.Validation("Validation Error", []string{"campaign_id must be a valid UUID"})
	}
	amount, ok := validation.ParseAmount(req.Amount.String())
	if !ok {
		return nil, apperror.Validation("Validation Error", []string{"amount " + validation.AmountRule})
	}

	donation := &model.Donation{
		UserID:        donor.ID,
		CampaignID:    campaignID,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: model.PaymentStatusSuccess,
		Notes:         trimmed(req.Notes),
	}

	var campaign *model.Campaign
	var newTotal decimal.Decimal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		campaign, err = s.campaignRepo.FindActiveForUpdate(txCtx, campaignID)
		if err != nil {
			return apperror.FromDB(err, "Campaign not found or not active")
		}

		if err := s.donationRepo.Create(txCtx, donation); err != nil {
			return apperror.FromDB(err, "")
		}

		newTotal = campaign.CurrentAmount.Add(amount)
		if err := s.campaignRepo.SetCurrentAmount(txCtx, campaignID, newTotal); err != nil {
			return apperror.FromDB(err, "Campaign not found or not active")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveDonation(donation.PaymentMethod, amount)
	s.log.Info("donation", "donation committed", map[string]interface{}{
		"donation_id":    donation.ID.String(),
		"campaign_id":    campaignID.String(),
		"user_id":        donor.ID.String(),
		"amount":         amount.String(),
		"current_amount": newTotal.String(),
	})
	s.events.Publish(websocket.EventDonationCreated, map[string]interface{}{
		"donation_id":    donation.ID.String(),
		"campaign_id":    campaignID.String(),
		"amount":         amount.String(),
		"current_amount": newTotal.String(),
	})

	return &DonationResponse{Donation: *donation, CampaignTitle: campaign.Title, DonorName: donor.Name}, nil
}

func (s *donationService) GetForUser(ctx context.Context, id, userID uuid.UUID) (*DonationResponse, error) {
	donation, err := s.donationRepo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, apperror.FromDB(err, "Donation not found")
	}
	resp := toDonationResponse(*donation)
	return &resp, nil
}

func (s *donationService) ListByUser(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]DonationResponse, int64, error) {
	donations, total, err := s.donationRepo.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	out := make([]DonationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, toDonationResponse(d))
	}
	return out, total, nil
}

// UpdatePayment only changes the status columns. current_amount is left untouched even when a
// donation moves away from success.
func (s *donationService) UpdatePayment(ctx context.Context, id, userID uuid.UUID, req UpdatePaymentRequest) (*DonationResponse, error) {
	var txID *string
	if req.TransactionID != nil {
		if t := strings.TrimSpace(*req.TransactionID); t != "" {
			txID = &t
		}
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.donationRepo.UpdatePaymentForUser(txCtx, id, userID, req.PaymentStatus, txID); err != nil {
			return apperror.FromDB(err, "Donation not found or access denied")
		}
		return s.auditRepo.Record(txCtx, model.ActorUser, userID, model.ActionUpdateDonationPayment, id.String(), "",
			map[string]interface{}{"payment_status": req.PaymentStatus})
	})
	if err != nil {
		return nil, err
	}
	return s.GetForUser(ctx, id, userID)
}

func toDonationResponse(d model.Donation) DonationResponse {
	resp := DonationResponse{Donation: d}
	if d.Campaign != nil {
		resp.CampaignTitle = d.Campaign.Title
	}
	if d.User != nil {
		resp.DonorName = d.User.Name
	}
	return resp
}
