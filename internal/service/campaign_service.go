package service

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"
	"time"

	"donation-api/internal/apperror"
	"donation-api/internal/logger"
	"donation-api/internal/metrics"
	"donation-api/internal/model"
	"donation-api/internal/repository"
	"donation-api/internal/upload"
	"donation-api/internal/validation"
	"donation-api/internal/websocket"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const FeaturedLimit = 6

// CreateCampaignRequest is bound from the multipart form; the image travels separately.
type CreateCampaignRequest struct {
	Title        string `form:"title" binding:"required,min=5,max=255"`
	Description  string `form:"description" binding:"required,min=20,max=5000"`
	Location     string `form:"location" binding:"required,min=3,max=255"`
	Category     string `form:"category" binding:"required,oneof=medical food rescue shelter other adoption"`
	TargetAmount string `form:"target_amount" binding:"required,decimalgt0"`
	Deadline     string `form:"deadline" binding:"required,futuredate"`
	BankAccount  string `form:"bank_account" binding:"required,min=10,max=50"`
}

type UpdateCampaignRequest struct {
	Title        *string      `json:"title" binding:"omitempty,min=5,max=255"`
	Description  *string      `json:"description" binding:"omitempty,min=20,max=5000"`
	Location     *string      `json:"location" binding:"omitempty,min=3,max=255"`
	Category     *string      `json:"category" binding:"omitempty,oneof=medical food rescue shelter other adoption"`
	TargetAmount *json.Number `json:"target_amount" binding:"omitempty,decimalgt0"`
	Deadline     *string      `json:"deadline" binding:"omitempty,futuredate"`
	BankAccount  *string      `json:"bank_account" binding:"omitempty,min=10,max=50"`
}

type ReviewCampaignRequest struct {
	Status     string `json:"status" binding:"required,oneof=active rejected"`
	AdminNotes string `json:"admin_notes" binding:"required"`
}

type CampaignListFilter struct {
	Category string
	Search   string
}

// Viewer identifies who is reading a campaign. Zero value is an anonymous guest.
type Viewer struct {
	UserID *uuid.UUID
	Admin  bool
}

// CampaignResponse adds the computed projections. None of them are stored.
type CampaignResponse struct {
	model.Campaign
	OwnerName           string `json:"owner_name"`
	DaysRemaining       int    `json:"days_remaining"`
	TotalDonations      int64  `json:"total_donations"`
	SuccessfulDonations int64  `json:"successful_donations"`
}

type CampaignService interface {
	Create(ctx context.Context, owner *model.User, req CreateCampaignRequest, image *multipart.FileHeader) (*CampaignResponse, error)
	List(ctx context.Context, filter CampaignListFilter, p pagination.Params) ([]CampaignResponse, int64, error)
	Featured(ctx context.Context) ([]CampaignResponse, error)
	GetByID(ctx context.Context, id uuid.UUID, viewer Viewer) (*CampaignResponse, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, p pagination.Params) ([]CampaignResponse, int64, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, req UpdateCampaignRequest) (*CampaignResponse, error)
	Review(ctx context.Context, id, adminID uuid.UUID, req ReviewCampaignRequest) (*CampaignResponse, error)
	AdminList(ctx context.Context, status string, p pagination.Params) ([]CampaignResponse, int64, error)
}

type campaignService struct {
	campaignRepo repository.CampaignRepository
	donationRepo repository.DonationRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	storage      upload.Storage
	events       websocket.Publisher
	log          logger.ILogger
	now          func() time.Time
}

func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	donationRepo repository.DonationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	storage upload.Storage,
	events websocket.Publisher,
	log logger.ILogger,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		donationRepo: donationRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		storage:      storage,
		events:       events,
		log:          log,
		now:          time.Now,
	}
}

func (s *campaignService) Create(ctx context.Context, owner *model.User, req CreateCampaignRequest, image *multipart.FileHeader) (*CampaignResponse, error) {
	if owner.Role != model.UserRoleCommunityMember {
		return nil, apperror.Forbidden("Community membership required for this action")
	}
	if image == nil {
		return nil, apperror.BadRequest("Campaign image is required")
	}

	target, ok := validation.ParseAmount(req.TargetAmount)
	if !ok {
		return nil, apperror.Validation("Validation Error", []string{"target_amount " + validation.AmountRule})
	}
	deadline, err := validation.ParseTime(req.Deadline)
	if err != nil || !deadline.After(s.now()) {
		return nil, apperror.Validation("Validation Error", []string{"deadline must be a date in the future"})
	}

	ref, err := s.storage.Save(ctx, image, upload.FolderCampaigns)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.Internal("Failed to store campaign image", err)
	}

	campaign := &model.Campaign{
		UserID:        owner.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Location:      strings.TrimSpace(req.Location),
		Category:      req.Category,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Deadline:      deadline,
		BankAccount:   strings.TrimSpace(req.BankAccount),
		ImageURL:      ref,
		Status:        model.CampaignStatusPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.campaignRepo.Create(txCtx, campaign); err != nil {
			return err
		}
		return s.auditRepo.Record(txCtx, model.ActorUser, owner.ID, model.ActionCreateCampaign,
			campaign.ID.String(), campaign.Title, map[string]interface{}{"target_amount": target.String(), "category": campaign.Category})
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, ref); delErr != nil {
			s.log.Warn("campaign", "orphaned upload", map[string]interface{}{"ref": ref, "error": delErr})
		}
		return nil, apperror.FromDB(err, "")
	}

	s.log.Info("campaign", "campaign submitted", map[string]interface{}{"campaign_id": campaign.ID.String(), "user_id": owner.ID.String()})
	s.events.Publish(websocket.EventCampaignSubmitted, map[string]interface{}{
		"campaign_id": campaign.ID.String(),
		"title":       campaign.Title,
		"user_id":     owner.ID.String(),
	})

	campaign.User = owner
	return s.project(ctx, campaign)
}

func (s *campaignService) List(ctx context.Context, filter CampaignListFilter, p pagination.Params) ([]CampaignResponse, int64, error) {
	campaigns, total, err := s.campaignRepo.List(ctx, repository.CampaignFilter{
		Status:   model.CampaignStatusActive,
		Category: filter.Category,
		Search:   strings.TrimSpace(filter.Search),
	}, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	out, err := s.projectAll(ctx, campaigns)
	return out, total, err
}

func (s *campaignService) Featured(ctx context.Context) ([]CampaignResponse, error) {
	campaigns, err := s.campaignRepo.Featured(ctx, FeaturedLimit)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	return s.projectAll(ctx, campaigns)
}

// GetByID hides pending and rejected campaigns from everyone but the owner and admins.
func (s *campaignService) GetByID(ctx context.Context, id uuid.UUID, viewer Viewer) (*CampaignResponse, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "Campaign not found")
	}
	if !s.visible(campaign, viewer) {
		return nil, apperror.NotFound("Campaign not found")
	}
	return s.project(ctx, campaign)
}

func (s *campaignService) visible(c *model.Campaign, viewer Viewer) bool {
	if viewer.Admin {
		return true
	}
	if viewer.UserID != nil && *viewer.UserID == c.UserID {
		return true
	}
	return c.Status != model.CampaignStatusPending && c.Status != model.CampaignStatusRejected
}

func (s *campaignService) ListByOwner(ctx context.Context, ownerID uuid.UUID, p pagination.Params) ([]CampaignResponse, int64, error) {
	campaigns, total, err := s.campaignRepo.List(ctx, repository.CampaignFilter{UserID: &ownerID}, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	out, err := s.projectAll(ctx, campaigns)
	return out, total, err
}

func (s *campaignService) Update(ctx context.Context, id, ownerID uuid.UUID, req UpdateCampaignRequest) (*CampaignResponse, error) {
	patch := model.CampaignPatch{
		Title:       trimmed(req.Title),
		Description: trimmed(req.Description),
		Location:    trimmed(req.Location),
		Category:    req.Category,
		BankAccount: trimmed(req.BankAccount),
	}
	var invalid []string
	if req.TargetAmount != nil {
		target, ok := validation.ParseAmount(req.TargetAmount.String())
		if !ok {
			invalid = append(invalid, "target_amount "+validation.AmountRule)
		} else {
			patch.TargetAmount = &target
		}
	}
	if req.Deadline != nil {
		deadline, err := validation.ParseTime(*req.Deadline)
		if err != nil || !deadline.After(s.now()) {
			invalid = append(invalid, "deadline must be a date in the future")
		} else {
			patch.Deadline = &deadline
		}
	}
	if len(invalid) > 0 {
		return nil, apperror.Validation("Validation Error", invalid)
	}
	if len(patch.Columns()) == 0 {
		return nil, apperror.BadRequest("No fields to update")
	}

	// The owner filter lives in the UPDATE itself, so a foreign campaign looks absent.
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.campaignRepo.UpdateOwned(txCtx, id, ownerID, patch); err != nil {
			return apperror.FromDB(err, "Campaign not found or access denied")
		}
		fields := make([]string, 0, len(patch.Columns()))
		for col := range patch.Columns() {
			fields = append(fields, col)
		}
		return s.auditRepo.Record(txCtx, model.ActorUser, ownerID, model.ActionUpdateCampaign, id.String(), "",
			map[string]interface{}{"fields": fields})
	})
	if err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "Campaign not found")
	}
	return s.project(ctx, campaign)
}

// Review moves a pending campaign to active or rejected.
func (s *campaignService) Review(ctx context.Context, id, adminID uuid.UUID, req ReviewCampaignRequest) (*CampaignResponse, error) {
	if req.Status != model.CampaignStatusActive && req.Status != model.CampaignStatusRejected {
		return nil, apperror.BadRequest("Status must be either 'active' or 'rejected'")
	}
	notes := strings.TrimSpace(req.AdminNotes)
	if notes == "" {
		return nil, apperror.BadRequest("Admin notes are required")
	}

	var title string
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		campaign, err := s.campaignRepo.FindForUpdate(txCtx, id)
		if err != nil {
			return apperror.FromDB(err, "Campaign not found")
		}
		if campaign.Status != model.CampaignStatusPending {
			return apperror.Conflict("Campaign has already been reviewed")
		}
		title = campaign.Title
		if err := s.campaignRepo.Review(txCtx, id, req.Status, notes, adminID, s.now()); err != nil {
			return apperror.FromDB(err, "Campaign not found")
		}
		return s.auditRepo.Record(txCtx, model.ActorAdmin, adminID, model.ActionReviewCampaign, id.String(), title,
			map[string]interface{}{"status": req.Status, "admin_notes": notes})
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveReview("campaign", req.Status)
	s.log.Info("campaign", "campaign reviewed", map[string]interface{}{
		"campaign_id": id.String(),
		"admin_id":    adminID.String(),
		"status":      req.Status,
	})
	s.events.Publish(websocket.EventCampaignReviewed, map[string]interface{}{
		"campaign_id": id.String(),
		"title":       title,
		"status":      req.Status,
		"admin_id":    adminID.String(),
	})

	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "Campaign not found")
	}
	return s.project(ctx, campaign)
}

func (s *campaignService) AdminList(ctx context.Context, status string, p pagination.Params) ([]CampaignResponse, int64, error) {
	campaigns, total, err := s.campaignRepo.List(ctx, repository.CampaignFilter{Status: status}, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	out, err := s.projectAll(ctx, campaigns)
	return out, total, err
}

func (s *campaignService) project(ctx context.Context, c *model.Campaign) (*CampaignResponse, error) {
	out, err := s.projectAll(ctx, []model.Campaign{*c})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *campaignService) projectAll(ctx context.Context, campaigns []model.Campaign) ([]CampaignResponse, error) {
	ids := make([]uuid.UUID, 0, len(campaigns))
	for _, c := range campaigns {
		ids = append(ids, c.ID)
	}
	counts, err := s.donationRepo.CountsByCampaign(ctx, ids)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}

	now := s.now()
	out := make([]CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		resp := CampaignResponse{
			Campaign:            c,
			DaysRemaining:       c.DaysRemaining(now),
			TotalDonations:      counts[c.ID].TotalDonations,
			SuccessfulDonations: counts[c.ID].SuccessfulDonations,
		}
		if c.User != nil {
			resp.OwnerName = c.User.Name
		}
		out = append(out, resp)
	}
	return out, nil
}
