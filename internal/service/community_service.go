package service

import (
	"context"
	"errors"
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
	"gorm.io/gorm"
)

// JoinCommunityRequest is bound from the multipart form; ktp_photo travels separately.
type JoinCommunityRequest struct {
	FullName      string `form:"full_name" binding:"required,min=2,max=255"`
	Gender        string `form:"gender" binding:"required,oneof=male female"`
	BirthPlace    string `form:"birth_place" binding:"required,min=2,max=255"`
	BirthDate     string `form:"birth_date" binding:"required,isodate"`
	KTPNumber     string `form:"ktp_number" binding:"required,ktp"`
	Reason        string `form:"reason" binding:"required,min=10,max=1000"`
	DataAgreement string `form:"data_agreement" binding:"required,eq=true"`
}

type ReviewCommunityRequest struct {
	Status     string `json:"status" binding:"required,oneof=approved rejected"`
	AdminNotes string `json:"admin_notes" binding:"omitempty,max=1000"`
}

type CommunityStatus struct {
	CurrentRole   string     `json:"current_role"`
	HasRequest    bool       `json:"has_request"`
	RequestStatus *string    `json:"request_status"`
	RequestDate   *time.Time `json:"request_date"`
}

type CommunityRequestResponse struct {
	model.CommunityRequest
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

type CommunityService interface {
	Join(ctx context.Context, user *model.User, req JoinCommunityRequest, ktpPhoto *multipart.FileHeader) (*model.CommunityRequest, error)
	Status(ctx context.Context, userID uuid.UUID) (*CommunityStatus, error)
	MyRequest(ctx context.Context, userID uuid.UUID) (*model.CommunityRequest, error)
	List(ctx context.Context, status string, p pagination.Params) ([]CommunityRequestResponse, int64, error)
	Review(ctx context.Context, id, adminID uuid.UUID, req ReviewCommunityRequest) (*model.CommunityRequest, error)
}

type communityService struct {
	communityRepo repository.CommunityRepository
	userRepo      repository.UserRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	storage       upload.Storage
	events        websocket.Publisher
	log           logger.ILogger
	now           func() time.Time
}

func NewCommunityService(
	communityRepo repository.CommunityRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	storage upload.Storage,
	events websocket.Publisher,
	log logger.ILogger,
) CommunityService {
	return &communityService{
		communityRepo: communityRepo,
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		storage:       storage,
		events:        events,
		log:           log,
		now:           time.Now,
	}
}

func (s *communityService) Join(ctx context.Context, user *model.User, req JoinCommunityRequest, ktpPhoto *multipart.FileHeader) (*model.CommunityRequest, error) {
	if req.DataAgreement != "true" {
		return nil, apperror.Validation("Validation Error", []string{"data_agreement must be accepted"})
	}
	if ktpPhoto == nil {
		return nil, apperror.BadRequest("KTP photo is required")
	}
	birth, err := validation.ParseTime(req.BirthDate)
	if err != nil {
		return nil, apperror.Validation("Validation Error", []string{"birth_date must be a valid date (YYYY-MM-DD)"})
	}

	active, err := s.communityRepo.HasActiveRequest(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	if active {
		return nil, apperror.Conflict("You already have a pending or approved community request")
	}
	taken, err := s.communityRepo.KTPExists(ctx, req.KTPNumber)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	if taken {
		return nil, apperror.Conflict("KTP number already registered")
	}

	ref, err := s.storage.Save(ctx, ktpPhoto, upload.FolderKTP)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.Internal("Failed to store KTP photo", err)
	}

	request := &model.CommunityRequest{
		UserID:        user.ID,
		FullName:      strings.TrimSpace(req.FullName),
		Gender:        req.Gender,
		BirthPlace:    strings.TrimSpace(req.BirthPlace),
		BirthDate:     birth,
		KTPNumber:     req.KTPNumber,
		KTPPhoto:      ref,
		Reason:        strings.TrimSpace(req.Reason),
		DataAgreement: true,
		Status:        model.CommunityStatusPending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Re-check under the user's row lock so two submissions from one user cannot both pass.
		if _, err := s.userRepo.GetForUpdate(txCtx, user.ID); err != nil {
			return apperror.FromDB(err, "User not found")
		}
		active, err := s.communityRepo.HasActiveRequest(txCtx, user.ID)
		if err != nil {
			return err
		}
		if active {
			return apperror.Conflict("You already have a pending or approved community request")
		}
		if err := s.communityRepo.Create(txCtx, request); err != nil {
			return err
		}
		return s.auditRepo.Record(txCtx, model.ActorUser, user.ID, model.ActionSubmitCommunityRequest,
			request.ID.String(), request.FullName, nil)
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, ref); delErr != nil {
			s.log.Warn("community", "orphaned upload", map[string]interface{}{"ref": ref, "error": delErr})
		}
		// The unique index still catches a KTP number claimed by a concurrent submission.
		if apperror.IsDuplicateKey(err) {
			return nil, apperror.Conflict("KTP number already registered")
		}
		return nil, apperror.FromDB(err, "")
	}

	s.log.Info("community", "community request submitted", map[string]interface{}{"request_id": request.ID.String(), "user_id": user.ID.String()})
	s.events.Publish(websocket.EventCommunityRequestSubmitted, map[string]interface{}{
		"request_id": request.ID.String(),
		"user_id":    user.ID.String(),
		"full_name":  request.FullName,
	})
	return request, nil
}

func (s *communityService) Status(ctx context.Context, userID uuid.UUID) (*CommunityStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err, "User not found")
	}
	status := &CommunityStatus{CurrentRole: user.Role}

	latest, err := s.communityRepo.LatestByUser(ctx, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return status, nil
	case err != nil:
		return nil, apperror.Internal("Internal server error", err)
	}
	status.HasRequest = true
	status.RequestStatus = &latest.Status
	status.RequestDate = &latest.CreatedAt
	return status, nil
}

func (s *communityService) MyRequest(ctx context.Context, userID uuid.UUID) (*model.CommunityRequest, error) {
	latest, err := s.communityRepo.LatestByUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err, "No community request found")
	}
	return latest, nil
}

func (s *communityService) List(ctx context.Context, status string, p pagination.Params) ([]CommunityRequestResponse, int64, error) {
	requests, total, err := s.communityRepo.List(ctx, status, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	out := make([]CommunityRequestResponse, 0, len(requests))
	for _, r := range requests {
		resp := CommunityRequestResponse{CommunityRequest: r}
		if r.User != nil {
			resp.UserName = r.User.Name
			resp.UserEmail = r.User.Email
		}
		out = append(out, resp)
	}
	return out, total, nil
}

// Review decides a pending request. Approval promotes the requester in the same transaction,
// so the request is never approved without the role change.
func (s *communityService) Review(ctx context.Context, id, adminID uuid.UUID, req ReviewCommunityRequest) (*model.CommunityRequest, error) {
	if req.Status != model.CommunityStatusApproved && req.Status != model.CommunityStatusRejected {
		return nil, apperror.BadRequest("Status must be either 'approved' or 'rejected'")
	}

	var request *model.CommunityRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.communityRepo.FindPendingForUpdate(txCtx, id)
		if err != nil {
			return apperror.FromDB(err, "Request not found or has already been processed")
		}

		now := s.now()
		request.Status = req.Status
		if notes := strings.TrimSpace(req.AdminNotes); notes != "" {
			request.AdminNotes = &notes
		}
		request.ReviewedBy = &adminID
		request.ReviewedAt = &now
		if err := s.communityRepo.Update(txCtx, request); err != nil {
			return apperror.FromDB(err, "")
		}

		if req.Status == model.CommunityStatusApproved {
			if err := s.userRepo.UpdateRole(txCtx, request.UserID, model.UserRoleCommunityMember); err != nil {
				return apperror.FromDB(err, "User not found")
			}
		}

		return s.auditRepo.Record(txCtx, model.ActorAdmin, adminID, model.ActionReviewCommunityRequest,
			request.ID.String(), request.FullName, map[string]interface{}{
				"status":  req.Status,
				"user_id": request.UserID.String(),
			})
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveReview("community_request", req.Status)
	s.log.Info("community", "community request reviewed", map[string]interface{}{
		"request_id": id.String(),
		"admin_id":   adminID.String(),
		"status":     req.Status,
	})
	s.events.Publish(websocket.EventCommunityRequestReviewed, map[string]interface{}{
		"request_id": id.String(),
		"user_id":    request.UserID.String(),
		"status":     req.Status,
	})
	return request, nil
}
