package service

import (
	"context"

	"donation-api/internal/apperror"
	"donation-api/internal/model"
	"donation-api/internal/repository"
	"donation-api/pkg/pagination"
)

type AuditLogFilter struct {
	Action    string
	ActorType string
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, filter AuditLogFilter, p pagination.Params) ([]model.AuditLog, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// GetAuditLogs returns entries newest first.
func (s *auditService) GetAuditLogs(ctx context.Context, filter AuditLogFilter, p pagination.Params) ([]model.AuditLog, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, repository.AuditFilter{Action: filter.Action, ActorType: filter.ActorType}, p)
	if err != nil {
		return nil, 0, apperror.Internal("Internal server error", err)
	}
	return logs, total, nil
}
