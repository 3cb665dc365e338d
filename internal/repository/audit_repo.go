package repository

import (
	"context"
	"encoding/json"

	"donation-api/internal/model"
	"donation-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditFilter struct {
	Action    string
	ActorType string
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	Record(ctx context.Context, actorType string, actorID uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error
	List(ctx context.Context, filter AuditFilter, p pagination.Params) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Log writes through the ambient transaction, so the entry commits or rolls back with the change it describes.
func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) Record(ctx context.Context, actorType string, actorID uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	entry := &model.AuditLog{
		ActorType:  actorType,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if actorID != uuid.Nil {
		entry.ActorID = &actorID
	}
	return r.Log(ctx, entry)
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter, p pagination.Params) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	query := GetDB(ctx, r.db).Model(&model.AuditLog{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorType != "" {
		query = query.Where("actor_type = ?", filter.ActorType)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Scopes(p.Scope).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
