package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crestlabs/crest/internal/models"
)

// AuditService is the gorm-backed append-only audit log. Append is
// best-effort: a write failure is logged locally and swallowed so the
// originating stage never fails because of it.
type AuditService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAuditService(db *gorm.DB, logger *zap.Logger) *AuditService {
	return &AuditService{db: db, logger: logger}
}

func (a *AuditService) Append(ctx context.Context, event models.AuditEvent) {
	if err := a.db.WithContext(ctx).Create(&event).Error; err != nil {
		a.logger.Error("Failed to append audit event",
			zap.String("event_type", event.EventType),
			zap.String("draft_id", event.DraftID),
			zap.Error(err))
	}
}

// RecentEvents returns the latest audit events, newest first.
func (a *AuditService) RecentEvents(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := a.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// EventsForDraft returns the full audit trail of one draft, oldest first.
func (a *AuditService) EventsForDraft(ctx context.Context, draftID string) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := a.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("timestamp ASC").
		Find(&events).Error
	return events, err
}
