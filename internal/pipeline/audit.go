package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/crestlabs/crest/internal/models"
)

// AuditLogger records pipeline events. Append is fire-and-forget: delivery
// failure must never fail the originating stage, so it returns nothing.
type AuditLogger interface {
	Append(ctx context.Context, event models.AuditEvent)
}

// EventOption customizes an audit event.
type EventOption func(*models.AuditEvent)

// NewEvent builds an audit event stamped with the current time.
func NewEvent(eventType string, options ...EventOption) models.AuditEvent {
	event := models.AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
	}
	for _, option := range options {
		option(&event)
	}
	return event
}

// WithDraft records the draft's identity and current status.
func WithDraft(draft *models.Draft) EventOption {
	return func(e *models.AuditEvent) {
		e.DraftID = draft.DraftID
		e.Status = string(draft.Status)
	}
}

// WithIdea records the originating idea.
func WithIdea(ideaID string) EventOption {
	return func(e *models.AuditEvent) {
		e.IdeaID = ideaID
	}
}

// WithDetails attaches structured context to the event.
func WithDetails(details map[string]interface{}) EventOption {
	return func(e *models.AuditEvent) {
		if detailsBytes, err := json.Marshal(details); err == nil {
			e.Details = string(detailsBytes)
		}
	}
}

// NopAudit discards every event. Useful where auditing is not configured.
type NopAudit struct{}

func (NopAudit) Append(context.Context, models.AuditEvent) {}
