package models

import (
	"time"
)

// Pipeline event types recorded in the audit log.
const (
	EventIdeasGenerated    = "IDEAS_GENERATED"
	EventIdeationFailed    = "IDEATION_FAILED"
	EventDraftCreated      = "DRAFT_CREATED"
	EventGenerationStarted = "GENERATION_STARTED"
	EventGenerationFailed  = "GENERATION_FAILED"
	EventAssetsCompleted   = "ASSETS_COMPLETED"
	EventQualityEvaluated  = "QUALITY_EVALUATED"
	EventQualityGateError  = "QUALITY_GATE_ERROR"
	EventApprovalRequested = "APPROVAL_REQUESTED"
	EventDecisionRecorded  = "DECISION_RECORDED"
	EventContentPosted     = "CONTENT_POSTED"
	EventPostFailed        = "POST_FAILED"
)

// AuditEvent is one append-only record of a pipeline event. Events are never
// mutated after creation.
type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	EventType string    `gorm:"size:100;not null;index" json:"event_type"`
	DraftID   string    `gorm:"size:64;index" json:"draft_id"`
	IdeaID    string    `gorm:"size:64;index" json:"idea_id"`
	Status    string    `gorm:"size:50" json:"status"`
	Details   string    `gorm:"type:jsonb" json:"details"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PipelineStats carries per-day counters over the draft lifecycle, refreshed
// periodically for dashboard queries.
type PipelineStats struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Date             time.Time `gorm:"uniqueIndex;not null" json:"date"`
	TotalIdeas       int       `gorm:"default:0" json:"total_ideas"`
	TotalDrafts      int       `gorm:"default:0" json:"total_drafts"`
	Generating       int       `gorm:"default:0" json:"generating"`
	GenerationFailed int       `gorm:"default:0" json:"generation_failed"`
	PendingApproval  int       `gorm:"default:0" json:"pending_approval"`
	Rejected         int       `gorm:"default:0" json:"rejected"`
	Posted           int       `gorm:"default:0" json:"posted"`
	PostFailed       int       `gorm:"default:0" json:"post_failed"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
