package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
	"github.com/crestlabs/crest/pkg/util"
)

// Decision is a human approval verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Receipt acknowledges that an approval request went out.
type Receipt struct {
	DraftID string    `json:"draft_id"`
	Channel string    `json:"channel"`
	SentAt  time.Time `json:"sent_at"`
}

// ApprovalGate is the human-in-the-loop checkpoint before publication. The
// outbound notice embeds the draft ID so inbound decisions correlate to a
// specific pending draft; the store's compare-and-set on pending_approval
// makes concurrent decisions first-writer-wins.
type ApprovalGate struct {
	notifier provider.Notifier
	channel  string
	store    Store
	audit    AuditLogger
	logger   *zap.Logger
}

func NewApprovalGate(notifier provider.Notifier, channel string, store Store, audit AuditLogger, logger *zap.Logger) *ApprovalGate {
	return &ApprovalGate{
		notifier: notifier,
		channel:  channel,
		store:    store,
		audit:    audit,
		logger:   logger,
	}
}

// RequestApproval notifies the human channel about a draft awaiting review.
// The draft is not mutated; a delivery failure is retryable by calling again.
func (a *ApprovalGate) RequestApproval(ctx context.Context, draft *models.Draft) (*Receipt, error) {
	if a.notifier == nil {
		return nil, &ConfigError{Field: "approval notifier"}
	}
	if draft.Status != models.StatusPendingApproval {
		return nil, &models.StateError{DraftID: draft.DraftID, From: draft.Status, To: models.StatusApproved}
	}

	notice := provider.ApprovalNotice{
		DraftID: draft.DraftID,
		Title:   draft.Title,
		Summary: approvalSummary(draft),
	}
	if err := a.notifier.Notify(ctx, notice); err != nil {
		return nil, err
	}

	a.logger.Info("Approval requested",
		zap.String("draft_id", draft.DraftID),
		zap.String("channel", a.channel))
	a.audit.Append(ctx, NewEvent(models.EventApprovalRequested, WithDraft(draft)))

	return &Receipt{
		DraftID: draft.DraftID,
		Channel: a.channel,
		SentAt:  time.Now().UTC(),
	}, nil
}

// RecordDecision applies a human verdict to a pending draft. Exactly one
// decision wins; every later conflicting call gets ErrAlreadyDecided and the
// draft is unchanged.
func (a *ApprovalGate) RecordDecision(ctx context.Context, draftID string, decision Decision) (*models.Draft, error) {
	var target models.Status
	switch decision {
	case DecisionApprove:
		target = models.StatusApproved
	case DecisionReject:
		target = models.StatusRejected
	default:
		return nil, &ValidationError{Field: "decision", Reason: fmt.Sprintf("must be %q or %q", DecisionApprove, DecisionReject)}
	}

	draft, err := a.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if draft.Status != models.StatusPendingApproval {
		if draft.Status == models.StatusApproved || draft.Status == models.StatusRejected {
			return nil, ErrAlreadyDecided
		}
		return nil, &models.StateError{DraftID: draftID, From: draft.Status, To: target}
	}

	changed, err := a.store.TransitionStatus(ctx, draftID, models.StatusPendingApproval, target)
	if err != nil {
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}
	if !changed {
		// A concurrent decision won the compare-and-set.
		return nil, ErrAlreadyDecided
	}

	draft, err = a.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Decision recorded",
		zap.String("draft_id", draftID),
		zap.String("decision", string(decision)))
	a.audit.Append(ctx, NewEvent(models.EventDecisionRecorded, WithDraft(draft), WithDetails(map[string]interface{}{
		"decision": string(decision),
	})))

	return draft, nil
}

func approvalSummary(draft *models.Draft) string {
	if draft.SourceIdea.Concept != "" {
		return draft.SourceIdea.Concept
	}
	return util.Truncate(draft.Description, 300)
}
