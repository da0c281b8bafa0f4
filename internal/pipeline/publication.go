package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
)

// PublicationStage fans an approved draft out to its target platforms.
// Platforms are independent: one failure never blocks or rolls back another
// platform's success. Resubmitting a post_failed draft re-attempts only the
// platforms without a recorded success.
type PublicationStage struct {
	registry *provider.Registry
	store    Store
	audit    AuditLogger
	logger   *zap.Logger
}

func NewPublicationStage(registry *provider.Registry, store Store, audit AuditLogger, logger *zap.Logger) *PublicationStage {
	return &PublicationStage{
		registry: registry,
		store:    store,
		audit:    audit,
		logger:   logger,
	}
}

// Run publishes the draft to every declared platform, in declaration order.
// Only approved drafts and post_failed retries are accepted; anything else
// is a StateError and the draft is unchanged.
func (p *PublicationStage) Run(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	if len(draft.Platforms) == 0 {
		return nil, &ValidationError{Field: "platforms", Reason: "draft has no target platforms"}
	}

	if err := draft.TransitionTo(models.StatusPosting); err != nil {
		return nil, err
	}
	if err := p.store.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	results := make([]models.PostingResult, 0, len(draft.Platforms))
	allSucceeded := true

	for position, platform := range draft.Platforms {
		// Idempotent resubmission: a platform that already succeeded is
		// never posted again.
		if prior, ok := draft.ResultFor(platform); ok && prior.Status == models.PostingSuccess {
			prior.Position = position
			results = append(results, prior)
			continue
		}

		result := p.publishOne(ctx, draft, platform, position)
		if result.Status != models.PostingSuccess {
			allSucceeded = false
		}
		results = append(results, result)
	}

	next := models.StatusPosted
	eventType := models.EventContentPosted
	if !allSucceeded {
		next = models.StatusPostFailed
		eventType = models.EventPostFailed
	}
	if err := draft.TransitionTo(next); err != nil {
		return nil, err
	}

	if err := p.store.ReplacePostingResults(ctx, draft, results); err != nil {
		return nil, fmt.Errorf("failed to record posting results: %w", err)
	}
	draft.PostingResults = results
	if err := p.store.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	p.logger.Info("Publication finished",
		zap.String("draft_id", draft.DraftID),
		zap.String("status", string(draft.Status)),
		zap.Int("platforms", len(results)))
	p.audit.Append(ctx, NewEvent(eventType, WithDraft(draft), WithDetails(resultSummary(results))))

	return draft, nil
}

func (p *PublicationStage) publishOne(ctx context.Context, draft *models.Draft, platform string, position int) models.PostingResult {
	result := models.PostingResult{
		DraftID:  draft.ID,
		Position: position,
		Platform: platform,
	}

	publisher, err := p.registry.Publisher(platform)
	if err != nil {
		p.logger.Error("Publisher not found", zap.String("platform", platform), zap.Error(err))
		result.Status = models.PostingError
		result.Error = err.Error()
		return result
	}

	receipt, err := publisher.Publish(ctx, postRequest(draft))
	if err != nil {
		p.logger.Error("Publish failed",
			zap.String("draft_id", draft.DraftID),
			zap.String("platform", platform),
			zap.Error(err))
		result.Status = models.PostingError
		result.Error = err.Error()
		return result
	}

	now := receipt.PostedAt
	if now.IsZero() {
		now = time.Now()
	}
	result.Status = models.PostingSuccess
	result.PostID = receipt.PostID
	result.URL = receipt.URL
	result.PostedAt = &now

	p.logger.Info("Published",
		zap.String("draft_id", draft.DraftID),
		zap.String("platform", platform),
		zap.String("post_id", receipt.PostID))
	return result
}

// postRequest flattens the draft into the platform-agnostic publish payload.
// The first completed video wins the media slot, then the first image.
func postRequest(draft *models.Draft) provider.PostRequest {
	req := provider.PostRequest{
		DraftID: draft.DraftID,
		Title:   draft.Title,
		Text:    draft.Title,
	}

	var imageURL string
	for _, asset := range draft.CompletedAssets() {
		switch asset.Kind {
		case models.AssetVideo:
			if req.MediaURL == "" {
				req.MediaURL = asset.URL
			}
		case models.AssetImage:
			if imageURL == "" {
				imageURL = asset.URL
			}
		case models.AssetText:
			if asset.Content != "" && req.Text == draft.Title {
				req.Text = fmt.Sprintf("%s\n\n%s", draft.Title, asset.Content)
			}
		}
	}
	if req.MediaURL == "" {
		req.MediaURL = imageURL
	}

	return req
}

func resultSummary(results []models.PostingResult) map[string]interface{} {
	summary := make(map[string]interface{}, len(results))
	for _, r := range results {
		summary[r.Platform] = r.Status
	}
	return summary
}
