package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
	"github.com/crestlabs/crest/pkg/util"
)

// GenerationRequest selects which assets to produce for a draft.
type GenerationRequest struct {
	Kinds []models.AssetKind `json:"kinds"`
	Style string             `json:"style"`
}

// GenerationStage turns one idea into a draft with generated assets. Text and
// image generation complete synchronously; video generation only submits a
// provider operation and leaves the asset pending. The draft stays in
// `generating` until every asset reaches a terminal state.
type GenerationStage struct {
	text   provider.Generator
	image  provider.Generator
	video  provider.AsyncGenerator
	store  Store
	audit  AuditLogger
	logger *zap.Logger
}

func NewGenerationStage(text, image provider.Generator, video provider.AsyncGenerator, store Store, audit AuditLogger, logger *zap.Logger) *GenerationStage {
	return &GenerationStage{
		text:   text,
		image:  image,
		video:  video,
		store:  store,
		audit:  audit,
		logger: logger,
	}
}

// CreateDraft wraps an idea into a fresh draft in the `idea` state.
func (g *GenerationStage) CreateDraft(ctx context.Context, idea *models.Idea, platforms []string) (*models.Draft, error) {
	if idea.Title == "" {
		return nil, &ValidationError{Field: "idea", Reason: "title is required"}
	}

	draft := &models.Draft{
		DraftID:     fmt.Sprintf("draft-%s-%s", util.GenerateSlug(idea.Title), uuid.NewString()[:8]),
		Status:      models.StatusIdea,
		Title:       idea.Title,
		Description: fmt.Sprintf("Concept: %s\n\n---\nHook:\n%s", idea.Concept, idea.Hook),
		IdeaID:      idea.ID,
		SourceIdea:  *idea,
		Platforms:   models.StringArray(platforms),
	}

	if err := g.store.CreateDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	g.logger.Info("Draft created",
		zap.String("draft_id", draft.DraftID),
		zap.String("idea_id", idea.IdeaID))
	g.audit.Append(ctx, NewEvent(models.EventDraftCreated, WithDraft(draft), WithIdea(idea.IdeaID)))

	return draft, nil
}

// Run generates the requested assets for a draft in the `idea` state. A
// failed synchronous generation marks its asset failed rather than aborting;
// resolution then decides the draft's fate. Video assets come back pending
// and are resumed through CheckPending.
func (g *GenerationStage) Run(ctx context.Context, draft *models.Draft, req GenerationRequest) error {
	if len(req.Kinds) == 0 {
		return &ValidationError{Field: "kinds", Reason: "at least one asset kind is required"}
	}
	for _, kind := range req.Kinds {
		if err := g.checkGenerator(kind); err != nil {
			return err
		}
	}

	if err := draft.TransitionTo(models.StatusGenerating); err != nil {
		return err
	}
	if err := g.store.SaveDraft(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	g.audit.Append(ctx, NewEvent(models.EventGenerationStarted, WithDraft(draft)))

	for _, kind := range req.Kinds {
		asset := g.generateAsset(ctx, draft, kind, req.Style)
		asset.DraftID = draft.ID
		draft.Assets = append(draft.Assets, asset)
	}

	return g.Resolve(ctx, draft)
}

func (g *GenerationStage) checkGenerator(kind models.AssetKind) error {
	switch kind {
	case models.AssetText:
		if g.text == nil {
			return &ConfigError{Field: "text generator"}
		}
	case models.AssetImage:
		if g.image == nil {
			return &ConfigError{Field: "image generator"}
		}
	case models.AssetVideo:
		if g.video == nil {
			return &ConfigError{Field: "video generator"}
		}
	default:
		return &ValidationError{Field: "kinds", Reason: fmt.Sprintf("unknown asset kind %q", kind)}
	}
	return nil
}

func (g *GenerationStage) generateAsset(ctx context.Context, draft *models.Draft, kind models.AssetKind, style string) models.Asset {
	idea := draft.SourceIdea

	switch kind {
	case models.AssetText:
		spec := provider.GenerateSpec{Kind: kind, Prompt: textPrompt(idea)}
		asset, err := g.text.Generate(ctx, spec)
		if err != nil {
			return failedAsset(kind, g.text.Name(), err)
		}
		return *asset

	case models.AssetImage:
		spec := provider.GenerateSpec{Kind: kind, Prompt: imagePrompt(idea), Style: style}
		asset, err := g.image.Generate(ctx, spec)
		if err != nil {
			return failedAsset(kind, g.image.Name(), err)
		}
		return *asset

	case models.AssetVideo:
		spec := provider.GenerateSpec{Kind: kind, Prompt: videoPrompt(idea), Style: style}
		op, err := g.video.Start(ctx, spec)
		if err != nil {
			return failedAsset(kind, g.video.Name(), err)
		}
		g.logger.Info("Video generation submitted",
			zap.String("draft_id", draft.DraftID),
			zap.String("operation_id", op.ID))
		return models.Asset{
			Kind:           kind,
			Provider:       g.video.Name(),
			Status:         models.AssetPending,
			OperationID:    op.ID,
			StatusCheckURL: op.StatusCheckURL,
		}
	}

	return failedAsset(kind, "", fmt.Errorf("unknown asset kind %q", kind))
}

// CheckPending resumes every pending asynchronous asset exactly once. A
// provider failure during the check leaves the asset pending for the next
// poll; only a terminal operation state flips the asset.
func (g *GenerationStage) CheckPending(ctx context.Context, draft *models.Draft) error {
	for i := range draft.Assets {
		asset := &draft.Assets[i]
		if asset.Kind != models.AssetVideo || asset.Status != models.AssetPending || asset.OperationID == "" {
			continue
		}
		if g.video == nil {
			return &ConfigError{Field: "video generator"}
		}

		op := &provider.Operation{
			ID:             asset.OperationID,
			StatusCheckURL: asset.StatusCheckURL,
			State:          provider.OperationPending,
		}
		updated, err := g.video.Check(ctx, op)
		if err != nil {
			g.logger.Warn("Operation check failed, will retry",
				zap.String("draft_id", draft.DraftID),
				zap.String("operation_id", asset.OperationID),
				zap.Error(err))
			continue
		}

		switch updated.State {
		case provider.OperationCompleted:
			asset.Status = models.AssetCompleted
			asset.URL = updated.AssetURL
		case provider.OperationFailed:
			asset.Status = models.AssetFailed
			asset.Error = updated.Error
		}
	}

	return g.Resolve(ctx, draft)
}

// Resolve advances a generating draft once its assets settle: any failed
// asset fails the whole draft, all-completed moves it to quality review,
// anything still pending leaves it in generating.
func (g *GenerationStage) Resolve(ctx context.Context, draft *models.Draft) error {
	if draft.Status != models.StatusGenerating {
		return &models.StateError{DraftID: draft.DraftID, From: draft.Status, To: models.StatusQualityReview}
	}

	terminal, failed := draft.AssetsTerminal()

	switch {
	case failed:
		if err := draft.TransitionTo(models.StatusGenerationFailed); err != nil {
			return err
		}
		g.audit.Append(ctx, NewEvent(models.EventGenerationFailed, WithDraft(draft), WithDetails(assetSummary(draft))))
	case terminal:
		if err := draft.TransitionTo(models.StatusQualityReview); err != nil {
			return err
		}
		g.audit.Append(ctx, NewEvent(models.EventAssetsCompleted, WithDraft(draft), WithDetails(assetSummary(draft))))
	}

	if err := g.store.SaveDraft(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func failedAsset(kind models.AssetKind, providerName string, err error) models.Asset {
	return models.Asset{
		Kind:     kind,
		Provider: providerName,
		Status:   models.AssetFailed,
		Error:    err.Error(),
	}
}

func assetSummary(draft *models.Draft) map[string]interface{} {
	summary := make(map[string]interface{}, len(draft.Assets))
	for _, a := range draft.Assets {
		summary[string(a.Kind)] = string(a.Status)
	}
	return summary
}

func textPrompt(idea models.Idea) string {
	if idea.Format == models.FormatVideoScript {
		return fmt.Sprintf("You are a scriptwriter for short-form tech videos. Write a punchy 60-second video script.\n\nTitle: %s\nConcept: %s\nHook: %s\n\nOpen with the hook, keep sentences short, and end with a call to action.",
			idea.Title, idea.Concept, idea.Hook)
	}
	return fmt.Sprintf("You are a skilled content writer and SEO expert specializing in technology and AI. Write an engaging, well-structured blog post of at least 500 words in Markdown.\n\nTitle: %s\nConcept: %s\nHook: %s\n\nUse the hook in the introduction, add ## subheadings, and close with a summary paragraph.",
		idea.Title, idea.Concept, idea.Hook)
}

func imagePrompt(idea models.Idea) string {
	return fmt.Sprintf("Cover illustration for: %s. %s", idea.Title, idea.Concept)
}

func videoPrompt(idea models.Idea) string {
	return fmt.Sprintf("%s. %s", idea.Title, idea.Concept)
}
