package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crestlabs/crest/internal/config"
	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/pipeline"
	"github.com/crestlabs/crest/internal/provider"
	"github.com/crestlabs/crest/internal/provider/buffer"
	"github.com/crestlabs/crest/internal/provider/fal"
	"github.com/crestlabs/crest/internal/provider/gemini"
	"github.com/crestlabs/crest/internal/provider/openai"
	"github.com/crestlabs/crest/internal/provider/telegram"
	"github.com/crestlabs/crest/internal/provider/vertex"
)

// PipelineService wires configured providers into the pipeline stages and is
// the facade the HTTP handlers and scheduler call into.
type PipelineService struct {
	logger   *zap.Logger
	config   *config.Config
	registry *provider.Registry
	store    *DraftStore
	audit    *AuditService

	ideation    *pipeline.IdeationStage
	generation  *pipeline.GenerationStage
	quality     *pipeline.QualityGate
	approval    *pipeline.ApprovalGate
	publication *pipeline.PublicationStage
}

func NewPipelineService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *PipelineService {
	s := &PipelineService{
		logger:   logger,
		config:   cfg,
		registry: provider.NewRegistry(logger),
		store:    NewDraftStore(db),
		audit:    NewAuditService(db, logger),
	}

	s.registerProviders()
	s.buildStages()

	return s
}

// registerProviders instantiates every provider whose credentials are
// configured. A provider with missing credentials is skipped with a log line;
// stages depending on it will report configuration errors when invoked.
func (s *PipelineService) registerProviders() {
	cfg := s.config.Providers

	if openaiClient, err := openai.NewClient(cfg.OpenAI, s.logger); err != nil {
		s.logger.Warn("OpenAI provider not registered", zap.Error(err))
	} else if err := s.registry.RegisterGenerator(openaiClient); err != nil {
		s.logger.Error("Failed to register OpenAI provider", zap.Error(err))
	}

	if geminiClient, err := gemini.NewClient(cfg.Gemini, s.logger); err != nil {
		s.logger.Warn("Gemini provider not registered", zap.Error(err))
	} else if err := s.registry.RegisterGenerator(geminiClient); err != nil {
		s.logger.Error("Failed to register Gemini provider", zap.Error(err))
	}

	if falClient, err := fal.NewClient(cfg.Fal, s.logger); err != nil {
		s.logger.Warn("Fal provider not registered", zap.Error(err))
	} else if err := s.registry.RegisterGenerator(falClient); err != nil {
		s.logger.Error("Failed to register Fal provider", zap.Error(err))
	}

	if vertexClient, err := vertex.NewClient(cfg.Vertex, s.logger); err != nil {
		s.logger.Warn("Vertex provider not registered", zap.Error(err))
	} else if err := s.registry.RegisterAsyncGenerator(vertexClient); err != nil {
		s.logger.Error("Failed to register Vertex provider", zap.Error(err))
	}

	if telegramClient, err := telegram.NewClient(cfg.Telegram, s.logger); err != nil {
		s.logger.Warn("Telegram provider not registered", zap.Error(err))
	} else {
		if err := s.registry.RegisterNotifier(telegramClient.Name(), telegramClient); err != nil {
			s.logger.Error("Failed to register Telegram notifier", zap.Error(err))
		}
		if err := s.registry.RegisterPublisher(telegramClient); err != nil {
			s.logger.Error("Failed to register Telegram publisher", zap.Error(err))
		}
	}

	for platform := range cfg.Buffer.Platforms {
		bufferPublisher, err := buffer.NewPublisher(platform, cfg.Buffer.PlatformConfig(platform), s.logger)
		if err != nil {
			s.logger.Warn("Buffer publisher not registered",
				zap.String("platform", platform), zap.Error(err))
			continue
		}
		if err := s.registry.RegisterPublisher(bufferPublisher); err != nil {
			s.logger.Error("Failed to register Buffer publisher",
				zap.String("platform", platform), zap.Error(err))
		}
	}
}

func (s *PipelineService) buildStages() {
	pipelineCfg := s.config.Pipeline

	textGen, err := s.registry.Generator(pipelineCfg.Text.Provider)
	if err != nil {
		s.logger.Warn("Text generation unavailable", zap.Error(err))
	}
	imageGen, err := s.registry.Generator(pipelineCfg.Image.Provider)
	if err != nil {
		s.logger.Warn("Image generation unavailable", zap.Error(err))
	}
	videoGen, err := s.registry.AsyncGenerator(pipelineCfg.Video.Provider)
	if err != nil {
		s.logger.Warn("Video generation unavailable", zap.Error(err))
	}
	evaluator, err := s.registry.Generator(pipelineCfg.Quality.Provider)
	if err != nil {
		s.logger.Warn("Quality gate unavailable", zap.Error(err))
	}
	notifier, err := s.registry.Notifier(s.config.Approval.Channel)
	if err != nil {
		s.logger.Warn("Approval channel unavailable", zap.Error(err))
	}

	var guidelines pipeline.Guidelines
	if pipelineCfg.BrandGuidelinesPath != "" {
		guidelines, err = pipeline.LoadGuidelines(pipelineCfg.BrandGuidelinesPath)
		if err != nil {
			s.logger.Error("Failed to load brand guidelines", zap.Error(err))
		}
	}

	s.ideation = pipeline.NewIdeationStage(textGen, s.store, s.audit, s.logger, pipelineCfg.IdeaCount)
	s.generation = pipeline.NewGenerationStage(textGen, imageGen, videoGen, s.store, s.audit, s.logger)
	s.quality = pipeline.NewQualityGate(evaluator, guidelines, s.store, s.audit, s.logger)
	s.approval = pipeline.NewApprovalGate(notifier, s.config.Approval.Channel, s.store, s.audit, s.logger)
	s.publication = pipeline.NewPublicationStage(s.registry, s.store, s.audit, s.logger)
}

// RunIdeation produces candidate ideas from trend signals. An empty result is
// a normal outcome, never an error.
func (s *PipelineService) RunIdeation(ctx context.Context, input pipeline.IdeationInput) []models.Idea {
	return s.ideation.Run(ctx, input)
}

// CreateAndGenerate wraps an idea into a draft and starts asset generation.
func (s *PipelineService) CreateAndGenerate(ctx context.Context, ideaID string, platforms []string, req pipeline.GenerationRequest) (*models.Draft, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	if len(platforms) == 0 {
		platforms = s.config.Pipeline.DefaultPlatformList()
	}

	draft, err := s.generation.CreateDraft(ctx, idea, platforms)
	if err != nil {
		return nil, err
	}
	if err := s.generation.Run(ctx, draft, req); err != nil {
		return draft, err
	}
	return draft, nil
}

// PollDraft resumes pending asynchronous assets for one draft.
func (s *PipelineService) PollDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := s.generation.CheckPending(ctx, draft); err != nil {
		return draft, err
	}
	return draft, nil
}

// ProcessGenerating advances every draft waiting on asynchronous assets.
// Called periodically by the scheduler.
func (s *PipelineService) ProcessGenerating(ctx context.Context) error {
	drafts, err := s.store.ListDraftsByStatus(ctx, models.StatusGenerating)
	if err != nil {
		return fmt.Errorf("failed to list generating drafts: %w", err)
	}

	for i := range drafts {
		draft := &drafts[i]
		if err := s.generation.CheckPending(ctx, draft); err != nil {
			s.logger.Error("Failed to resume draft generation",
				zap.String("draft_id", draft.DraftID),
				zap.Error(err))
		}
	}
	return nil
}

// RunQualityGate evaluates a draft against the brand guidelines.
func (s *PipelineService) RunQualityGate(ctx context.Context, draftID string) (*models.Draft, *models.QualityEvaluation, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	evaluation, err := s.quality.Run(ctx, draft)
	if err != nil {
		return draft, nil, err
	}
	return draft, evaluation, nil
}

// RequestApproval notifies the human channel about a pending draft.
func (s *PipelineService) RequestApproval(ctx context.Context, draftID string) (*pipeline.Receipt, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return s.approval.RequestApproval(ctx, draft)
}

// RecordDecision applies a human approve/reject verdict.
func (s *PipelineService) RecordDecision(ctx context.Context, draftID string, decision pipeline.Decision) (*models.Draft, error) {
	return s.approval.RecordDecision(ctx, draftID, decision)
}

// Publish fans an approved draft out to its target platforms.
func (s *PipelineService) Publish(ctx context.Context, draftID string) (*models.Draft, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return s.publication.Run(ctx, draft)
}

func (s *PipelineService) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	return s.store.GetDraft(ctx, draftID)
}

func (s *PipelineService) ListDrafts(ctx context.Context, status models.Status) ([]models.Draft, error) {
	return s.store.ListDraftsByStatus(ctx, status)
}

func (s *PipelineService) Audit() *AuditService {
	return s.audit
}

// Platforms lists every platform a draft can target.
func (s *PipelineService) Platforms() []string {
	return s.registry.Platforms()
}
