package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
)

const ideationSystemPrompt = `You are a world-class content strategist for a tech-focused brand. Your job is to analyze raw trend data and news headlines to generate %d distinct, high-potential content ideas. For each idea, you MUST provide a catchy 'title', a one-sentence 'concept', an attention-grabbing 'hook', and the suggested 'format' which must be either exactly 'blog_post' or 'video_script'. Your entire output MUST be a valid JSON object with a single key "ideas" which contains a list of these idea objects.`

// IdeationInput carries the trend intelligence for one ideation cycle. Both
// fields default to empty.
type IdeationInput struct {
	Trends    map[string]interface{} `json:"trends"`
	Headlines []string               `json:"headlines"`
}

// IdeationStage turns trend data and news headlines into candidate content
// ideas. Provider failures of any kind produce an empty idea list, never a
// stage failure: "no ideas this cycle" is a normal outcome.
type IdeationStage struct {
	generator provider.Generator
	store     Store
	audit     AuditLogger
	logger    *zap.Logger
	count     int
}

func NewIdeationStage(generator provider.Generator, store Store, audit AuditLogger, logger *zap.Logger, count int) *IdeationStage {
	if count <= 0 {
		count = 3
	}
	return &IdeationStage{
		generator: generator,
		store:     store,
		audit:     audit,
		logger:    logger,
		count:     count,
	}
}

type ideaPayload struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Concept string `json:"concept"`
	Hook    string `json:"hook"`
	Format  string `json:"format"`
}

// Run generates ideas for the given signals. The returned slice may hold
// fewer or more ideas than the configured target; callers must not assume
// exact cardinality.
func (s *IdeationStage) Run(ctx context.Context, input IdeationInput) []models.Idea {
	if s.generator == nil {
		s.logger.Warn("Ideation skipped, no text generator configured")
		return nil
	}

	trendsJSON, _ := json.Marshal(input.Trends)
	headlinesJSON, _ := json.Marshal(input.Headlines)

	spec := provider.GenerateSpec{
		Kind:   models.AssetText,
		Prompt: fmt.Sprintf("Use the following intelligence to generate ideas. Trends data: %s. Recent news headlines: %s", trendsJSON, headlinesJSON),
		Params: map[string]string{
			"system":          fmt.Sprintf(ideationSystemPrompt, s.count),
			"response_format": "json_object",
		},
	}

	asset, err := s.generator.Generate(ctx, spec)
	if err != nil {
		return s.failed(ctx, "provider call failed", err)
	}

	var parsed struct {
		Ideas []ideaPayload `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(asset.Content), &parsed); err != nil {
		return s.failed(ctx, "provider output was not parseable", err)
	}

	signals := sourceSignals(input)

	var ideas []models.Idea
	for _, payload := range parsed.Ideas {
		if payload.Title == "" {
			continue
		}
		concept := payload.Concept
		if concept == "" {
			concept = payload.Summary
		}
		idea := models.Idea{
			IdeaID:        "idea-" + uuid.NewString(),
			Title:         payload.Title,
			Concept:       concept,
			Hook:          payload.Hook,
			Format:        payload.Format,
			SourceSignals: signals,
		}
		if err := s.store.CreateIdea(ctx, &idea); err != nil {
			s.logger.Error("Failed to persist idea", zap.String("title", idea.Title), zap.Error(err))
			continue
		}
		ideas = append(ideas, idea)
	}

	s.logger.Info("Ideation completed", zap.Int("ideas", len(ideas)))
	s.audit.Append(ctx, NewEvent(models.EventIdeasGenerated, WithDetails(map[string]interface{}{
		"count":     len(ideas),
		"headlines": len(input.Headlines),
	})))

	return ideas
}

func (s *IdeationStage) failed(ctx context.Context, reason string, err error) []models.Idea {
	s.logger.Error("Ideation produced no ideas", zap.String("reason", reason), zap.Error(err))
	s.audit.Append(ctx, NewEvent(models.EventIdeationFailed, WithDetails(map[string]interface{}{
		"reason": reason,
		"error":  err.Error(),
	})))
	return nil
}

func sourceSignals(input IdeationInput) models.StringArray {
	var signals models.StringArray
	for keyword := range input.Trends {
		signals = append(signals, "trend:"+keyword)
	}
	for _, headline := range input.Headlines {
		signals = append(signals, "headline:"+headline)
	}
	return signals
}
