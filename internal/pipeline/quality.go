package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
)

// Guidelines is the brand document the quality gate evaluates against. It is
// static configuration, loaded once and injected into the gate.
type Guidelines struct {
	Tone    string `yaml:"tone"`
	Safety  string `yaml:"safety"`
	Quality string `yaml:"quality"`
	Goal    string `yaml:"goal"`
}

// LoadGuidelines reads a brand guidelines YAML document.
func LoadGuidelines(path string) (Guidelines, error) {
	var g Guidelines
	data, err := os.ReadFile(path)
	if err != nil {
		return g, fmt.Errorf("failed to read guidelines: %w", err)
	}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("failed to parse guidelines: %w", err)
	}
	return g, nil
}

func (g Guidelines) render() string {
	return fmt.Sprintf("- Tone: %s\n- Safety: %s\n- Quality: %s\n- Goal: %s",
		g.Tone, g.Safety, g.Quality, g.Goal)
}

const qualityPromptTemplate = `You are the final quality control arbiter for a media brand. Your job is to review a piece of AI-generated text before it goes to a human for approval.

You must evaluate the text based on our brand guidelines.
Your response MUST be a valid JSON object with three keys:
1. "decision": Either "pass" or "fail".
2. "score": An integer from 1-10 on how well it aligns with our brand.
3. "reason": A brief, one-sentence explanation for your decision.

**Our Brand Guidelines:**
%s

**Text to Review:**
---
%s
---

Now, provide your JSON evaluation.`

// QualityGate scores a draft's generated text against the brand guidelines.
// The provider's verdict is parsed strictly: anything that is not exactly
// {pass|fail, 1..10, reason} leaves the draft untouched in quality_review.
type QualityGate struct {
	evaluator  provider.Generator
	guidelines Guidelines
	store      Store
	audit      AuditLogger
	logger     *zap.Logger
}

func NewQualityGate(evaluator provider.Generator, guidelines Guidelines, store Store, audit AuditLogger, logger *zap.Logger) *QualityGate {
	return &QualityGate{
		evaluator:  evaluator,
		guidelines: guidelines,
		store:      store,
		audit:      audit,
		logger:     logger,
	}
}

// Run evaluates the draft and advances it to pending_approval or rejected.
// On any provider or parse failure the draft's status does not move; the
// gate is idempotent and can be re-run with the same input.
func (q *QualityGate) Run(ctx context.Context, draft *models.Draft) (*models.QualityEvaluation, error) {
	if q.evaluator == nil {
		return nil, &ConfigError{Field: "quality evaluator"}
	}
	if draft.Status != models.StatusQualityReview {
		return nil, &models.StateError{DraftID: draft.DraftID, From: draft.Status, To: models.StatusPendingApproval}
	}

	text := reviewText(draft)
	if text == "" {
		return nil, &ValidationError{Field: "draft", Reason: "no completed text to review"}
	}

	spec := provider.GenerateSpec{
		Kind:   models.AssetText,
		Prompt: fmt.Sprintf(qualityPromptTemplate, q.guidelines.render(), text),
		Params: map[string]string{"response_format": "json_object"},
	}

	asset, err := q.evaluator.Generate(ctx, spec)
	if err != nil {
		q.auditGateError(ctx, draft, err)
		return nil, err
	}

	evaluation, err := parseEvaluation(q.evaluator.Name(), asset.Content)
	if err != nil {
		q.auditGateError(ctx, draft, err)
		return nil, err
	}

	// Re-running the gate replaces the prior evaluation; history is the
	// audit log's job.
	draft.Quality = *evaluation

	next := models.StatusPendingApproval
	if evaluation.Decision == models.DecisionFail {
		next = models.StatusRejected
	}
	if err := draft.TransitionTo(next); err != nil {
		return nil, err
	}
	if err := q.store.SaveDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	q.logger.Info("Quality gate evaluated",
		zap.String("draft_id", draft.DraftID),
		zap.String("decision", evaluation.Decision),
		zap.Int("score", evaluation.Score))
	q.audit.Append(ctx, NewEvent(models.EventQualityEvaluated, WithDraft(draft), WithDetails(map[string]interface{}{
		"decision": evaluation.Decision,
		"score":    evaluation.Score,
		"reason":   evaluation.Reason,
	})))

	return evaluation, nil
}

func (q *QualityGate) auditGateError(ctx context.Context, draft *models.Draft, err error) {
	q.logger.Error("Quality gate failed, draft unchanged",
		zap.String("draft_id", draft.DraftID),
		zap.Error(err))
	q.audit.Append(ctx, NewEvent(models.EventQualityGateError, WithDraft(draft), WithDetails(map[string]interface{}{
		"error": err.Error(),
	})))
}

// parseEvaluation validates the provider verdict strictly. A malformed
// verdict is an invalid_response provider error, never silently coerced into
// a pass or a fail.
func parseEvaluation(providerName, content string) (*models.QualityEvaluation, error) {
	var parsed struct {
		Decision string  `json:"decision"`
		Score    float64 `json:"score"`
		Reason   string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName, "quality evaluation was not valid JSON")
	}

	if parsed.Decision != models.DecisionPass && parsed.Decision != models.DecisionFail {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName,
			fmt.Sprintf("decision must be %q or %q, got %q", models.DecisionPass, models.DecisionFail, parsed.Decision))
	}

	score := int(parsed.Score)
	if float64(score) != parsed.Score || score < 1 || score > 10 {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName,
			fmt.Sprintf("score must be an integer in [1,10], got %v", parsed.Score))
	}

	return &models.QualityEvaluation{
		Decision: parsed.Decision,
		Score:    score,
		Reason:   parsed.Reason,
	}, nil
}

// reviewText picks the text under review: the draft's completed text assets,
// falling back to the draft description.
func reviewText(draft *models.Draft) string {
	var parts []string
	for _, asset := range draft.CompletedAssets() {
		if asset.Kind == models.AssetText && asset.Content != "" {
			parts = append(parts, asset.Content)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}
	return strings.TrimSpace(draft.Description)
}
