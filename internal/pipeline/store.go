package pipeline

import (
	"context"

	"github.com/crestlabs/crest/internal/models"
)

// Store is the persistence boundary of the pipeline. Stages mutate drafts in
// memory and hand them to the store; the store owns atomicity of the one
// contended operation, the status compare-and-set.
type Store interface {
	CreateIdea(ctx context.Context, idea *models.Idea) error
	GetIdea(ctx context.Context, ideaID string) (*models.Idea, error)

	CreateDraft(ctx context.Context, draft *models.Draft) error
	GetDraft(ctx context.Context, draftID string) (*models.Draft, error)
	SaveDraft(ctx context.Context, draft *models.Draft) error
	ListDraftsByStatus(ctx context.Context, status models.Status) ([]models.Draft, error)

	// TransitionStatus atomically moves a draft from one status to another.
	// It reports false when the draft was not in the expected status, which
	// is how concurrent approval decisions lose.
	TransitionStatus(ctx context.Context, draftID string, from, to models.Status) (bool, error)

	// ReplacePostingResults swaps the draft's posting results for a new
	// ordered set.
	ReplacePostingResults(ctx context.Context, draft *models.Draft, results []models.PostingResult) error
}
