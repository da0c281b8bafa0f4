package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
)

func TestIdeationRun(t *testing.T) {
	ctx := context.Background()

	input := IdeationInput{
		Trends:    map[string]interface{}{"golang": 42},
		Headlines: []string{"Go 1.24 released"},
	}

	t.Run("parses ideas and persists them", func(t *testing.T) {
		store := newMemStore()
		audit := &recordingAudit{}
		gen := &stubGenerator{
			name: "openai",
			content: `{"ideas": [
				{"title": "Go for Pipelines", "concept": "Why Go fits data plumbing", "hook": "Stop writing bash", "format": "blog_post"},
				{"title": "Concurrency in 60s", "concept": "Goroutines explained fast", "hook": "One keyword", "format": "video_script"}
			]}`,
		}
		stage := NewIdeationStage(gen, store, audit, testLogger(), 3)

		ideas := stage.Run(ctx, input)

		require.Len(t, ideas, 2)
		assert.True(t, strings.HasPrefix(ideas[0].IdeaID, "idea-"))
		assert.Equal(t, "Go for Pipelines", ideas[0].Title)
		assert.Equal(t, "Why Go fits data plumbing", ideas[0].Concept)
		assert.Equal(t, models.FormatVideoScript, ideas[1].Format)

		assert.Contains(t, ideas[0].SourceSignals, "trend:golang")
		assert.Contains(t, ideas[0].SourceSignals, "headline:Go 1.24 released")

		stored, err := store.GetIdea(ctx, ideas[0].IdeaID)
		require.NoError(t, err)
		assert.Equal(t, ideas[0].Title, stored.Title)

		assert.True(t, audit.has(models.EventIdeasGenerated))
	})

	t.Run("requests JSON output with the configured count", func(t *testing.T) {
		gen := &stubGenerator{name: "openai", content: `{"ideas": []}`}
		stage := NewIdeationStage(gen, newMemStore(), &recordingAudit{}, testLogger(), 5)

		stage.Run(ctx, input)

		assert.Equal(t, "json_object", gen.lastSpec.Params["response_format"])
		assert.Contains(t, gen.lastSpec.Params["system"], "generate 5 distinct")
		assert.Contains(t, gen.lastSpec.Prompt, "Go 1.24 released")
	})

	t.Run("accepts summary as an alias for concept", func(t *testing.T) {
		gen := &stubGenerator{
			name:    "openai",
			content: `{"ideas": [{"title": "T", "summary": "from summary", "hook": "h", "format": "blog_post"}]}`,
		}
		stage := NewIdeationStage(gen, newMemStore(), &recordingAudit{}, testLogger(), 3)

		ideas := stage.Run(ctx, input)

		require.Len(t, ideas, 1)
		assert.Equal(t, "from summary", ideas[0].Concept)
	})

	t.Run("skips ideas without a title", func(t *testing.T) {
		gen := &stubGenerator{
			name:    "openai",
			content: `{"ideas": [{"concept": "no title"}, {"title": "Kept", "concept": "c", "hook": "h", "format": "blog_post"}]}`,
		}
		stage := NewIdeationStage(gen, newMemStore(), &recordingAudit{}, testLogger(), 3)

		ideas := stage.Run(ctx, input)

		require.Len(t, ideas, 1)
		assert.Equal(t, "Kept", ideas[0].Title)
	})

	t.Run("provider failure yields empty list, not an error", func(t *testing.T) {
		audit := &recordingAudit{}
		gen := &stubGenerator{
			name: "openai",
			err:  provider.NewError(provider.KindUnavailable, "openai", "down"),
		}
		stage := NewIdeationStage(gen, newMemStore(), audit, testLogger(), 3)

		ideas := stage.Run(ctx, input)

		assert.Empty(t, ideas)
		assert.True(t, audit.has(models.EventIdeationFailed))
	})

	t.Run("unparseable output yields empty list", func(t *testing.T) {
		audit := &recordingAudit{}
		gen := &stubGenerator{name: "openai", content: "I had some great ideas today!"}
		stage := NewIdeationStage(gen, newMemStore(), audit, testLogger(), 3)

		ideas := stage.Run(ctx, input)

		assert.Empty(t, ideas)
		assert.True(t, audit.has(models.EventIdeationFailed))
	})

	t.Run("missing generator yields empty list", func(t *testing.T) {
		stage := NewIdeationStage(nil, newMemStore(), &recordingAudit{}, testLogger(), 3)
		assert.Empty(t, stage.Run(ctx, input))
	})
}
