package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
)

func publicationRegistry(t *testing.T, publishers ...provider.Publisher) *provider.Registry {
	t.Helper()
	registry := provider.NewRegistry(testLogger())
	for _, p := range publishers {
		require.NoError(t, registry.RegisterPublisher(p))
	}
	return registry
}

func approvedDraft(t *testing.T, store *memStore, platforms ...string) *models.Draft {
	t.Helper()
	draft := draftInStatus(t, store, models.StatusApproved)
	draft.Platforms = models.StringArray(platforms)
	draft.Assets = []models.Asset{
		{Kind: models.AssetText, Status: models.AssetCompleted, Content: "The body."},
		{Kind: models.AssetImage, Status: models.AssetCompleted, URL: "https://cdn/cover.png"},
	}
	require.NoError(t, store.SaveDraft(context.Background(), draft))
	return draft
}

func TestPublicationRun(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes to every platform in declaration order", func(t *testing.T) {
		store := newMemStore()
		audit := &recordingAudit{}
		telegram := &stubPublisher{platform: "telegram"}
		twitter := &stubPublisher{platform: "twitter"}
		stage := NewPublicationStage(publicationRegistry(t, telegram, twitter), store, audit, testLogger())
		draft := approvedDraft(t, store, "twitter", "telegram")

		updated, err := stage.Run(ctx, draft)
		require.NoError(t, err)

		assert.Equal(t, models.StatusPosted, updated.Status)
		require.Len(t, updated.PostingResults, 2)
		assert.Equal(t, "twitter", updated.PostingResults[0].Platform)
		assert.Equal(t, 0, updated.PostingResults[0].Position)
		assert.Equal(t, "telegram", updated.PostingResults[1].Platform)
		assert.Equal(t, 1, updated.PostingResults[1].Position)
		for _, r := range updated.PostingResults {
			assert.Equal(t, models.PostingSuccess, r.Status)
			assert.NotEmpty(t, r.PostID)
			assert.NotNil(t, r.PostedAt)
		}
		assert.True(t, audit.has(models.EventContentPosted))
	})

	t.Run("one failure never blocks the others", func(t *testing.T) {
		store := newMemStore()
		audit := &recordingAudit{}
		youtube := &stubPublisher{platform: "youtube"}
		tiktok := &stubPublisher{platform: "tiktok", err: provider.NewError(provider.KindUnavailable, "tiktok", "down")}
		stage := NewPublicationStage(publicationRegistry(t, youtube, tiktok), store, audit, testLogger())
		draft := approvedDraft(t, store, "youtube", "tiktok")

		updated, err := stage.Run(ctx, draft)
		require.NoError(t, err)

		assert.Equal(t, models.StatusPostFailed, updated.Status)
		require.Len(t, updated.PostingResults, 2)
		assert.Equal(t, models.PostingSuccess, updated.PostingResults[0].Status)
		assert.Equal(t, models.PostingError, updated.PostingResults[1].Status)
		assert.Contains(t, updated.PostingResults[1].Error, "unavailable")
		assert.True(t, audit.has(models.EventPostFailed))
	})

	t.Run("resubmission retries only the failed platforms", func(t *testing.T) {
		store := newMemStore()
		youtube := &stubPublisher{platform: "youtube"}
		tiktok := &stubPublisher{platform: "tiktok", err: provider.NewError(provider.KindUnavailable, "tiktok", "down")}
		stage := NewPublicationStage(publicationRegistry(t, youtube, tiktok), store, &recordingAudit{}, testLogger())
		draft := approvedDraft(t, store, "youtube", "tiktok")

		updated, err := stage.Run(ctx, draft)
		require.NoError(t, err)
		require.Equal(t, models.StatusPostFailed, updated.Status)
		firstPostID := updated.PostingResults[0].PostID

		tiktok.err = nil
		updated, err = stage.Run(ctx, updated)
		require.NoError(t, err)

		assert.Equal(t, models.StatusPosted, updated.Status)
		assert.Equal(t, 1, youtube.calls, "succeeded platform must not be posted twice")
		assert.Equal(t, 2, tiktok.calls)

		require.Len(t, updated.PostingResults, 2)
		assert.Equal(t, firstPostID, updated.PostingResults[0].PostID, "prior success is carried over")
		assert.Equal(t, models.PostingSuccess, updated.PostingResults[1].Status)
	})

	t.Run("unregistered platform records an error result", func(t *testing.T) {
		store := newMemStore()
		stage := NewPublicationStage(publicationRegistry(t), store, &recordingAudit{}, testLogger())
		draft := approvedDraft(t, store, "myspace")

		updated, err := stage.Run(ctx, draft)
		require.NoError(t, err)

		assert.Equal(t, models.StatusPostFailed, updated.Status)
		require.Len(t, updated.PostingResults, 1)
		assert.Equal(t, models.PostingError, updated.PostingResults[0].Status)
	})

	t.Run("no platforms is a validation error", func(t *testing.T) {
		store := newMemStore()
		stage := NewPublicationStage(publicationRegistry(t), store, &recordingAudit{}, testLogger())
		draft := draftInStatus(t, store, models.StatusApproved)

		_, err := stage.Run(ctx, draft)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("unapproved draft is a state error", func(t *testing.T) {
		store := newMemStore()
		stage := NewPublicationStage(publicationRegistry(t), store, &recordingAudit{}, testLogger())
		draft := approvedDraft(t, store, "telegram")
		draft.Status = models.StatusPendingApproval

		_, err := stage.Run(ctx, draft)
		var stateErr *models.StateError
		require.ErrorAs(t, err, &stateErr)
	})
}

func TestPostRequest(t *testing.T) {
	t.Run("prefers video for the media slot", func(t *testing.T) {
		draft := &models.Draft{
			DraftID: "draft-1",
			Title:   "T",
			Assets: []models.Asset{
				{Kind: models.AssetImage, Status: models.AssetCompleted, URL: "https://cdn/i.png"},
				{Kind: models.AssetVideo, Status: models.AssetCompleted, URL: "https://cdn/v.mp4"},
				{Kind: models.AssetText, Status: models.AssetCompleted, Content: "Body."},
			},
		}

		req := postRequest(draft)
		assert.Equal(t, "https://cdn/v.mp4", req.MediaURL)
		assert.Equal(t, "T\n\nBody.", req.Text)
	})

	t.Run("falls back to the image and ignores unfinished assets", func(t *testing.T) {
		draft := &models.Draft{
			DraftID: "draft-1",
			Title:   "T",
			Assets: []models.Asset{
				{Kind: models.AssetVideo, Status: models.AssetPending},
				{Kind: models.AssetImage, Status: models.AssetCompleted, URL: "https://cdn/i.png"},
			},
		}

		req := postRequest(draft)
		assert.Equal(t, "https://cdn/i.png", req.MediaURL)
		assert.Equal(t, "T", req.Text)
	})
}
