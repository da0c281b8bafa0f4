package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
)

// memStore is an in-memory Store for stage tests. TransitionStatus holds the
// lock for the whole compare-and-set, matching the database's atomicity.
type memStore struct {
	mu     sync.Mutex
	ideas  map[string]models.Idea
	drafts map[string]models.Draft
	nextID uint
}

func newMemStore() *memStore {
	return &memStore{
		ideas:  make(map[string]models.Idea),
		drafts: make(map[string]models.Draft),
	}
}

func (s *memStore) CreateIdea(ctx context.Context, idea *models.Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	idea.ID = s.nextID
	s.ideas[idea.IdeaID] = *idea
	return nil
}

func (s *memStore) GetIdea(ctx context.Context, ideaID string) (*models.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idea, ok := s.ideas[ideaID]
	if !ok {
		return nil, fmt.Errorf("idea %s: %w", ideaID, ErrNotFound)
	}
	return &idea, nil
}

func (s *memStore) CreateDraft(ctx context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	draft.ID = s.nextID
	s.drafts[draft.DraftID] = *draft
	return nil
}

func (s *memStore) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", draftID, ErrNotFound)
	}
	return &draft, nil
}

func (s *memStore) SaveDraft(ctx context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.DraftID] = *draft
	return nil
}

func (s *memStore) ListDraftsByStatus(ctx context.Context, status models.Status) ([]models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Draft
	for _, draft := range s.drafts {
		if draft.Status == status {
			out = append(out, draft)
		}
	}
	return out, nil
}

func (s *memStore) TransitionStatus(ctx context.Context, draftID string, from, to models.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[draftID]
	if !ok {
		return false, fmt.Errorf("draft %s: %w", draftID, ErrNotFound)
	}
	if draft.Status != from {
		return false, nil
	}
	draft.Status = to
	s.drafts[draftID] = draft
	return true, nil
}

func (s *memStore) ReplacePostingResults(ctx context.Context, draft *models.Draft, results []models.PostingResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.drafts[draft.DraftID]
	if !ok {
		return fmt.Errorf("draft %s: %w", draft.DraftID, ErrNotFound)
	}
	stored.PostingResults = results
	s.drafts[draft.DraftID] = stored
	return nil
}

// recordingAudit captures appended events for assertions.
type recordingAudit struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (a *recordingAudit) Append(ctx context.Context, event models.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *recordingAudit) eventTypes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	types := make([]string, 0, len(a.events))
	for _, e := range a.events {
		types = append(types, e.EventType)
	}
	return types
}

func (a *recordingAudit) has(eventType string) bool {
	for _, t := range a.eventTypes() {
		if t == eventType {
			return true
		}
	}
	return false
}

// stubGenerator returns a canned asset or error and records the last spec.
type stubGenerator struct {
	name     string
	content  string
	url      string
	err      error
	calls    int
	lastSpec provider.GenerateSpec
}

func (g *stubGenerator) Name() string { return g.name }

func (g *stubGenerator) Generate(ctx context.Context, spec provider.GenerateSpec) (*models.Asset, error) {
	g.calls++
	g.lastSpec = spec
	if g.err != nil {
		return nil, g.err
	}
	return &models.Asset{
		Kind:     spec.Kind,
		Provider: g.name,
		Content:  g.content,
		URL:      g.url,
		Status:   models.AssetCompleted,
	}, nil
}

// stubAsync submits a canned operation and returns a canned check result.
type stubAsync struct {
	name       string
	startOp    *provider.Operation
	startErr   error
	checkOp    *provider.Operation
	checkErr   error
	checkCalls int
}

func (a *stubAsync) Name() string { return a.name }

func (a *stubAsync) Start(ctx context.Context, spec provider.GenerateSpec) (*provider.Operation, error) {
	if a.startErr != nil {
		return nil, a.startErr
	}
	return a.startOp, nil
}

func (a *stubAsync) Check(ctx context.Context, op *provider.Operation) (*provider.Operation, error) {
	a.checkCalls++
	if a.checkErr != nil {
		return nil, a.checkErr
	}
	return a.checkOp, nil
}

// stubPublisher records publish calls for one platform.
type stubPublisher struct {
	platform string
	err      error
	calls    int
}

func (p *stubPublisher) Platform() string { return p.platform }

func (p *stubPublisher) Publish(ctx context.Context, req provider.PostRequest) (*provider.PostReceipt, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &provider.PostReceipt{
		Platform: p.platform,
		PostID:   fmt.Sprintf("%s-post-%d", p.platform, p.calls),
		URL:      fmt.Sprintf("https://%s.example/%d", p.platform, p.calls),
	}, nil
}

// stubNotifier records approval notices.
type stubNotifier struct {
	err     error
	notices []provider.ApprovalNotice
}

func (n *stubNotifier) Notify(ctx context.Context, notice provider.ApprovalNotice) error {
	if n.err != nil {
		return n.err
	}
	n.notices = append(n.notices, notice)
	return nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func draftInStatus(t *testing.T, store *memStore, status models.Status) *models.Draft {
	t.Helper()
	draft := &models.Draft{
		DraftID:     "draft-test",
		Status:      status,
		Title:       "Why Go Wins at Plumbing",
		Description: "Concept: Go keeps infra code boring.\n\n---\nHook:\nYour pipeline should be the least exciting thing you run.",
	}
	if err := store.CreateDraft(context.Background(), draft); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return draft
}
