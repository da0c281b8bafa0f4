package provider

import (
	"context"
	"time"

	"github.com/crestlabs/crest/internal/models"
)

// GenerateSpec describes one asset to generate. The prompt is provider
// agnostic; provider-specific knobs travel in Params.
type GenerateSpec struct {
	Kind   models.AssetKind  `json:"kind"`
	Prompt string            `json:"prompt"`
	Style  string            `json:"style"`
	Model  string            `json:"model"`
	Params map[string]string `json:"params"`
}

// Generator produces one completed asset synchronously (text, image).
type Generator interface {
	Name() string
	Generate(ctx context.Context, spec GenerateSpec) (*models.Asset, error)
}

// Operation states for asynchronous generation.
type OperationState string

const (
	OperationPending   OperationState = "pending"
	OperationCompleted OperationState = "completed"
	OperationFailed    OperationState = "failed"
)

// Operation is a resumable handle for a long-running generation job. Callers
// hold onto it and invoke Check until the state is terminal; no worker is
// ever blocked waiting on it.
type Operation struct {
	ID             string         `json:"id"`
	StatusCheckURL string         `json:"status_check_url"`
	State          OperationState `json:"state"`
	AssetURL       string         `json:"asset_url"`
	ThumbnailURL   string         `json:"thumbnail_url"`
	Error          string         `json:"error"`
}

// Terminal reports whether the operation has finished, either way.
func (o *Operation) Terminal() bool {
	return o.State == OperationCompleted || o.State == OperationFailed
}

// AsyncGenerator starts a long-running generation job (video) and checks on
// it later. Start never waits for completion.
type AsyncGenerator interface {
	Name() string
	Start(ctx context.Context, spec GenerateSpec) (*Operation, error)
	Check(ctx context.Context, op *Operation) (*Operation, error)
}

// PostRequest is the platform-agnostic payload for a publish call.
type PostRequest struct {
	DraftID  string `json:"draft_id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	MediaURL string `json:"media_url"`
}

// PostReceipt identifies a successfully published post.
type PostReceipt struct {
	Platform string    `json:"platform"`
	PostID   string    `json:"post_id"`
	URL      string    `json:"url,omitempty"`
	PostedAt time.Time `json:"posted_at"`
}

// Publisher posts an approved draft to one target platform.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, req PostRequest) (*PostReceipt, error)
}

// ApprovalNotice is the outbound human-approval notification. The draft ID is
// embedded so inbound decisions can be correlated back to the draft.
type ApprovalNotice struct {
	DraftID string `json:"draft_id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// Notifier delivers approval notices to the human channel.
type Notifier interface {
	Notify(ctx context.Context, notice ApprovalNotice) error
}
