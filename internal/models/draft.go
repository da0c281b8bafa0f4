package models

import (
	"time"

	"gorm.io/gorm"
)

// Quality gate decisions. Anything else coming back from a provider is
// treated as an invalid response, never coerced to pass or fail.
const (
	DecisionPass = "pass"
	DecisionFail = "fail"
)

// QualityEvaluation is the quality gate's verdict for a draft. Re-running the
// gate replaces the previous evaluation; history lives in the audit log.
type QualityEvaluation struct {
	Decision string `gorm:"size:10" json:"decision"`
	Score    int    `json:"score"`
	Reason   string `gorm:"type:text" json:"reason"`
}

// Present reports whether an evaluation has been attached to the draft.
func (q QualityEvaluation) Present() bool {
	return q.Decision != ""
}

// Posting outcomes per platform.
const (
	PostingSuccess = "success"
	PostingError   = "error"
)

// PostingResult is the outcome of one platform publish attempt. Results are
// kept in the order platforms were declared on the draft so retries can
// target only the failed subset.
type PostingResult struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	DraftID  uint       `gorm:"not null;index" json:"draft_id"`
	Position int        `gorm:"not null" json:"position"`
	Platform string     `gorm:"size:100;not null" json:"platform"`
	Status   string     `gorm:"size:20;not null" json:"status"`
	PostID   string     `gorm:"size:255" json:"post_id"`
	URL      string     `gorm:"size:1000" json:"url"`
	Error    string     `gorm:"type:text" json:"error"`
	PostedAt *time.Time `json:"posted_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Draft is the central aggregate tracking one piece of content from idea
// through publication.
type Draft struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	DraftID     string `gorm:"uniqueIndex;not null;size:64" json:"draft_id"`
	Status      Status `gorm:"size:50;not null;default:'idea';index" json:"status"`
	Title       string `gorm:"not null;size:500" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	IdeaID     uint `gorm:"not null;index" json:"idea_id"`
	SourceIdea Idea `gorm:"foreignKey:IdeaID" json:"source_idea"`

	Assets    []Asset     `gorm:"foreignKey:DraftID" json:"assets"`
	Platforms StringArray `gorm:"type:text[]" json:"platforms"`

	Quality        QualityEvaluation `gorm:"embedded;embeddedPrefix:quality_" json:"quality_evaluation"`
	PostingResults []PostingResult   `gorm:"foreignKey:DraftID" json:"posting_results"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// TransitionTo moves the draft to the next state, enforcing the lifecycle
// graph. On an illegal edge the draft is left untouched and a *StateError is
// returned.
func (d *Draft) TransitionTo(next Status) error {
	if !d.Status.CanTransition(next) {
		return &StateError{DraftID: d.DraftID, From: d.Status, To: next}
	}
	d.Status = next
	return nil
}

// CompletedAssets returns the draft's assets that finished successfully.
func (d *Draft) CompletedAssets() []Asset {
	var out []Asset
	for _, a := range d.Assets {
		if a.Status == AssetCompleted {
			out = append(out, a)
		}
	}
	return out
}

// AssetsTerminal reports whether every asset reached a terminal state, and
// whether any of them failed.
func (d *Draft) AssetsTerminal() (terminal bool, failed bool) {
	terminal = true
	for _, a := range d.Assets {
		if !a.Terminal() {
			terminal = false
		}
		if a.Status == AssetFailed {
			failed = true
		}
	}
	return terminal, failed
}

// ResultFor returns the posting result for a platform, if one was recorded.
func (d *Draft) ResultFor(platform string) (PostingResult, bool) {
	for _, r := range d.PostingResults {
		if r.Platform == platform {
			return r, true
		}
	}
	return PostingResult{}, false
}
