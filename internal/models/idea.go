package models

import (
	"time"

	"gorm.io/gorm"
)

// Content formats an idea can be developed into.
const (
	FormatBlogPost    = "blog_post"
	FormatVideoScript = "video_script"
)

// Idea is a candidate content concept produced by the ideation stage.
// Immutable once created.
type Idea struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	IdeaID        string         `gorm:"uniqueIndex;not null;size:64" json:"idea_id"`
	Title         string         `gorm:"not null;size:500" json:"title"`
	Concept       string         `gorm:"type:text" json:"concept"`
	Hook          string         `gorm:"type:text" json:"hook"`
	Format        string         `gorm:"size:50" json:"format"`
	SourceSignals StringArray    `gorm:"type:text[]" json:"source_signals"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
