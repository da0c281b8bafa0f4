package models

import (
	"time"

	"gorm.io/gorm"
)

// AssetKind is the type of a generated content artifact.
type AssetKind string

const (
	AssetText  AssetKind = "text"
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
)

// AssetStatus tracks a single asset's generation progress. Video assets stay
// pending while their provider operation runs.
type AssetStatus string

const (
	AssetPending   AssetStatus = "pending"
	AssetCompleted AssetStatus = "completed"
	AssetFailed    AssetStatus = "failed"
)

// Asset is one generated artifact belonging to a draft.
type Asset struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	DraftID  uint        `gorm:"not null;index" json:"draft_id"`
	Kind     AssetKind   `gorm:"size:20;not null" json:"kind"`
	Provider string      `gorm:"size:100" json:"provider"`
	Model    string      `gorm:"size:100" json:"model"`
	URL      string      `gorm:"size:1000" json:"url"`
	Content  string      `gorm:"type:text" json:"content"`
	Status   AssetStatus `gorm:"size:20;default:'pending'" json:"status"`
	Error    string      `gorm:"type:text" json:"error"`

	// Handle for asynchronous generation (video). Empty for sync assets.
	OperationID    string `gorm:"size:500" json:"operation_id"`
	StatusCheckURL string `gorm:"size:1000" json:"status_check_url"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// Terminal reports whether generation of this asset has finished, either way.
func (a *Asset) Terminal() bool {
	return a.Status == AssetCompleted || a.Status == AssetFailed
}
