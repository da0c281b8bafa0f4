package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/pipeline"
)

// DraftStore is the gorm-backed pipeline.Store. The approval race is settled
// here: TransitionStatus is a conditional UPDATE, so exactly one concurrent
// decision can flip a pending draft.
type DraftStore struct {
	db *gorm.DB
}

func NewDraftStore(db *gorm.DB) *DraftStore {
	return &DraftStore{db: db}
}

func (s *DraftStore) CreateIdea(ctx context.Context, idea *models.Idea) error {
	return s.db.WithContext(ctx).Create(idea).Error
}

func (s *DraftStore) GetIdea(ctx context.Context, ideaID string) (*models.Idea, error) {
	var idea models.Idea
	if err := s.db.WithContext(ctx).Where("idea_id = ?", ideaID).First(&idea).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("idea %s: %w", ideaID, pipeline.ErrNotFound)
		}
		return nil, err
	}
	return &idea, nil
}

func (s *DraftStore) CreateDraft(ctx context.Context, draft *models.Draft) error {
	return s.db.WithContext(ctx).Create(draft).Error
}

func (s *DraftStore) GetDraft(ctx context.Context, draftID string) (*models.Draft, error) {
	var draft models.Draft
	err := s.db.WithContext(ctx).
		Preload("SourceIdea").
		Preload("Assets").
		Preload("PostingResults", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("draft_id = ?", draftID).
		First(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("draft %s: %w", draftID, pipeline.ErrNotFound)
		}
		return nil, err
	}
	return &draft, nil
}

func (s *DraftStore) SaveDraft(ctx context.Context, draft *models.Draft) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(draft).Error
}

func (s *DraftStore) ListDraftsByStatus(ctx context.Context, status models.Status) ([]models.Draft, error) {
	var drafts []models.Draft
	err := s.db.WithContext(ctx).
		Preload("SourceIdea").
		Preload("Assets").
		Preload("PostingResults").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&drafts).Error
	return drafts, err
}

func (s *DraftStore) TransitionStatus(ctx context.Context, draftID string, from, to models.Status) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Draft{}).
		Where("draft_id = ? AND status = ?", draftID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *DraftStore) ReplacePostingResults(ctx context.Context, draft *models.Draft, results []models.PostingResult) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("draft_id = ?", draft.ID).Delete(&models.PostingResult{}).Error; err != nil {
			return err
		}
		for i := range results {
			results[i].ID = 0
			results[i].DraftID = draft.ID
		}
		if len(results) == 0 {
			return nil
		}
		return tx.Create(&results).Error
	})
}
