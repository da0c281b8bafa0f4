package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crestlabs/crest/internal/models"
)

type StatsService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStatsService(db *gorm.DB, logger *zap.Logger) *StatsService {
	return &StatsService{
		db:     db,
		logger: logger,
	}
}

// UpdatePipelineStats refreshes today's counter row from the live tables.
func (s *StatsService) UpdatePipelineStats() error {
	today := time.Now().Truncate(24 * time.Hour)

	var stats models.PipelineStats
	result := s.db.Where("date = ?", today).First(&stats)

	var totalIdeas, totalDrafts int64
	s.db.Model(&models.Idea{}).Count(&totalIdeas)
	s.db.Model(&models.Draft{}).Count(&totalDrafts)

	counts := map[models.Status]int64{}
	for _, status := range []models.Status{
		models.StatusGenerating,
		models.StatusGenerationFailed,
		models.StatusPendingApproval,
		models.StatusRejected,
		models.StatusPosted,
		models.StatusPostFailed,
	} {
		var n int64
		s.db.Model(&models.Draft{}).Where("status = ?", status).Count(&n)
		counts[status] = n
	}

	if result.Error == gorm.ErrRecordNotFound {
		stats = models.PipelineStats{
			Date:             today,
			TotalIdeas:       int(totalIdeas),
			TotalDrafts:      int(totalDrafts),
			Generating:       int(counts[models.StatusGenerating]),
			GenerationFailed: int(counts[models.StatusGenerationFailed]),
			PendingApproval:  int(counts[models.StatusPendingApproval]),
			Rejected:         int(counts[models.StatusRejected]),
			Posted:           int(counts[models.StatusPosted]),
			PostFailed:       int(counts[models.StatusPostFailed]),
		}
		return s.db.Create(&stats).Error
	} else if result.Error != nil {
		return result.Error
	}

	return s.db.Model(&stats).Updates(map[string]interface{}{
		"total_ideas":       totalIdeas,
		"total_drafts":      totalDrafts,
		"generating":        counts[models.StatusGenerating],
		"generation_failed": counts[models.StatusGenerationFailed],
		"pending_approval":  counts[models.StatusPendingApproval],
		"rejected":          counts[models.StatusRejected],
		"posted":            counts[models.StatusPosted],
		"post_failed":       counts[models.StatusPostFailed],
	}).Error
}

// GetRecentStats returns the daily counter rows for the last N days.
func (s *StatsService) GetRecentStats(days int) ([]models.PipelineStats, error) {
	var stats []models.PipelineStats
	startDate := time.Now().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	err := s.db.Where("date >= ?", startDate).
		Order("date desc").
		Find(&stats).Error
	return stats, err
}

// CleanupOldData drops stale counter rows. Audit events are kept: the audit
// log is append-only and retention is handled outside the service.
func (s *StatsService) CleanupOldData(daysToKeep int) error {
	cutoffDate := time.Now().AddDate(0, 0, -daysToKeep)

	if err := s.db.Where("date < ?", cutoffDate).Delete(&models.PipelineStats{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup pipeline stats: %w", err)
	}

	return nil
}
