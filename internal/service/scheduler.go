package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/config"
)

// GenerationPoller resumes drafts that wait on asynchronous asset generation.
type GenerationPoller interface {
	ProcessGenerating(ctx context.Context) error
}

// StatsRefresher maintains the daily counter rows.
type StatsRefresher interface {
	UpdatePipelineStats() error
	CleanupOldData(daysToKeep int) error
}

// Scheduler drives the background loops: resuming drafts that wait on
// asynchronous asset generation, and refreshing the daily stats counters.
type Scheduler struct {
	config   *config.SchedulerConfig
	logger   *zap.Logger
	pipeline GenerationPoller
	stats    StatsRefresher

	pollTicker  *time.Ticker
	statsTicker *time.Ticker
	stopCh      chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, pipeline GenerationPoller, stats StatsRefresher) *Scheduler {
	return &Scheduler{
		config:   cfg,
		logger:   logger,
		pipeline: pipeline,
		stats:    stats,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	pollInterval, err := time.ParseDuration(s.config.PollInterval)
	if err != nil {
		s.logger.Error("Invalid poll interval", zap.String("interval", s.config.PollInterval), zap.Error(err))
		return err
	}
	statsInterval, err := time.ParseDuration(s.config.StatsInterval)
	if err != nil {
		s.logger.Error("Invalid stats interval", zap.String("interval", s.config.StatsInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler",
		zap.String("poll_interval", s.config.PollInterval),
		zap.String("stats_interval", s.config.StatsInterval))

	s.pollTicker = time.NewTicker(pollInterval)
	s.statsTicker = time.NewTicker(statsInterval)

	// Resume any drafts left mid-generation by a previous run
	go func() {
		s.logger.Info("Running initial generation poll")
		if err := s.pipeline.ProcessGenerating(ctx); err != nil {
			s.logger.Error("Initial generation poll failed", zap.Error(err))
		}
	}()

	go func() {
		for {
			select {
			case <-s.pollTicker.C:
				if err := s.pipeline.ProcessGenerating(ctx); err != nil {
					s.logger.Error("Scheduled generation poll failed", zap.Error(err))
				}
			case <-s.statsTicker.C:
				s.refreshStats()
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

// refreshStats updates today's counters and drops rows past the retention
// window. Each step is attempted independently.
func (s *Scheduler) refreshStats() {
	if err := s.stats.UpdatePipelineStats(); err != nil {
		s.logger.Error("Stats refresh failed", zap.Error(err))
	}
	if err := s.stats.CleanupOldData(s.config.StatsRetentionDays); err != nil {
		s.logger.Error("Failed to cleanup old stats", zap.Error(err))
	}
}

func (s *Scheduler) Stop() {
	if s.pollTicker != nil {
		s.pollTicker.Stop()
	}
	if s.statsTicker != nil {
		s.statsTicker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}
