package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/config"
)

type fakePoller struct {
	calls int
	err   error
}

func (f *fakePoller) ProcessGenerating(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakeStats struct {
	updates   int
	cleanups  []int
	updateErr error
}

func (f *fakeStats) UpdatePipelineStats() error {
	f.updates++
	return f.updateErr
}

func (f *fakeStats) CleanupOldData(daysToKeep int) error {
	f.cleanups = append(f.cleanups, daysToKeep)
	return nil
}

func TestSchedulerRefreshStats(t *testing.T) {
	t.Run("updates counters and cleans up with the configured retention", func(t *testing.T) {
		stats := &fakeStats{}
		cfg := &config.SchedulerConfig{StatsRetentionDays: 90}
		s := NewScheduler(cfg, zap.NewNop(), &fakePoller{}, stats)

		s.refreshStats()

		assert.Equal(t, 1, stats.updates)
		assert.Equal(t, []int{90}, stats.cleanups)
	})

	t.Run("cleanup still runs when the counter update fails", func(t *testing.T) {
		stats := &fakeStats{updateErr: errors.New("db down")}
		cfg := &config.SchedulerConfig{StatsRetentionDays: 30}
		s := NewScheduler(cfg, zap.NewNop(), &fakePoller{}, stats)

		s.refreshStats()

		assert.Equal(t, []int{30}, stats.cleanups)
	})
}

func TestSchedulerDisabled(t *testing.T) {
	poller := &fakePoller{}
	stats := &fakeStats{}
	cfg := &config.SchedulerConfig{Enabled: false}
	s := NewScheduler(cfg, zap.NewNop(), poller, stats)

	require.NoError(t, s.Start(context.Background()))

	assert.Zero(t, poller.calls)
	assert.Zero(t, stats.updates)
	assert.Nil(t, s.pollTicker)
}
