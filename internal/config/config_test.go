package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("zero config gets full defaults", func(t *testing.T) {
		cfg := &Config{}
		ApplyDefaults(cfg)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 5440, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.Mode)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, "UTC", cfg.Database.TimeZone)
		assert.Equal(t, 3, cfg.Pipeline.IdeaCount)
		assert.Equal(t, "openai", cfg.Pipeline.Text.Provider)
		assert.Equal(t, "fal", cfg.Pipeline.Image.Provider)
		assert.Equal(t, "vertex", cfg.Pipeline.Video.Provider)
		assert.Equal(t, "gemini", cfg.Pipeline.Quality.Provider)
		assert.Equal(t, "telegram", cfg.Approval.Channel)
		assert.Equal(t, "1m", cfg.Scheduler.PollInterval)
		assert.Equal(t, "15m", cfg.Scheduler.StatsInterval)
		assert.Equal(t, 90, cfg.Scheduler.StatsRetentionDays)
	})

	t.Run("explicit values survive", func(t *testing.T) {
		cfg := &Config{}
		cfg.Server.Port = 8080
		cfg.Pipeline.IdeaCount = 10
		cfg.Pipeline.Quality.Provider = "openai"
		ApplyDefaults(cfg)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 10, cfg.Pipeline.IdeaCount)
		assert.Equal(t, "openai", cfg.Pipeline.Quality.Provider)
	})
}

func TestBufferPlatformConfig(t *testing.T) {
	b := BufferConfig{
		AccessToken: "tok",
		BaseURL:     "https://buffer.example",
		Platforms: map[string][]string{
			"twitter": {"profile-1", "profile-2"},
		},
	}

	c := b.PlatformConfig("twitter")
	assert.Equal(t, "tok", c.AccessToken)
	assert.Equal(t, []string{"profile-1", "profile-2"}, c.ProfileIDs)
	assert.Equal(t, "https://buffer.example", c.BaseURL)

	assert.Empty(t, b.PlatformConfig("linkedin").ProfileIDs)
}

func TestDefaultPlatformList(t *testing.T) {
	p := PipelineConfig{DefaultPlatforms: "telegram, twitter"}
	assert.Equal(t, []string{"telegram", "twitter"}, p.DefaultPlatformList())

	assert.Empty(t, PipelineConfig{}.DefaultPlatformList())
}
