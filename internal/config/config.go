package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/crestlabs/crest/internal/provider/buffer"
	"github.com/crestlabs/crest/internal/provider/fal"
	"github.com/crestlabs/crest/internal/provider/gemini"
	"github.com/crestlabs/crest/internal/provider/openai"
	"github.com/crestlabs/crest/internal/provider/telegram"
	"github.com/crestlabs/crest/internal/provider/vertex"
	"github.com/crestlabs/crest/pkg/logger"
	"github.com/crestlabs/crest/pkg/util"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logger    logger.Config   `yaml:"logger"`
	Providers ProvidersConfig `yaml:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Approval  ApprovalConfig  `yaml:"approval"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type ProvidersConfig struct {
	OpenAI   openai.Config   `yaml:"openai"`
	Gemini   gemini.Config   `yaml:"gemini"`
	Fal      fal.Config      `yaml:"fal"`
	Vertex   vertex.Config   `yaml:"vertex"`
	Telegram telegram.Config `yaml:"telegram"`
	Buffer   BufferConfig    `yaml:"buffer"`
}

// BufferConfig maps target platforms to Buffer profile IDs so one Buffer
// account can serve several social platforms.
type BufferConfig struct {
	AccessToken string              `yaml:"access_token"`
	Platforms   map[string][]string `yaml:"platforms"`
	BaseURL     string              `yaml:"base_url"`
}

// PlatformConfig builds a per-platform buffer client config.
func (b BufferConfig) PlatformConfig(platform string) buffer.Config {
	return buffer.Config{
		AccessToken: b.AccessToken,
		ProfileIDs:  b.Platforms[platform],
		BaseURL:     b.BaseURL,
	}
}

// ProviderRef selects a provider (and optionally a model) for one asset kind.
type ProviderRef struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type PipelineConfig struct {
	IdeaCount           int    `yaml:"idea_count"`
	BrandGuidelinesPath string `yaml:"brand_guidelines_path"`
	// Comma-separated so the whole list fits in one ${ENV_VAR} value.
	DefaultPlatforms string      `yaml:"default_platforms"`
	Text             ProviderRef `yaml:"text"`
	Image            ProviderRef `yaml:"image"`
	Video            ProviderRef `yaml:"video"`
	Quality          ProviderRef `yaml:"quality"`
}

// DefaultPlatformList parses the default platform setting into a slice.
func (p PipelineConfig) DefaultPlatformList() []string {
	return util.ParseList(p.DefaultPlatforms)
}

type ApprovalConfig struct {
	TOTPSecret string `yaml:"totp_secret"`
	Channel    string `yaml:"channel"`
}

type SchedulerConfig struct {
	PollInterval       string `yaml:"poll_interval"`
	StatsInterval      string `yaml:"stats_interval"`
	StatsRetentionDays int    `yaml:"stats_retention_days"`
	Enabled            bool   `yaml:"enabled"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// ApplyDefaults fills zero values with the defaults the server assumes.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5440
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Pipeline.IdeaCount == 0 {
		cfg.Pipeline.IdeaCount = 3
	}
	if cfg.Pipeline.Text.Provider == "" {
		cfg.Pipeline.Text.Provider = "openai"
	}
	if cfg.Pipeline.Image.Provider == "" {
		cfg.Pipeline.Image.Provider = "fal"
	}
	if cfg.Pipeline.Video.Provider == "" {
		cfg.Pipeline.Video.Provider = "vertex"
	}
	if cfg.Pipeline.Quality.Provider == "" {
		cfg.Pipeline.Quality.Provider = "gemini"
	}
	if cfg.Approval.Channel == "" {
		cfg.Approval.Channel = "telegram"
	}
	if cfg.Scheduler.PollInterval == "" {
		cfg.Scheduler.PollInterval = "1m"
	}
	if cfg.Scheduler.StatsInterval == "" {
		cfg.Scheduler.StatsInterval = "15m"
	}
	if cfg.Scheduler.StatsRetentionDays == 0 {
		cfg.Scheduler.StatsRetentionDays = 90
	}
}
