package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/models"
	"github.com/crestlabs/crest/internal/provider"
)

const providerName = "fal"

type Config struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Client generates images through the Fal.ai run API.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fal api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "fal-ai/sdxl"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://fal.run"
	}

	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
		logger: logger,
	}, nil
}

func (c *Client) Name() string {
	return providerName
}

type runResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func (c *Client) Generate(ctx context.Context, spec provider.GenerateSpec) (*models.Asset, error) {
	model := spec.Model
	if model == "" {
		model = c.config.Model
	}

	prompt := spec.Prompt
	if spec.Style != "" {
		prompt = fmt.Sprintf("%s, %s", spec.Prompt, spec.Style)
	}

	jsonBody, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
	req.Header.Set("Authorization", "Key "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, provider.ErrorFromStatus(providerName, resp.StatusCode, body)
	}

	var response runResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}
	if len(response.Images) == 0 || response.Images[0].URL == "" {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName, "response contained no image url")
	}

	c.logger.Debug("Image generated", zap.String("model", model))

	return &models.Asset{
		Kind:     models.AssetImage,
		Provider: providerName,
		Model:    model,
		URL:      response.Images[0].URL,
		Status:   models.AssetCompleted,
	}, nil
}
