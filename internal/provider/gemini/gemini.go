package gemini

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

const providerName = "gemini"

type Config struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Client generates text through the Gemini generateContent API. It serves
// long-form writing and the quality gate's evaluations.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-pro"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
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

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Generate(ctx context.Context, spec provider.GenerateSpec) (*models.Asset, error) {
	model := spec.Model
	if model == "" {
		model = c.config.Model
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: spec.Prompt}}}},
	}
	if spec.Params["response_format"] == "json_object" {
		reqBody.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.BaseURL, model, c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
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

	var response generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName, "response contained no candidates")
	}

	c.logger.Debug("Content generation finished", zap.String("model", model))

	return &models.Asset{
		Kind:     models.AssetText,
		Provider: providerName,
		Model:    model,
		Content:  response.Candidates[0].Content.Parts[0].Text,
		Status:   models.AssetCompleted,
	}, nil
}
