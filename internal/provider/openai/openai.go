package openai

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

const providerName = "openai"

// Config holds OpenAI credentials and defaults.
type Config struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Client generates text through the OpenAI chat completions API. JSON-mode
// responses are requested when the caller asks for structured output.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
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

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, spec provider.GenerateSpec) (*models.Asset, error) {
	model := spec.Model
	if model == "" {
		model = c.config.Model
	}

	reqBody := chatRequest{
		Model:    model,
		Messages: []chatMessage{},
	}
	if system := spec.Params["system"]; system != "" {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "system", Content: system})
	}
	reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "user", Content: spec.Prompt})
	if spec.Params["response_format"] == "json_object" {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}

	url := c.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
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

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}
	if len(response.Choices) == 0 {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName, "response contained no choices")
	}

	c.logger.Debug("Chat completion finished", zap.String("model", model))

	return &models.Asset{
		Kind:     models.AssetText,
		Provider: providerName,
		Model:    model,
		Content:  response.Choices[0].Message.Content,
		Status:   models.AssetCompleted,
	}, nil
}
