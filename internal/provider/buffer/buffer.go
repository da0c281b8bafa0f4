package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/provider"
)

const providerName = "buffer"

type Config struct {
	AccessToken string   `yaml:"access_token"`
	ProfileIDs  []string `yaml:"profile_ids"`
	BaseURL     string   `yaml:"base_url"`
}

// Publisher queues posts through the Buffer updates API. One Publisher is
// registered per target platform; the platform label maps to the Buffer
// profiles of the corresponding social account.
type Publisher struct {
	platform string
	config   Config
	client   *http.Client
	logger   *zap.Logger
}

func NewPublisher(platform string, cfg Config, logger *zap.Logger) (*Publisher, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("buffer access token is required")
	}
	if len(cfg.ProfileIDs) == 0 {
		return nil, fmt.Errorf("buffer profile ids are required for platform %s", platform)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.bufferapp.com/1"
	}

	return &Publisher{
		platform: platform,
		config:   cfg,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}, nil
}

func (p *Publisher) Platform() string {
	return p.platform
}

type createResponse struct {
	Success bool `json:"success"`
	Updates []struct {
		ID string `json:"id"`
	} `json:"updates"`
	Message string `json:"message"`
}

func (p *Publisher) Publish(ctx context.Context, req provider.PostRequest) (*provider.PostReceipt, error) {
	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("now", "true")
	form.Set("shorten", "false")
	for _, id := range p.config.ProfileIDs {
		form.Add("profile_ids[]", id)
	}
	if req.MediaURL != "" {
		form.Set("media[link]", req.MediaURL)
		form.Set("media[photo]", req.MediaURL)
	}

	endpoint := p.config.BaseURL + "/updates/create.json"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.config.AccessToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, provider.ErrorFromStatus(providerName, resp.StatusCode, body)
	}

	var response createResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}
	if !response.Success || len(response.Updates) == 0 {
		return nil, provider.NewError(provider.KindRejected, providerName, response.Message)
	}

	p.logger.Debug("Buffer update queued",
		zap.String("platform", p.platform),
		zap.String("update_id", response.Updates[0].ID))

	return &provider.PostReceipt{
		Platform: p.platform,
		PostID:   response.Updates[0].ID,
		PostedAt: time.Now(),
	}, nil
}
