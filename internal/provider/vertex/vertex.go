package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/provider"
)

const providerName = "vertex"

type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	Model       string `yaml:"model"`
	AccessToken string `yaml:"access_token"`
}

// Client drives video generation on Vertex AI. Jobs are long running: Start
// submits a prediction and returns an operation handle, Check polls it. The
// pipeline never blocks on a video; a scheduler resumes pending operations.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("vertex project id is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("vertex access token is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "imagenvideo-001"
	}

	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}, nil
}

func (c *Client) Name() string {
	return providerName
}

type predictRequest struct {
	Instances  []map[string]string `json:"instances"`
	Parameters map[string]any      `json:"parameters"`
}

type operationResponse struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Response *struct {
		Predictions []struct {
			VideoURI     string `json:"videoUri"`
			ThumbnailURI string `json:"thumbnailUri"`
		} `json:"predictions"`
	} `json:"response"`
}

func (c *Client) Start(ctx context.Context, spec provider.GenerateSpec) (*provider.Operation, error) {
	model := spec.Model
	if model == "" {
		model = c.config.Model
	}

	reqBody := predictRequest{
		Instances: []map[string]string{{"prompt": spec.Prompt}},
		Parameters: map[string]any{
			"aspectRatio": "16:9",
			"fps":         24,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}

	url := fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		c.config.Location, c.config.ProjectID, c.config.Location, model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
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

	var response operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}
	if response.Name == "" {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName, "response did not include an operation name")
	}

	statusURL := fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/%s", c.config.Location, response.Name)

	c.logger.Info("Video generation submitted", zap.String("operation", response.Name))

	return &provider.Operation{
		ID:             response.Name,
		StatusCheckURL: statusURL,
		State:          provider.OperationPending,
	}, nil
}

func (c *Client) Check(ctx context.Context, op *provider.Operation) (*provider.Operation, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", op.StatusCheckURL, nil)
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, provider.WrapError(provider.KindUnavailable, providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, provider.ErrorFromStatus(providerName, resp.StatusCode, body)
	}

	var response operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}

	updated := &provider.Operation{
		ID:             op.ID,
		StatusCheckURL: op.StatusCheckURL,
		State:          provider.OperationPending,
	}

	if !response.Done {
		return updated, nil
	}

	if response.Error != nil {
		updated.State = provider.OperationFailed
		updated.Error = response.Error.Message
		return updated, nil
	}

	if response.Response == nil || len(response.Response.Predictions) == 0 {
		return nil, provider.NewError(provider.KindInvalidResponse, providerName, "finished operation carried no predictions")
	}

	updated.State = provider.OperationCompleted
	updated.AssetURL = response.Response.Predictions[0].VideoURI
	updated.ThumbnailURL = response.Response.Predictions[0].ThumbnailURI
	return updated, nil
}
