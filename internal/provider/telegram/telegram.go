package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/crestlabs/crest/internal/provider"
	"github.com/crestlabs/crest/pkg/util"
)

const providerName = "telegram"

type Config struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	BaseURL  string `yaml:"base_url"`
}

// Client talks to the Telegram Bot API. It serves two roles: the approval
// notification channel and a publishing target for channel posts.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat id are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}

	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}, nil
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) Platform() string {
	return providerName
}

type sendResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Description string `json:"description"`
}

// Notify sends the approval request to the configured chat. The draft ID and
// the exact decision commands are part of the message so a human reply can be
// correlated back to the pending draft.
func (c *Client) Notify(ctx context.Context, notice provider.ApprovalNotice) error {
	message := fmt.Sprintf("*Content Draft Ready for Approval*\n\n"+
		"*Draft:* `%s`\n"+
		"*Title:* %s\n"+
		"*Summary:* %s\n\n"+
		"Reply with `/approve %s` or `/reject %s`.",
		notice.DraftID,
		util.EscapeMarkdown(notice.Title),
		util.EscapeMarkdown(util.Truncate(notice.Summary, 500)),
		notice.DraftID, notice.DraftID)

	_, err := c.send(ctx, "sendMessage", map[string]string{
		"chat_id":    c.config.ChatID,
		"text":       message,
		"parse_mode": "Markdown",
	})
	return err
}

// Publish posts a draft to the configured channel, attaching media when the
// draft carries one.
func (c *Client) Publish(ctx context.Context, req provider.PostRequest) (*provider.PostReceipt, error) {
	method := "sendMessage"
	payload := map[string]string{
		"chat_id":    c.config.ChatID,
		"text":       req.Text,
		"parse_mode": "Markdown",
	}
	if req.MediaURL != "" {
		method = "sendPhoto"
		payload = map[string]string{
			"chat_id":    c.config.ChatID,
			"photo":      req.MediaURL,
			"caption":    util.Truncate(req.Text, 1024),
			"parse_mode": "Markdown",
		}
	}

	response, err := c.send(ctx, method, payload)
	if err != nil {
		return nil, err
	}

	return &provider.PostReceipt{
		Platform: providerName,
		PostID:   strconv.FormatInt(response.Result.MessageID, 10),
		PostedAt: time.Now(),
	}, nil
}

func (c *Client) send(ctx context.Context, method string, payload map[string]string) (*sendResponse, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.config.BaseURL, c.config.BotToken, method)
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

	var response sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, provider.WrapError(provider.KindInvalidResponse, providerName, err)
	}
	if !response.OK {
		return nil, provider.NewError(provider.KindRejected, providerName, response.Description)
	}

	c.logger.Debug("Telegram message sent", zap.String("method", method))
	return &response, nil
}
