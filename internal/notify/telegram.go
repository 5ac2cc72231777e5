// Package notify formats session digests and live wind alerts and delivers
// them through a Telegram bot.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ngmaloney/marine-sessions/internal/httpx"
)

// Sender delivers a rendered message
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// TelegramClient sends messages to one chat through the Bot API
type TelegramClient struct {
	baseURL string
	token   string
	chatID  string
	http    *httpx.Client
}

// NewTelegramClient creates a Telegram sender
func NewTelegramClient(baseURL, token, chatID string, opts ...httpx.Option) *TelegramClient {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
		http:    httpx.NewClient("telegram", 15*time.Second, opts...),
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts text as Markdown to the configured chat
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.http.ReadBody(req)
	if err != nil {
		var apiResp apiResponse
		var upstream *httpx.UpstreamError
		if errors.As(err, &upstream) && len(body) > 0 && json.Unmarshal(body, &apiResp) == nil && apiResp.Description != "" {
			return fmt.Errorf("telegram API error: %s: %w", apiResp.Description, err)
		}
		return fmt.Errorf("telegram API error: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to parse telegram response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram API error: %s", apiResp.Description)
	}
	return nil
}
