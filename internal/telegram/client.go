// internal/telegram/client.go
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Response is the decoded Bot API reply to a probe call. Classification
// happens on this raw shape so a new provider message only touches the
// literal rules in classify.go, never the plumbing.
type Response struct {
	OK          bool                `json:"ok"`
	Description string              `json:"description"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

type ResponseParameters struct {
	RetryAfter int `json:"retry_after"`
}

// Prober issues a single deliverability probe for one recipient.
type Prober interface {
	Probe(ctx context.Context, token string, chatID int64) (*Response, error)
}

// Client probes recipients through the Bot API. sendChatAction is free,
// silent for the recipient, and fails with the same error shapes as a real
// message send, which is what makes it usable as a deliverability check.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient reads TELEGRAM_API_BASE (useful for tests and local API servers)
// and applies the fixed 10s probe timeout.
func NewClient() *Client {
	base := os.Getenv("TELEGRAM_API_BASE")
	if base == "" {
		base = defaultAPIBase
	}
	return &Client{
		BaseURL:    base,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Probe sends a "typing" chat action to the recipient and returns the raw
// API response. A transport-level failure (timeout, connection refused)
// is returned as an error; the caller decides how to classify it.
func (c *Client) Probe(ctx context.Context, token string, chatID int64) (*Response, error) {
	endpoint := fmt.Sprintf("%s/bot%s/sendChatAction", c.BaseURL, token)

	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("action", "typing")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("invalid provider response: %w", err)
	}
	return &decoded, nil
}

var _ Prober = (*Client)(nil)
