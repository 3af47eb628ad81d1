// Package notify delivers alert messages to an external webhook channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notifier sends one rendered alert message to the notification channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Config holds webhook transport configuration.
type Config struct {
	URL     string
	Timeout time.Duration
}

// DefaultConfig returns default configuration for the given webhook URL.
func DefaultConfig(url string) Config {
	return Config{
		URL:     url,
		Timeout: 5 * time.Second,
	}
}

// Webhook posts Slack-compatible JSON payloads to a webhook URL. Success is
// any non-error HTTP status; there are no retries here, the dispatcher's
// cooldown semantics handle re-attempts.
type Webhook struct {
	config Config
	client *http.Client
}

// NewWebhook creates a webhook notifier.
func NewWebhook(config Config) *Webhook {
	return &Webhook{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// URL returns the configured target.
func (w *Webhook) URL() string {
	return w.config.URL
}

type payload struct {
	Text string `json:"text"`
}

// Send posts {"text": text} to the webhook.
func (w *Webhook) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("http status %d: %s", resp.StatusCode, string(snippet))
	}

	return nil
}
