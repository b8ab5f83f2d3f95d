// Package cloudapi wraps the Meta WhatsApp Cloud API for the intake bot.
//
// It provides methods for sending text, reply-button and list messages via
// the Graph API, and normalizes inbound webhook payloads into uniform events.
package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/guhanims/intakebot/internal/models"
)

// Constants for Cloud API client configuration
const (
	// DefaultBaseURL is the Graph API endpoint prefix.
	DefaultBaseURL = "https://graph.facebook.com/v18.0"
	// DefaultRequestTimeout bounds each Graph API call.
	DefaultRequestTimeout = 10 * time.Second
)

// Opts holds configuration options for the Cloud API client.
type Opts struct {
	Token         string
	PhoneNumberID string
	BaseURL       string
	HTTPClient    *http.Client
}

// Option defines a configuration option for the Cloud API client.
type Option func(*Opts)

// WithToken sets the Cloud API bearer token.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithPhoneNumberID sets the sending phone number identifier.
func WithPhoneNumberID(id string) Option {
	return func(o *Opts) { o.PhoneNumberID = id }
}

// WithBaseURL overrides the Graph API endpoint (for tests).
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client wraps the Graph API messages endpoint.
type Client struct {
	token      string
	messageURL string
	httpClient *http.Client
}

// NewClient creates a Cloud API client, applying any provided options and
// falling back to WHATSAPP_TOKEN / PHONE_NUMBER_ID environment variables.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("WHATSAPP_TOKEN")
	}
	if cfg.PhoneNumberID == "" {
		cfg.PhoneNumberID = os.Getenv("PHONE_NUMBER_ID")
	}
	slog.Debug("CloudAPI client config loaded", "token_set", cfg.Token != "", "phone_number_id_set", cfg.PhoneNumberID != "")

	if cfg.Token == "" || cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("missing WhatsApp Cloud API credentials")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	return &Client{
		token:      cfg.Token,
		messageURL: fmt.Sprintf("%s/%s/messages", cfg.BaseURL, cfg.PhoneNumberID),
		httpClient: cfg.HTTPClient,
	}, nil
}

// sendPayload posts one message payload to the Graph API.
func (c *Client) sendPayload(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.messageURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("CloudAPI request failed", "error", err)
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Error("CloudAPI request rejected", "status", resp.StatusCode, "body", string(detail))
		return fmt.Errorf("cloud api returned status %d", resp.StatusCode)
	}
	return nil
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	slog.Debug("CloudAPI sending text message", "to", to, "body_length", len(body))
	return c.sendPayload(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	})
}

// SendReplyButtons sends an interactive reply-button menu.
func (c *Client) SendReplyButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	slog.Debug("CloudAPI sending button menu", "to", to, "buttons", len(buttons))
	actionButtons := make([]map[string]interface{}, 0, len(buttons))
	for i, btn := range buttons {
		id := btn.ID
		if id == "" {
			id = fmt.Sprintf("btn_%d", i)
		}
		actionButtons = append(actionButtons, map[string]interface{}{
			"type":  "reply",
			"reply": map[string]string{"id": id, "title": btn.Title},
		})
	}
	return c.sendPayload(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]interface{}{"buttons": actionButtons},
		},
	})
}

// SendList sends an interactive list menu.
func (c *Client) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	slog.Debug("CloudAPI sending list menu", "to", to, "sections", len(sections))
	return c.sendPayload(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type": "list",
			"body": map[string]string{"text": body},
			"action": map[string]interface{}{
				"button":   buttonLabel,
				"sections": sections,
			},
		},
	})
}
