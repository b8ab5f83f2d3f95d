// Package messaging provides the pluggable message delivery abstraction and
// the inbound event dispatcher for the intake bot.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/guhanims/intakebot/internal/models"
)

// Constants for messaging service configuration
const (
	// DefaultChannelBufferSize defines the default buffer size for inbound event channels
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the default timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned when a send is attempted on a stopped service.
var ErrServiceStopped = errors.New("messaging service stopped")

// phoneNumberRegex matches everything that is not a digit.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines a pluggable message delivery abstraction.
// It supports the three outbound message shapes the dialogue emits and
// provides a channel of normalized inbound events.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier. Returns the canonicalized recipient and an error if
	// validation fails.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendText sends a plain text message.
	SendText(ctx context.Context, to string, body string) error

	// SendButtons sends a reply-button menu (three options max recommended).
	SendButtons(ctx context.Context, to string, body string, buttons []models.Button) error

	// SendList sends a list menu.
	SendList(ctx context.Context, to string, body string, buttonLabel string, sections []models.ListSection) error

	// Start begins any background processing (e.g., socket event handling).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Events returns a channel of normalized inbound events.
	Events() <-chan models.Event
}

// InboundReceiver accepts inbound events delivered by a transport adapter
// (webhook handlers) rather than a backend-owned connection.
type InboundReceiver interface {
	HandleInbound(ev models.Event)
}

// canonicalizeRecipient strips all non-digit characters and validates the
// remaining phone number. Shared by every service implementation.
func canonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}
	if recipient != canonical {
		slog.Debug("Canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}
