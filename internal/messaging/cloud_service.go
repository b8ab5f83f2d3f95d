package messaging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/guhanims/intakebot/internal/cloudapi"
	"github.com/guhanims/intakebot/internal/models"
)

// CloudSender is the outbound surface of the Cloud API client (for mocking).
type CloudSender interface {
	SendText(ctx context.Context, to, body string) error
	SendReplyButtons(ctx context.Context, to, body string, buttons []models.Button) error
	SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error
}

// CloudService implements Service using the Meta WhatsApp Cloud API client.
// Inbound events arrive through the webhook handler, which calls
// HandleInbound; the service has no connection of its own.
type CloudService struct {
	client  CloudSender
	events  chan models.Event
	mu      sync.RWMutex
	stopped bool
}

// NewCloudService creates a CloudService wrapping the given Cloud API sender.
func NewCloudService(client CloudSender) *CloudService {
	return &CloudService{
		client: client,
		events: make(chan models.Event, DefaultChannelBufferSize),
	}
}

// ValidateAndCanonicalizeRecipient applies the shared canonicalization rules.
func (s *CloudService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeRecipient(recipient)
}

func (s *CloudService) isStopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}

// SendText sends a plain text message.
func (s *CloudService) SendText(ctx context.Context, to, body string) error {
	if s.isStopped() {
		return ErrServiceStopped
	}
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("CloudService SendText validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendText(ctx, canonical, body)
}

// SendButtons sends a reply-button menu.
func (s *CloudService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	if s.isStopped() {
		return ErrServiceStopped
	}
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("CloudService SendButtons validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendReplyButtons(ctx, canonical, body, buttons)
}

// SendList sends a list menu.
func (s *CloudService) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	if s.isStopped() {
		return ErrServiceStopped
	}
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("CloudService SendList validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendList(ctx, canonical, body, buttonLabel, sections)
}

// Start is a no-op: inbound delivery is webhook-driven.
func (s *CloudService) Start(ctx context.Context) error { return nil }

// Stop closes the event channel.
func (s *CloudService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.events)
	slog.Info("CloudService stopped")
	return nil
}

// Events returns the channel of normalized inbound events.
func (s *CloudService) Events() <-chan models.Event { return s.events }

// HandleInbound accepts one normalized event from the webhook handler.
// Events are dropped when the buffer is full rather than blocking the
// webhook response.
func (s *CloudService) HandleInbound(ev models.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}
	select {
	case s.events <- ev:
	default:
		slog.Warn("CloudService event buffer full, dropping event", "from", ev.From)
	}
}

// compile-time interface checks
var (
	_ Service         = (*CloudService)(nil)
	_ InboundReceiver = (*CloudService)(nil)
	_ CloudSender     = (*cloudapi.Client)(nil)
)
