package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/guhanims/intakebot/internal/models"
	"github.com/guhanims/intakebot/internal/whatsapp"
	"go.mau.fi/whatsmeow/types/events"
)

// WhatsAppService implements Service using the Whatsmeow-based whatsapp client.
// Unlike the webhook-driven backends, inbound messages arrive over the
// client's own connection, so Start registers an event handler.
type WhatsAppService struct {
	client   whatsapp.Sender
	waClient *whatsapp.Client // access to underlying client for event handling
	events   chan models.Event
	done     chan struct{}
	mu       sync.RWMutex
	stopped  bool
}

// NewWhatsAppService creates a new WhatsAppService wrapping the given Sender.
func NewWhatsAppService(client whatsapp.Sender) *WhatsAppService {
	service := &WhatsAppService{
		client: client,
		events: make(chan models.Event, DefaultChannelBufferSize),
		done:   make(chan struct{}),
	}

	// If the client is a full Client (not just an interface), store it for event handling
	if waClient, ok := client.(*whatsapp.Client); ok {
		service.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}

	return service
}

// ValidateAndCanonicalizeRecipient applies the shared canonicalization rules.
func (s *WhatsAppService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeRecipient(recipient)
}

// SendText sends a plain text message.
func (s *WhatsAppService) SendText(ctx context.Context, to, body string) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendText validation error", "error", err, "to", to)
		return err
	}
	slog.Debug("WhatsAppService SendText invoked", "to", canonical, "body_length", len(body))
	return s.client.SendMessage(ctx, canonical, body)
}

// SendButtons sends a quick-reply button menu.
func (s *WhatsAppService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendButtons validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendButtons(ctx, canonical, body, buttons)
}

// SendList sends a single-select list menu.
func (s *WhatsAppService) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("WhatsAppService SendList validation error", "error", err, "to", to)
		return err
	}
	return s.client.SendList(ctx, canonical, body, buttonLabel, sections)
}

// Start registers the inbound event handler on the underlying client.
func (s *WhatsAppService) Start(ctx context.Context) error {
	slog.Debug("WhatsAppService Start invoked")

	if s.waClient != nil {
		go s.handleEvents(ctx)
		slog.Debug("WhatsAppService event handler started")
	} else {
		slog.Debug("WhatsAppService no full client available, skipping event handling (likely mock)")
	}

	return nil
}

// Stop stops background processing. The write lock waits out any whatsmeow
// handler currently inside handleIncomingMessage before the channels close.
func (s *WhatsAppService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	close(s.events)
	slog.Info("WhatsAppService stopped and channels closed")
	return nil
}

// Events returns a channel of normalized inbound events.
func (s *WhatsAppService) Events() <-chan models.Event {
	return s.events
}

// handleEvents registers the whatsmeow event handler and blocks until cancellation.
func (s *WhatsAppService) handleEvents(ctx context.Context) {
	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Error("WhatsAppService handleEvents: no client available")
		return
	}

	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			s.handleIncomingMessage(v)
		default:
			// Ignore receipts, presence, connection events
		}
	})

	slog.Debug("WhatsAppService event handler registered")

	<-ctx.Done()
	slog.Debug("WhatsAppService handleEvents stopping due to context cancellation")
}

// handleIncomingMessage normalizes one inbound whatsmeow message into an Event.
func (s *WhatsAppService) handleIncomingMessage(evt *events.Message) {
	if evt.Message == nil {
		return
	}

	ev := models.Event{
		From: evt.Info.Sender.User,
		Time: evt.Info.Timestamp.Unix(),
	}

	switch {
	case evt.Message.Conversation != nil:
		ev.Type = models.EventTypeText
		ev.Body = *evt.Message.Conversation
	case evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil:
		ev.Type = models.EventTypeText
		ev.Body = *evt.Message.ExtendedTextMessage.Text
	case evt.Message.ButtonsResponseMessage != nil:
		ev.Type = models.EventTypeButton
		ev.SelectionID = evt.Message.GetButtonsResponseMessage().GetSelectedButtonID()
		ev.Body = evt.Message.GetButtonsResponseMessage().GetSelectedDisplayText()
	case evt.Message.ListResponseMessage != nil:
		ev.Type = models.EventTypeList
		ev.SelectionID = evt.Message.GetListResponseMessage().GetSingleSelectReply().GetSelectedRowID()
		ev.Body = evt.Message.GetListResponseMessage().GetTitle()
	default:
		ev.Type = models.EventTypeUnsupported
		slog.Debug("WhatsAppService received unsupported message type", "from", ev.From)
	}

	slog.Debug("WhatsAppService processing incoming message", "from", ev.From, "type", ev.Type)

	// Hold the read lock across the send so Stop cannot close the channel
	// underneath it.
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}

	select {
	case s.events <- ev:
		slog.Info("WhatsAppService incoming message forwarded", "from", ev.From, "type", ev.Type)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("WhatsAppService events channel blocked, dropping message", "from", ev.From, "timeout", DefaultChannelTimeout)
	}
}

var _ Service = (*WhatsAppService)(nil)
