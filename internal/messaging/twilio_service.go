package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/guhanims/intakebot/internal/models"
	"github.com/guhanims/intakebot/internal/twiliowhatsapp"
)

// lastMenu remembers the most recent interactive menu sent to a recipient so
// that a plain numeric reply can be mapped back to the selection it names.
// Twilio's WhatsApp API has no native button or list support, so menus are
// rendered as numbered text.
type lastMenu struct {
	kind models.EventType // ButtonEvent or ListEvent
	ids  []string         // selection IDs in display order
}

// TwilioService implements Service over the Twilio WhatsApp API.
// Inbound messages arrive through the Twilio webhook, which calls
// HandleInbound with a text event; numeric replies following a menu are
// promoted to the corresponding button or list event.
type TwilioService struct {
	client  twiliowhatsapp.Sender
	events  chan models.Event
	mu      sync.Mutex
	menus   map[string]lastMenu
	stopped bool
}

// NewTwilioService creates a new TwilioService wrapping the given sender.
func NewTwilioService(client twiliowhatsapp.Sender) *TwilioService {
	return &TwilioService{
		client: client,
		events: make(chan models.Event, DefaultChannelBufferSize),
		menus:  make(map[string]lastMenu),
	}
}

// ValidateAndCanonicalizeRecipient applies the shared canonicalization rules.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeRecipient(recipient)
}

// SendText sends a plain text message and clears any pending menu for the
// recipient, since a numeric reply after plain text has no menu meaning.
func (s *TwilioService) SendText(ctx context.Context, to, body string) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendText validation error", "error", err, "to", to)
		return err
	}
	if err := s.client.SendMessage(ctx, canonical, body); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.menus, canonical)
	s.mu.Unlock()
	return nil
}

// SendButtons renders a button menu as numbered text options.
func (s *TwilioService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendButtons validation error", "error", err, "to", to)
		return err
	}

	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("\n")
	ids := make([]string, 0, len(buttons))
	for i, b := range buttons {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, b.Title)
		ids = append(ids, b.ID)
	}
	sb.WriteString("\n\nReply with a number to choose.")

	if err := s.client.SendMessage(ctx, canonical, sb.String()); err != nil {
		return err
	}

	s.mu.Lock()
	s.menus[canonical] = lastMenu{kind: models.EventTypeButton, ids: ids}
	s.mu.Unlock()
	slog.Debug("TwilioService button menu sent as text", "to", canonical, "options", len(ids))
	return nil
}

// SendList renders a list menu as numbered text options across all sections.
func (s *TwilioService) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService SendList validation error", "error", err, "to", to)
		return err
	}

	var sb strings.Builder
	sb.WriteString(body)
	var ids []string
	n := 0
	for _, sec := range sections {
		if sec.Title != "" {
			fmt.Fprintf(&sb, "\n\n*%s*", sec.Title)
		}
		for _, row := range sec.Rows {
			n++
			fmt.Fprintf(&sb, "\n%d. %s", n, row.Title)
			if row.Description != "" {
				fmt.Fprintf(&sb, " - %s", row.Description)
			}
			ids = append(ids, row.ID)
		}
	}
	sb.WriteString("\n\nReply with a number to choose.")

	if err := s.client.SendMessage(ctx, canonical, sb.String()); err != nil {
		return err
	}

	s.mu.Lock()
	s.menus[canonical] = lastMenu{kind: models.EventTypeList, ids: ids}
	s.mu.Unlock()
	slog.Debug("TwilioService list menu sent as text", "to", canonical, "options", len(ids))
	return nil
}

// Start is a no-op: inbound delivery is webhook-driven.
func (s *TwilioService) Start(ctx context.Context) error { return nil }

// Stop closes the event channel.
func (s *TwilioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.events)
	slog.Info("TwilioService stopped")
	return nil
}

// Events returns the channel of normalized inbound events.
func (s *TwilioService) Events() <-chan models.Event { return s.events }

// HandleInbound accepts one inbound text event from the Twilio webhook.
// If the sender was last shown a menu and the body is a valid option number,
// the event is promoted to the matching button or list selection.
func (s *TwilioService) HandleInbound(ev models.Event) {
	// The webhook hands over the raw sender (e.g. "+15551234567"); menus are
	// keyed by canonical digits, so canonicalize before the lookup.
	if canonical, err := canonicalizeRecipient(ev.From); err == nil {
		ev.From = canonical
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if ev.Type == models.EventTypeText {
		if menu, ok := s.menus[ev.From]; ok {
			if idx, err := strconv.Atoi(strings.TrimSpace(ev.Body)); err == nil && idx >= 1 && idx <= len(menu.ids) {
				ev.Type = menu.kind
				ev.SelectionID = menu.ids[idx-1]
				delete(s.menus, ev.From)
				slog.Debug("TwilioService numeric reply mapped to selection", "from", ev.From, "selection", ev.SelectionID)
			}
		}
	}
	s.mu.Unlock()

	select {
	case s.events <- ev:
	default:
		slog.Warn("TwilioService event buffer full, dropping event", "from", ev.From)
	}
}

var (
	_ Service         = (*TwilioService)(nil)
	_ InboundReceiver = (*TwilioService)(nil)
)
