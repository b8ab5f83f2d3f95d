package messaging

import (
	"context"
	"sync"

	"github.com/guhanims/intakebot/internal/models"
)

// SentMessage records one outbound message captured by the MockService.
type SentMessage struct {
	To          string
	Kind        string // "text", "buttons" or "list"
	Body        string
	ButtonLabel string
	Buttons     []models.Button
	Sections    []models.ListSection
}

// MockService implements Service for tests. It records every send and lets
// tests inject inbound events and force send failures.
type MockService struct {
	mu      sync.Mutex
	sent    []SentMessage
	events  chan models.Event
	SendErr error // when set, every send fails with this error
}

// NewMockService creates a MockService with a buffered event channel.
func NewMockService() *MockService {
	return &MockService{events: make(chan models.Event, DefaultChannelBufferSize)}
}

// ValidateAndCanonicalizeRecipient applies the shared canonicalization rules.
func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeRecipient(recipient)
}

// SendText records a text send.
func (m *MockService) SendText(ctx context.Context, to, body string) error {
	return m.record(SentMessage{To: to, Kind: "text", Body: body})
}

// SendButtons records a button-menu send.
func (m *MockService) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	return m.record(SentMessage{To: to, Kind: "buttons", Body: body, Buttons: buttons})
}

// SendList records a list-menu send.
func (m *MockService) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	return m.record(SentMessage{To: to, Kind: "list", Body: body, ButtonLabel: buttonLabel, Sections: sections})
}

// Start is a no-op.
func (m *MockService) Start(ctx context.Context) error { return nil }

// Stop closes the event channel.
func (m *MockService) Stop() error {
	close(m.events)
	return nil
}

// Events returns the injectable inbound event channel.
func (m *MockService) Events() <-chan models.Event { return m.events }

// Inject feeds an inbound event as if a user had sent it.
func (m *MockService) Inject(ev models.Event) {
	m.events <- ev
}

// Sent returns a copy of all recorded sends.
func (m *MockService) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns the recorded sends addressed to a single recipient.
func (m *MockService) SentTo(to string) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, msg := range m.sent {
		if msg.To == to {
			out = append(out, msg)
		}
	}
	return out
}

func (m *MockService) record(msg SentMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}
