package models

// EventType classifies a normalized inbound message.
type EventType string

const (
	// EventTypeText is a free-text message.
	EventTypeText EventType = "text"
	// EventTypeButton is a reply-button selection.
	EventTypeButton EventType = "button"
	// EventTypeList is a list-menu row selection.
	EventTypeList EventType = "list"
	// EventTypeUnsupported is any message shape the bot cannot process
	// (media, location, reactions, ...).
	EventTypeUnsupported EventType = "unsupported"
)

// Event is the uniform inbound event produced by the normalizers. Transports
// with heterogeneous payload shapes (Cloud API webhooks, whatsmeow socket
// events, Twilio form posts) all reduce to this.
type Event struct {
	// From is the canonical sender identifier (phone number digits).
	// Events without a sender are dropped before reaching the dialogue.
	From string    `json:"from"`
	Type EventType `json:"type"`
	// Body carries the text for EventTypeText.
	Body string `json:"body,omitempty"`
	// SelectionID carries the chosen option for EventTypeButton and EventTypeList.
	SelectionID string `json:"selection_id,omitempty"`
	// Time is the delivery timestamp in Unix seconds.
	Time int64 `json:"time,omitempty"`
}
