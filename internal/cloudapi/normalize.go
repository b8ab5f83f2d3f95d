package cloudapi

import (
	"log/slog"
	"strconv"

	"github.com/guhanims/intakebot/internal/models"
)

// WebhookEnvelope mirrors the Cloud API webhook notification structure.
// Only the fields the bot consumes are mapped.
type WebhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []Message `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Message is one inbound message inside a webhook notification.
type Message struct {
	From        string       `json:"from"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
	Text        *TextBody    `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

// TextBody carries the body of a text message.
type TextBody struct {
	Body string `json:"body"`
}

// Interactive carries a button or list selection.
type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

// Reply identifies the selected option of an interactive message.
type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FirstMessage extracts the first message of the envelope, if any.
func (e *WebhookEnvelope) FirstMessage() (Message, bool) {
	for _, entry := range e.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) > 0 {
				return change.Value.Messages[0], true
			}
		}
	}
	return Message{}, false
}

// Normalize converts a Cloud API message into the uniform inbound event.
// Messages without a sender produce an event with an empty From, which the
// dispatcher drops silently. Any shape the dialogue cannot process maps to an
// unsupported event so the user gets a notice.
func Normalize(m Message) models.Event {
	ev := models.Event{From: m.From}
	if ts, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil {
		ev.Time = ts
	}

	switch m.Type {
	case "text":
		if m.Text != nil {
			ev.Type = models.EventTypeText
			ev.Body = m.Text.Body
			return ev
		}
	case "interactive":
		if m.Interactive != nil {
			switch m.Interactive.Type {
			case "button_reply":
				if m.Interactive.ButtonReply != nil {
					ev.Type = models.EventTypeButton
					ev.SelectionID = m.Interactive.ButtonReply.ID
					return ev
				}
			case "list_reply":
				if m.Interactive.ListReply != nil {
					ev.Type = models.EventTypeList
					ev.SelectionID = m.Interactive.ListReply.ID
					return ev
				}
			}
		}
	}

	slog.Debug("CloudAPI normalizing unsupported message shape", "type", m.Type, "from", m.From)
	ev.Type = models.EventTypeUnsupported
	return ev
}
