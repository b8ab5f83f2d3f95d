package messaging

import (
	"testing"
	"time"

	"github.com/guhanims/intakebot/internal/models"
	"github.com/guhanims/intakebot/internal/whatsapp"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func incomingText(from, body string) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Sender: types.JID{User: from, Server: whatsapp.JIDSuffix},
			},
			Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		Message: &waE2E.Message{Conversation: proto.String(body)},
	}
}

func TestWhatsAppServiceIncomingTextNormalized(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())

	svc.handleIncomingMessage(incomingText("15551234567", "hello"))

	select {
	case ev := <-svc.Events():
		if ev.From != "15551234567" || ev.Type != models.EventTypeText || ev.Body != "hello" {
			t.Errorf("Unexpected event: %+v", ev)
		}
	default:
		t.Fatal("Expected an event on the channel")
	}
}

func TestWhatsAppServiceIncomingUnsupportedMessage(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())

	msg := incomingText("15551234567", "ignored")
	msg.Message = &waE2E.Message{}
	svc.handleIncomingMessage(msg)

	select {
	case ev := <-svc.Events():
		if ev.Type != models.EventTypeUnsupported {
			t.Errorf("Expected unsupported event, got %q", ev.Type)
		}
	default:
		t.Fatal("Expected an event on the channel")
	}
}

func TestWhatsAppServiceStop(t *testing.T) {
	svc := NewWhatsAppService(whatsapp.NewMockClient())
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// Stop is idempotent.
	if err := svc.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	// A handler still delivering a message after Stop must not panic on the
	// closed channel.
	svc.handleIncomingMessage(incomingText("15551234567", "late"))

	if _, ok := <-svc.Events(); ok {
		t.Error("Expected closed events channel after Stop")
	}
}
