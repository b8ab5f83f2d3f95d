package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/guhanims/intakebot/internal/models"
)

// fakeTwilioSender records outbound message bodies.
type fakeTwilioSender struct {
	sent []string
}

func (f *fakeTwilioSender) SendMessage(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, body)
	return nil
}

func drainOne(t *testing.T, svc *TwilioService) models.Event {
	t.Helper()
	select {
	case ev := <-svc.Events():
		return ev
	default:
		t.Fatal("Expected an event on the channel")
		return models.Event{}
	}
}

func TestTwilioButtonsRenderedAsNumberedText(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)

	buttons := []models.Button{
		{ID: "products", Title: "Product Catalog"},
		{ID: "support", Title: "Technical Support"},
	}
	if err := svc.SendButtons(context.Background(), "15551234567", "How can I assist you today?", buttons); err != nil {
		t.Fatalf("SendButtons failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("Expected one outbound message, got %d", len(sender.sent))
	}
	body := sender.sent[0]
	for _, want := range []string{"How can I assist you today?", "1. Product Catalog", "2. Technical Support", "Reply with a number"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected rendered menu to contain %q, got:\n%s", want, body)
		}
	}
}

func TestTwilioNumericReplyMapsToButtonSelection(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)

	buttons := []models.Button{
		{ID: "products", Title: "Product Catalog"},
		{ID: "support", Title: "Technical Support"},
	}
	if err := svc.SendButtons(context.Background(), "15551234567", "menu", buttons); err != nil {
		t.Fatal(err)
	}

	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: " 2 "})

	ev := drainOne(t, svc)
	if ev.Type != models.EventTypeButton {
		t.Errorf("Expected button event, got %q", ev.Type)
	}
	if ev.SelectionID != "support" {
		t.Errorf("Expected selection 'support', got %q", ev.SelectionID)
	}
}

func TestTwilioNumericReplyFromRawWebhookSender(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)

	buttons := []models.Button{
		{ID: "products", Title: "Product Catalog"},
		{ID: "support", Title: "Technical Support"},
	}
	if err := svc.SendButtons(context.Background(), "15551234567", "menu", buttons); err != nil {
		t.Fatal(err)
	}

	// The webhook delivers the sender as it appears on the wire, with the
	// leading "+" (and sometimes formatting) intact.
	svc.HandleInbound(models.Event{From: "+15551234567", Type: models.EventTypeText, Body: "2"})

	ev := drainOne(t, svc)
	if ev.Type != models.EventTypeButton || ev.SelectionID != "support" {
		t.Errorf("Expected button selection 'support', got type %q selection %q", ev.Type, ev.SelectionID)
	}
	if ev.From != "15551234567" {
		t.Errorf("Expected canonicalized sender, got %q", ev.From)
	}
}

func TestTwilioNumericReplyMapsToListSelection(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)

	sections := []models.ListSection{{
		Title: "Industrial Machinery",
		Rows: []models.ListRow{
			{ID: "machinery_cnc_mill", Title: "CNC Milling Machine"},
			{ID: "machinery_lathe", Title: "Precision Lathe"},
		},
	}}
	if err := svc.SendList(context.Background(), "15551234567", "Select a specific product:", "View products", sections); err != nil {
		t.Fatal(err)
	}

	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: "1"})

	ev := drainOne(t, svc)
	if ev.Type != models.EventTypeList {
		t.Errorf("Expected list event, got %q", ev.Type)
	}
	if ev.SelectionID != "machinery_cnc_mill" {
		t.Errorf("Expected first row selection, got %q", ev.SelectionID)
	}
}

func TestTwilioNonNumericReplyStaysText(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)

	buttons := []models.Button{{ID: "products", Title: "Product Catalog"}}
	if err := svc.SendButtons(context.Background(), "15551234567", "menu", buttons); err != nil {
		t.Fatal(err)
	}

	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: "Jane"})

	ev := drainOne(t, svc)
	if ev.Type != models.EventTypeText || ev.Body != "Jane" {
		t.Errorf("Expected text event to pass through, got %+v", ev)
	}
}

func TestTwilioOutOfRangeNumberStaysText(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)

	buttons := []models.Button{{ID: "products", Title: "Product Catalog"}}
	if err := svc.SendButtons(context.Background(), "15551234567", "menu", buttons); err != nil {
		t.Fatal(err)
	}

	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: "5"})

	ev := drainOne(t, svc)
	if ev.Type != models.EventTypeText {
		t.Errorf("Expected out-of-range number to stay text, got %q", ev.Type)
	}
}

func TestTwilioMenuConsumedByMapping(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)

	buttons := []models.Button{{ID: "products", Title: "Product Catalog"}}
	if err := svc.SendButtons(context.Background(), "15551234567", "menu", buttons); err != nil {
		t.Fatal(err)
	}

	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: "1"})
	drainOne(t, svc)

	// Same number again: the menu is spent, so it is plain text now.
	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: "1"})
	ev := drainOne(t, svc)
	if ev.Type != models.EventTypeText {
		t.Errorf("Expected second numeric reply to stay text, got %q", ev.Type)
	}
}

func TestTwilioPlainTextClearsMenu(t *testing.T) {
	sender := &fakeTwilioSender{}
	svc := NewTwilioService(sender)
	ctx := context.Background()

	buttons := []models.Button{{ID: "products", Title: "Product Catalog"}}
	if err := svc.SendButtons(ctx, "15551234567", "menu", buttons); err != nil {
		t.Fatal(err)
	}
	if err := svc.SendText(ctx, "15551234567", "Please enter your name:"); err != nil {
		t.Fatal(err)
	}

	// "1" after a plain-text prompt is the user's answer, not a menu choice.
	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: "1"})
	ev := drainOne(t, svc)
	if ev.Type != models.EventTypeText || ev.Body != "1" {
		t.Errorf("Expected literal text after menu cleared, got %+v", ev)
	}
}
