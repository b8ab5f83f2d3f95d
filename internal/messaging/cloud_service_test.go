package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/guhanims/intakebot/internal/models"
)

// fakeCloudSender records outbound Cloud API calls.
type fakeCloudSender struct {
	mu    sync.Mutex
	texts []struct{ To, Body string }
}

func (f *fakeCloudSender) SendText(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, struct{ To, Body string }{to, body})
	return nil
}

func (f *fakeCloudSender) SendReplyButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	return nil
}

func (f *fakeCloudSender) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	return nil
}

func TestCloudServiceSendCanonicalizesRecipient(t *testing.T) {
	sender := &fakeCloudSender{}
	svc := NewCloudService(sender)

	if err := svc.SendText(context.Background(), "+1 (555) 123-4567", "hello"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.texts) != 1 || sender.texts[0].To != "15551234567" {
		t.Errorf("Expected canonicalized recipient, got %+v", sender.texts)
	}
}

func TestCloudServiceSendRejectsInvalidRecipient(t *testing.T) {
	svc := NewCloudService(&fakeCloudSender{})
	if err := svc.SendText(context.Background(), "abc", "hello"); err == nil {
		t.Error("Expected error for recipient without digits")
	}
}

func TestCloudServiceHandleInboundDeliversEvent(t *testing.T) {
	svc := NewCloudService(&fakeCloudSender{})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := models.Event{From: "15551234567", Type: models.EventTypeText, Body: "hi"}
	svc.HandleInbound(ev)

	got := <-svc.Events()
	if got.From != ev.From || got.Body != ev.Body {
		t.Errorf("Expected event %+v, got %+v", ev, got)
	}
}

func TestCloudServiceStop(t *testing.T) {
	svc := NewCloudService(&fakeCloudSender{})
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	// Stop is idempotent.
	if err := svc.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	if err := svc.SendText(context.Background(), "15551234567", "hello"); !errors.Is(err, ErrServiceStopped) {
		t.Errorf("Expected ErrServiceStopped, got %v", err)
	}

	// HandleInbound after Stop must not panic on the closed channel.
	svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText})

	if _, ok := <-svc.Events(); ok {
		t.Error("Expected closed events channel after Stop")
	}
}

func TestCloudServiceDropsWhenBufferFull(t *testing.T) {
	svc := NewCloudService(&fakeCloudSender{})
	for i := 0; i < DefaultChannelBufferSize+10; i++ {
		svc.HandleInbound(models.Event{From: "15551234567", Type: models.EventTypeText, Body: "x"})
	}
	if got := len(svc.events); got != DefaultChannelBufferSize {
		t.Errorf("Expected buffer capped at %d, got %d", DefaultChannelBufferSize, got)
	}
}
