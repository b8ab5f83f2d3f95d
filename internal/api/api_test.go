package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guhanims/intakebot/internal/messaging"
	"github.com/guhanims/intakebot/internal/models"
	"github.com/guhanims/intakebot/internal/session"
	"github.com/guhanims/intakebot/internal/store"
)

// captureReceiver records inbound events handed off by the webhook handlers.
type captureReceiver struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *captureReceiver) HandleInbound(ev models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *captureReceiver) received() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Event, len(r.events))
	copy(out, r.events)
	return out
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *store.InMemoryStore, *session.Store, *captureReceiver) {
	t.Helper()
	st := store.NewInMemoryStore()
	sessions := session.NewStore()
	receiver := &captureReceiver{}
	srv := NewServer(st, sessions, messaging.NewMockService(), receiver, opts...)
	return srv, st, sessions, receiver
}

func decodeResponse(t *testing.T, body io.Reader) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestVerifyWebhook(t *testing.T) {
	srv, _, _, _ := newTestServer(t, WithVerifyToken("secret-token"))
	handler := srv.Handler()

	cases := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"correct token", "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", http.StatusOK, "12345"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", http.StatusForbidden, ""},
		{"missing mode", "hub.verify_token=secret-token&hub.challenge=12345", http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/webhook?"+tc.query, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantBody != "" && rec.Body.String() != tc.wantBody {
				t.Errorf("Expected challenge %q, got %q", tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestVerifyWebhookRejectsWhenTokenUnconfigured(t *testing.T) {
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "")
	srv, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 when no verify token configured, got %d", rec.Code)
	}
}

func TestReceiveWebhookForwardsEvent(t *testing.T) {
	srv, _, _, receiver := newTestServer(t)
	payload := `{
		"object": "whatsapp_business_account",
		"entry": [{"changes": [{"value": {
			"messages": [{
				"from": "15551234567",
				"id": "wamid.test",
				"timestamp": "1717243200",
				"type": "text",
				"text": {"body": "hello"}
			}]
		}}]}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	events := receiver.received()
	if len(events) != 1 {
		t.Fatalf("Expected 1 forwarded event, got %d", len(events))
	}
	ev := events[0]
	if ev.From != "15551234567" || ev.Type != models.EventTypeText || ev.Body != "hello" {
		t.Errorf("Unexpected event: %+v", ev)
	}
	if ev.Time != 1717243200 {
		t.Errorf("Expected timestamp 1717243200, got %d", ev.Time)
	}
}

func TestReceiveWebhookStatusOnlyNotification(t *testing.T) {
	srv, _, _, receiver := newTestServer(t)
	payload := `{
		"object": "whatsapp_business_account",
		"entry": [{"changes": [{"value": {
			"statuses": [{"id": "wamid.test", "status": "delivered"}]
		}}]}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for status-only notification, got %d", rec.Code)
	}
	if got := receiver.received(); len(got) != 0 {
		t.Errorf("Expected no forwarded events, got %d", len(got))
	}
}

func TestReceiveWebhookMalformedJSON(t *testing.T) {
	srv, _, _, receiver := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for malformed payload, got %d", rec.Code)
	}
	if got := receiver.received(); len(got) != 0 {
		t.Errorf("Expected no forwarded events, got %d", len(got))
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodDelete, "/webhook", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestTwilioWebhook(t *testing.T) {
	srv, _, _, receiver := newTestServer(t)
	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "hello")
	req := httptest.NewRequest(http.MethodPost, "/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("Expected text/xml response, got %q", ct)
	}
	if rec.Body.String() != "<Response></Response>" {
		t.Errorf("Expected empty TwiML response, got %q", rec.Body.String())
	}
	events := receiver.received()
	if len(events) != 1 {
		t.Fatalf("Expected 1 forwarded event, got %d", len(events))
	}
	if events[0].From != "+15551234567" || events[0].Body != "hello" || events[0].Type != models.EventTypeText {
		t.Errorf("Unexpected event: %+v", events[0])
	}
}

func TestTwilioWebhookMethodNotAllowed(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/twilio/webhook", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	srv, _, sessions, _ := newTestServer(t)
	sessions.Do("15551234567", func(sess *models.Session) bool { return true })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec.Body)
	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %q", resp.Status)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected result object, got %T", resp.Result)
	}
	if got := result["active_sessions"]; got != float64(1) {
		t.Errorf("Expected 1 active session, got %v", got)
	}
}

func TestInquiriesHandler(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	inq := models.Inquiry{
		ID:          "inq-1",
		Name:        "Jane",
		Phone:       "15551234567",
		Email:       "jane@example.com",
		Company:     "Acme",
		InquiryType: models.InquiryTypeTechnicalSupport,
		Message:     "Need a quote",
		Status:      models.InquiryStatusNew,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := st.SaveInquiry(context.Background(), inq); err != nil {
		t.Fatalf("SaveInquiry failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/inquiries", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status string           `json:"status"`
		Result []models.Inquiry `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Result) != 1 || resp.Result[0].ID != "inq-1" {
		t.Errorf("Unexpected inquiry list: %+v", resp.Result)
	}
}

func TestInquiryStatusHandler(t *testing.T) {
	srv, st, _, _ := newTestServer(t)
	inq := models.Inquiry{
		ID:          "inq-1",
		Name:        "Jane",
		Phone:       "15551234567",
		Email:       "jane@example.com",
		Company:     "Acme",
		InquiryType: models.InquiryTypeTechnicalSupport,
		Message:     "Need a quote",
		Status:      models.InquiryStatusNew,
		CreatedAt:   time.Now(),
	}
	if err := st.SaveInquiry(context.Background(), inq); err != nil {
		t.Fatalf("SaveInquiry failed: %v", err)
	}
	handler := srv.Handler()

	cases := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"happy path", "/inquiries/inq-1/status", `{"status":"In Progress"}`, http.StatusOK},
		{"unknown id", "/inquiries/missing/status", `{"status":"Resolved"}`, http.StatusNotFound},
		{"invalid status", "/inquiries/inq-1/status", `{"status":"Closed"}`, http.StatusBadRequest},
		{"malformed JSON", "/inquiries/inq-1/status", `{status`, http.StatusBadRequest},
		{"malformed path", "/inquiries/inq-1", `{"status":"Resolved"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}

	inquiries, err := st.ListInquiries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if inquiries[0].Status != models.InquiryStatusInProgress {
		t.Errorf("Expected status updated to In Progress, got %q", inquiries[0].Status)
	}
}

func TestInquiryStatusHandlerMethodNotAllowed(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/inquiries/inq-1/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}
