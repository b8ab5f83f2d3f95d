package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guhanims/intakebot/internal/models"
)

// capture runs fn against a stub Graph API server and returns the decoded
// request payload it received.
func capture(t *testing.T, fn func(c *Client) error) map[string]interface{} {
	t.Helper()

	var payload map[string]interface{}
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode request payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(
		WithToken("test-token"),
		WithPhoneNumberID("12345"),
		WithBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if err := fn(client); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotPath != "/12345/messages" {
		t.Errorf("Expected messages endpoint for phone number id, got %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	return payload
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("PHONE_NUMBER_ID", "")
	if _, err := NewClient(); err == nil {
		t.Error("Expected error without credentials")
	}
}

func TestSendTextPayload(t *testing.T) {
	payload := capture(t, func(c *Client) error {
		return c.SendText(context.Background(), "15551234567", "hello")
	})

	if payload["messaging_product"] != "whatsapp" || payload["recipient_type"] != "individual" {
		t.Errorf("Unexpected envelope fields: %v", payload)
	}
	if payload["to"] != "15551234567" || payload["type"] != "text" {
		t.Errorf("Unexpected addressing fields: %v", payload)
	}
	text, _ := payload["text"].(map[string]interface{})
	if text["body"] != "hello" {
		t.Errorf("Expected text body, got %v", payload["text"])
	}
}

func TestSendReplyButtonsPayload(t *testing.T) {
	buttons := []models.Button{
		{ID: "products", Title: "Product Catalog"},
		{Title: "No ID"},
	}
	payload := capture(t, func(c *Client) error {
		return c.SendReplyButtons(context.Background(), "15551234567", "How can I assist you today?", buttons)
	})

	if payload["type"] != "interactive" {
		t.Fatalf("Expected interactive type, got %v", payload["type"])
	}
	interactive, _ := payload["interactive"].(map[string]interface{})
	if interactive["type"] != "button" {
		t.Errorf("Expected button interactive, got %v", interactive["type"])
	}
	action, _ := interactive["action"].(map[string]interface{})
	btns, _ := action["buttons"].([]interface{})
	if len(btns) != 2 {
		t.Fatalf("Expected two buttons, got %d", len(btns))
	}
	first, _ := btns[0].(map[string]interface{})
	if first["type"] != "reply" {
		t.Errorf("Expected reply button type, got %v", first["type"])
	}
	reply, _ := first["reply"].(map[string]interface{})
	if reply["id"] != "products" || reply["title"] != "Product Catalog" {
		t.Errorf("Unexpected first button: %v", reply)
	}
	second, _ := btns[1].(map[string]interface{})
	secondReply, _ := second["reply"].(map[string]interface{})
	if secondReply["id"] != "btn_1" {
		t.Errorf("Expected fallback id btn_1, got %v", secondReply["id"])
	}
}

func TestSendListPayload(t *testing.T) {
	sections := []models.ListSection{{
		Title: "Industrial Machinery",
		Rows: []models.ListRow{
			{ID: "machinery_cnc_mill", Title: "CNC Milling Machine", Description: "3- and 5-axis milling centers"},
		},
	}}
	payload := capture(t, func(c *Client) error {
		return c.SendList(context.Background(), "15551234567", "Select a specific product:", "View products", sections)
	})

	interactive, _ := payload["interactive"].(map[string]interface{})
	if interactive["type"] != "list" {
		t.Errorf("Expected list interactive, got %v", interactive["type"])
	}
	action, _ := interactive["action"].(map[string]interface{})
	if action["button"] != "View products" {
		t.Errorf("Expected list button label, got %v", action["button"])
	}
	secs, _ := action["sections"].([]interface{})
	if len(secs) != 1 {
		t.Fatalf("Expected one section, got %d", len(secs))
	}
	sec, _ := secs[0].(map[string]interface{})
	rows, _ := sec["rows"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("Expected one row, got %d", len(rows))
	}
	row, _ := rows[0].(map[string]interface{})
	if row["id"] != "machinery_cnc_mill" {
		t.Errorf("Expected row id, got %v", row["id"])
	}
}

func TestSendTextServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(WithToken("t"), WithPhoneNumberID("1"), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.SendText(context.Background(), "15551234567", "hello"); err == nil {
		t.Error("Expected error on non-2xx response")
	}
}
