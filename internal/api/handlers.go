// Package api provides HTTP handlers for the intake service endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/guhanims/intakebot/internal/cloudapi"
	"github.com/guhanims/intakebot/internal/models"
	"github.com/guhanims/intakebot/internal/store"
)

// webhookHandler serves the Meta Cloud API webhook: GET performs the
// subscription verification handshake, POST receives message notifications.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodGet:
		s.verifyWebhook(w, r)
	case http.MethodPost:
		s.receiveWebhook(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		slog.Warn("Server.webhookHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verifyWebhook implements the hub.challenge handshake. Meta sends the
// configured verify token; echoing the challenge confirms the subscription.
func (s *Server) verifyWebhook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && s.verifyToken != "" && token == s.verifyToken {
		slog.Info("Server.verifyWebhook: webhook verified")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge)); err != nil {
			slog.Error("Server.verifyWebhook: failed to write challenge", "error", err)
		}
		return
	}

	slog.Warn("Server.verifyWebhook: verification failed", "mode", mode, "token_match", token == s.verifyToken)
	w.WriteHeader(http.StatusForbidden)
}

// receiveWebhook decodes a Cloud API notification and forwards the contained
// message to the messaging backend. It always answers 200 so Meta does not
// retry deliveries that we have already consumed.
func (s *Server) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.receiveWebhook: processing notification")

	var envelope cloudapi.WebhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		slog.Warn("Server.receiveWebhook: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("ignored", nil))
		return
	}

	msg, ok := envelope.FirstMessage()
	if !ok {
		slog.Debug("Server.receiveWebhook: notification carries no message (status update)")
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("ignored", nil))
		return
	}

	ev := cloudapi.Normalize(msg)
	if s.receiver != nil {
		s.receiver.HandleInbound(ev)
	}
	slog.Debug("Server.receiveWebhook: event forwarded", "from", ev.From, "type", ev.Type)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("received", nil))
}

// twilioWebhookHandler receives inbound messages from the Twilio webhook as
// form-encoded From/Body pairs.
func (s *Server) twilioWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.twilioWebhookHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.Warn("Server.twilioWebhookHandler: failed to parse form", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	from := strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:")
	body := r.PostFormValue("Body")

	ev := models.Event{
		From: from,
		Type: models.EventTypeText,
		Body: body,
		Time: time.Now().Unix(),
	}
	if s.receiver != nil {
		s.receiver.HandleInbound(ev)
	}
	slog.Debug("Server.twilioWebhookHandler: event forwarded", "from", from)

	// Empty TwiML response: no synchronous reply, all replies go through the REST API
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("<Response></Response>")); err != nil {
		slog.Error("Server.twilioWebhookHandler: failed to write response", "error", err)
	}
}

// healthHandler reports liveness and the number of active sessions.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"status":          "ok",
		"active_sessions": s.sessions.Len(),
	}))
}

// inquiriesHandler lists stored inquiries, newest first.
func (s *Server) inquiriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.inquiriesHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	inquiries, err := s.st.ListInquiries(r.Context())
	if err != nil {
		slog.Error("Server.inquiriesHandler: failed to list inquiries", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list inquiries"))
		return
	}
	slog.Debug("Server.inquiriesHandler: inquiries listed", "count", len(inquiries))
	writeJSONResponse(w, http.StatusOK, models.Success(inquiries))
}

// inquiryStatusHandler updates the status of one inquiry.
// Route shape: PATCH /inquiries/{id}/status
func (s *Server) inquiryStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPatch {
		w.Header().Set("Allow", http.MethodPatch)
		slog.Warn("Server.inquiryStatusHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/inquiries/")
	id := strings.TrimSuffix(path, "/status")
	if id == "" || id == path {
		slog.Warn("Server.inquiryStatusHandler: malformed path", "path", r.URL.Path)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}

	var req struct {
		Status models.InquiryStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.inquiryStatusHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !models.IsValidInquiryStatus(req.Status) {
		slog.Warn("Server.inquiryStatusHandler: invalid status", "status", req.Status)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid inquiry status"))
		return
	}

	if err := s.st.UpdateInquiryStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, store.ErrInquiryNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Inquiry not found"))
			return
		}
		slog.Error("Server.inquiryStatusHandler: failed to update status", "error", err, "id", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update inquiry status"))
		return
	}

	slog.Info("Server.inquiryStatusHandler: status updated", "id", id, "status", req.Status)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Inquiry status updated", nil))
}
