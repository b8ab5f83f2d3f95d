package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guhanims/intakebot/internal/models"
)

// InquirySaver is the persistence capability for completed inquiries.
type InquirySaver interface {
	SaveInquiry(ctx context.Context, inq models.Inquiry) error
}

// Opts holds configuration options for the dialogue engine.
type Opts struct {
	Catalog *Catalog
	Now     func() time.Time
}

// Option defines a configuration option for the dialogue engine.
type Option func(*Opts)

// WithCatalog overrides the built-in product catalog.
func WithCatalog(c Catalog) Option {
	return func(o *Opts) { o.Catalog = &c }
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Engine is the dialogue state machine. It owns no sessions and does no I/O
// except invoking the injected persistence capability; message delivery is
// described by the returned actions.
type Engine struct {
	saver   InquirySaver
	catalog Catalog
	now     func() time.Time
}

// NewEngine creates a dialogue engine with the given persistence capability.
func NewEngine(saver InquirySaver, opts ...Option) *Engine {
	cfg := Opts{Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	catalog := DefaultCatalog()
	if cfg.Catalog != nil {
		catalog = *cfg.Catalog
	}
	return &Engine{saver: saver, catalog: catalog, now: cfg.Now}
}

// Handle runs one transition for the session and event. The caller must hold
// the session's per-user lock and must deliver the returned actions in order.
func (e *Engine) Handle(ctx context.Context, s *models.Session, ev models.Event) Result {
	slog.Debug("Engine handling event", "userID", s.UserID, "state", s.State, "eventType", ev.Type)

	var res Result

	// The greeting consumes any event type, including unsupported ones: the
	// first contact always yields the welcome and the main menu.
	if s.State == models.StateGreeting {
		e.greet(s, &res)
		res.Accepted = true
		return res
	}

	if ev.Type == models.EventTypeUnsupported {
		res.text(msgUnsupported)
		return res
	}

	switch s.State {
	case models.StateMainMenu:
		e.handleMainMenu(s, ev, &res)
	case models.StateProductCategory:
		e.handleProductCategory(s, ev, &res)
	case models.StateProductSubcategory:
		e.handleProductSubcategory(s, ev, &res)
	case models.StateCollectingName:
		e.handleCollectingName(s, ev, &res)
	case models.StateCollectingEmail:
		e.handleCollectingEmail(s, ev, &res)
	case models.StateCollectingCompany:
		e.handleCollectingCompany(s, ev, &res)
	case models.StateCollectingMessage:
		e.handleCollectingMessage(ctx, s, ev, &res)
	case models.StateFollowUp:
		e.handleFollowUp(s, ev, &res)
	default:
		// Unreachable under correct operation; never leave the user stuck.
		slog.Error("Engine encountered unknown session state, resetting", "userID", s.UserID, "state", s.State)
		s.Fields = make(map[models.FieldKey]string)
		res.text(msgSessionReset)
		e.greet(s, &res)
		res.Accepted = true
	}

	slog.Debug("Engine transition complete", "userID", s.UserID, "state", s.State, "accepted", res.Accepted, "actions", len(res.Actions))
	return res
}

// greet emits the welcome text plus the main menu and moves to MainMenu.
func (e *Engine) greet(s *models.Session, res *Result) {
	res.text(msgWelcome)
	res.buttons(msgMainMenu, mainMenuButtons())
	s.State = models.StateMainMenu
}

func (e *Engine) handleMainMenu(s *models.Session, ev models.Event, res *Result) {
	if ev.Type != models.EventTypeButton {
		// Defensive default: unexpected input while a menu is open is ignored.
		return
	}
	switch ev.SelectionID {
	case SelectionProducts:
		s.SetField(models.FieldInquiryType, string(models.InquiryTypeProductCatalog))
		res.buttons(msgCategoryMenu, e.catalog.Buttons())
		s.State = models.StateProductCategory
		res.Accepted = true
	case SelectionSupport:
		s.SetField(models.FieldInquiryType, string(models.InquiryTypeTechnicalSupport))
		res.text(msgAskName)
		s.State = models.StateCollectingName
		res.Accepted = true
	case SelectionCustom:
		s.SetField(models.FieldInquiryType, string(models.InquiryTypeCustomSolutions))
		res.text(msgAskName)
		s.State = models.StateCollectingName
		res.Accepted = true
	default:
		slog.Debug("Engine ignoring unknown main menu selection", "userID", s.UserID, "selection", ev.SelectionID)
	}
}

func (e *Engine) handleProductCategory(s *models.Session, ev models.Event, res *Result) {
	if ev.Type != models.EventTypeButton {
		return
	}
	cat, ok := e.catalog.Category(ev.SelectionID)
	if !ok {
		slog.Debug("Engine ignoring unknown category selection", "userID", s.UserID, "selection", ev.SelectionID)
		return
	}
	s.SetField(models.FieldProductCategory, cat.Title)
	if len(cat.Products) > 0 {
		res.list(msgProductMenu, msgProductButton, e.catalog.ListSections(cat))
		s.State = models.StateProductSubcategory
	} else {
		res.text(msgAskName)
		s.State = models.StateCollectingName
	}
	res.Accepted = true
}

func (e *Engine) handleProductSubcategory(s *models.Session, ev models.Event, res *Result) {
	if ev.Type != models.EventTypeList {
		return
	}
	product, ok := e.catalog.Product(ev.SelectionID)
	if !ok {
		slog.Debug("Engine ignoring unknown product selection", "userID", s.UserID, "selection", ev.SelectionID)
		return
	}
	s.SetField(models.FieldSpecificProduct, product.Title)
	res.text(msgAskName)
	s.State = models.StateCollectingName
	res.Accepted = true
}

func (e *Engine) handleCollectingName(s *models.Session, ev models.Event, res *Result) {
	body, ok := textInput(ev, res)
	if !ok {
		return
	}
	s.SetField(models.FieldName, body)
	res.text(fmt.Sprintf(msgAskEmailFmt, body))
	s.State = models.StateCollectingEmail
	res.Accepted = true
}

func (e *Engine) handleCollectingEmail(s *models.Session, ev models.Event, res *Result) {
	if ev.Type != models.EventTypeText {
		return
	}
	if !IsValidEmail(ev.Body) {
		// State and fields unchanged; the user must resubmit.
		res.text(msgInvalidEmail)
		return
	}
	s.SetField(models.FieldEmail, ev.Body)
	res.text(msgAskCompany)
	s.State = models.StateCollectingCompany
	res.Accepted = true
}

func (e *Engine) handleCollectingCompany(s *models.Session, ev models.Event, res *Result) {
	body, ok := textInput(ev, res)
	if !ok {
		return
	}
	s.SetField(models.FieldCompany, body)
	res.text(msgAskMessage)
	s.State = models.StateCollectingMessage
	res.Accepted = true
}

func (e *Engine) handleCollectingMessage(ctx context.Context, s *models.Session, ev models.Event, res *Result) {
	body, ok := textInput(ev, res)
	if !ok {
		return
	}
	s.SetField(models.FieldMessage, body)

	inq, err := BuildInquiry(s, e.now())
	if err != nil {
		// Invariant violation: the ordering should have collected every
		// mandatory field. Recover by restarting rather than crashing.
		slog.Error("Engine failed to build inquiry, resetting session", "error", err, "userID", s.UserID)
		s.Fields = make(map[models.FieldKey]string)
		res.text(msgSessionReset)
		e.greet(s, res)
		res.Accepted = true
		return
	}

	if err := e.saver.SaveInquiry(ctx, inq); err != nil {
		// Transient persistence failure: keep the collected data and stay in
		// CollectingMessage so the next text submission retries the save.
		slog.Error("Engine failed to persist inquiry, will retry on next input", "error", err, "userID", s.UserID)
		res.text(msgTransientError)
		res.Accepted = true
		return
	}

	slog.Info("Engine persisted inquiry", "userID", s.UserID, "inquiryID", inq.ID, "inquiryType", inq.InquiryType)
	res.text(msgConfirmation)
	res.buttons(msgFollowUp, followUpButtons())
	s.State = models.StateFollowUp
	res.Accepted = true
}

func (e *Engine) handleFollowUp(s *models.Session, ev models.Event, res *Result) {
	if ev.Type != models.EventTypeButton {
		return
	}
	switch ev.SelectionID {
	case SelectionNewInquiry:
		s.ResetForNewInquiry()
		res.buttons(msgMainMenu, mainMenuButtons())
		s.State = models.StateMainMenu
		res.Accepted = true
	case SelectionEndChat:
		res.text(msgFarewell)
		res.Accepted = true
		res.EndSession = true
	default:
		slog.Debug("Engine ignoring unknown follow-up selection", "userID", s.UserID, "selection", ev.SelectionID)
	}
}

// textInput extracts a usable free-text body from the event. Non-text events
// are ignored silently; empty or whitespace-only submissions are rejected
// with a retry prompt.
func textInput(ev models.Event, res *Result) (string, bool) {
	if ev.Type != models.EventTypeText {
		return "", false
	}
	if strings.TrimSpace(ev.Body) == "" {
		res.text(msgEmptyInput)
		return "", false
	}
	return ev.Body, true
}
