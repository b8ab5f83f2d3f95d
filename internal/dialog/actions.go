// Package dialog implements the intake dialogue state machine.
//
// The engine is a transition function: it consumes the user's session and one
// normalized inbound event, mutates the session, and returns the outbound
// actions to perform. Control flow is data, not errors; delivery and
// persistence are injected capabilities.
package dialog

import "github.com/guhanims/intakebot/internal/models"

// Action is one outbound message emitted by a transition. Actions must be
// delivered to the user in the order emitted.
type Action interface {
	isAction()
}

// SendText asks the delivery layer to send a plain text message.
type SendText struct {
	Body string
}

// SendButtons asks the delivery layer to send a reply-button menu.
type SendButtons struct {
	Body    string
	Buttons []models.Button
}

// SendList asks the delivery layer to send a list menu.
type SendList struct {
	Body        string
	ButtonLabel string
	Sections    []models.ListSection
}

func (SendText) isAction()    {}
func (SendButtons) isAction() {}
func (SendList) isAction()    {}

// Result is the outcome of one transition.
type Result struct {
	// Actions are the outbound messages to deliver, in order.
	Actions []Action
	// Accepted reports whether the event advanced the dialogue. Rejected or
	// ignored events do not refresh the session's activity timestamp.
	Accepted bool
	// EndSession asks the caller to destroy the session after delivering the
	// actions. The next event from the same user starts a fresh dialogue.
	EndSession bool
}

func (r *Result) text(body string) {
	r.Actions = append(r.Actions, SendText{Body: body})
}

func (r *Result) buttons(body string, buttons []models.Button) {
	r.Actions = append(r.Actions, SendButtons{Body: body, Buttons: buttons})
}

func (r *Result) list(body, buttonLabel string, sections []models.ListSection) {
	r.Actions = append(r.Actions, SendList{Body: body, ButtonLabel: buttonLabel, Sections: sections})
}
