package dialog

import (
	"context"
	"log/slog"

	"github.com/guhanims/intakebot/internal/messaging"
	"github.com/guhanims/intakebot/internal/models"
	"github.com/guhanims/intakebot/internal/session"
)

// Coordinator ties the session store, the dialogue engine and the delivery
// service together into the per-event handler the dispatcher invokes.
type Coordinator struct {
	sessions *session.Store
	engine   *Engine
	svc      messaging.Service
}

// NewCoordinator creates a coordinator over the given collaborators.
func NewCoordinator(sessions *session.Store, engine *Engine, svc messaging.Service) *Coordinator {
	return &Coordinator{sessions: sessions, engine: engine, svc: svc}
}

// HandleEvent processes one inbound event end to end: resolve the session
// under its per-user lock, run the transition, then deliver the emitted
// actions in order with no lock held. The dispatcher guarantees per-user
// serialization, so the ordering of sends per user is preserved.
func (c *Coordinator) HandleEvent(ctx context.Context, ev models.Event) {
	var res Result
	c.sessions.Do(ev.From, func(s *models.Session) bool {
		res = c.engine.Handle(ctx, s, ev)
		return res.Accepted
	})

	for _, action := range res.Actions {
		var err error
		switch a := action.(type) {
		case SendText:
			err = c.svc.SendText(ctx, ev.From, a.Body)
		case SendButtons:
			err = c.svc.SendButtons(ctx, ev.From, a.Body, a.Buttons)
		case SendList:
			err = c.svc.SendList(ctx, ev.From, a.Body, a.ButtonLabel, a.Sections)
		}
		if err != nil {
			// Sends are not retried; the message is lost. Known gap carried
			// over from the source system.
			slog.Error("Coordinator failed to deliver action", "error", err, "to", ev.From)
		}
	}

	if res.EndSession {
		c.sessions.Delete(ev.From)
	}
}
