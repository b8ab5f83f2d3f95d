package messaging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/guhanims/intakebot/internal/models"
)

// Handler processes one normalized inbound event. The dispatcher guarantees
// that for any given sender, events are handled strictly in arrival order and
// never concurrently; events for distinct senders run concurrently.
type Handler func(ctx context.Context, ev models.Event)

// userQueue holds the pending events for one sender. Access is guarded by the
// dispatcher mutex; a worker goroutine exists exactly while the queue is
// non-empty.
type userQueue struct {
	events []models.Event
}

// Dispatcher routes inbound events from a messaging service to the handler,
// serializing per sender so rapid successive messages from one user cannot
// race each other or produce duplicate replies.
type Dispatcher struct {
	svc     Service
	handler Handler

	mu     sync.Mutex
	queues map[string]*userQueue
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher routing events from svc to handler.
func NewDispatcher(svc Service, handler Handler) *Dispatcher {
	return &Dispatcher{
		svc:     svc,
		handler: handler,
		queues:  make(map[string]*userQueue),
	}
}

// Start begins consuming events from the messaging service. It returns when
// the service's event channel closes or the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	slog.Info("Dispatcher starting event processing")

	go func() {
		defer slog.Info("Dispatcher stopped event processing")
		for {
			select {
			case ev, ok := <-d.svc.Events():
				if !ok {
					slog.Debug("Dispatcher events channel closed")
					return
				}
				d.Enqueue(ctx, ev)
			case <-ctx.Done():
				slog.Debug("Dispatcher stopping due to context cancellation")
				return
			}
		}
	}()
}

// Enqueue adds an event to the sender's queue, spawning a worker if none is
// active for that sender. Events without a sender identifier are dropped
// silently: such deliveries are malformed, not errors.
func (d *Dispatcher) Enqueue(ctx context.Context, ev models.Event) {
	if ev.From == "" {
		slog.Debug("Dispatcher dropping event without sender")
		return
	}
	canonical, err := d.svc.ValidateAndCanonicalizeRecipient(ev.From)
	if err != nil {
		slog.Debug("Dispatcher dropping event with invalid sender", "error", err, "from", ev.From)
		return
	}
	ev.From = canonical

	d.mu.Lock()
	q, ok := d.queues[canonical]
	if ok {
		q.events = append(q.events, ev)
		d.mu.Unlock()
		return
	}
	d.queues[canonical] = &userQueue{events: []models.Event{ev}}
	d.wg.Add(1)
	d.mu.Unlock()

	go d.drain(ctx, canonical)
}

// drain processes the sender's queue in order until it is empty, then removes
// the queue. The empty check and removal happen under the same lock as
// Enqueue's append, so no event can be lost between drain exit and the next
// worker spawn.
func (d *Dispatcher) drain(ctx context.Context, userID string) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[userID]
		if q == nil || len(q.events) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		ev := q.events[0]
		q.events = q.events[1:]
		d.mu.Unlock()

		d.handle(ctx, ev)
	}
}

// handle runs the handler for one event, containing panics so a malformed
// event can never take down processing for other users.
func (d *Dispatcher) handle(ctx context.Context, ev models.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Dispatcher handler panicked", "panic", r, "from", ev.From, "eventType", ev.Type)
		}
	}()
	d.handler(ctx, ev)
}

// Wait blocks until all in-flight per-user workers have drained.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// PendingUsers returns the number of senders with a queue currently active.
func (d *Dispatcher) PendingUsers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}
