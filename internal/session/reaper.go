package session

import (
	"fmt"
	"log/slog"

	"github.com/guhanims/intakebot/internal/scheduler"
)

// DefaultSweepIntervalMinutes is how often the reaper scans for expired sessions.
const DefaultSweepIntervalMinutes = 5

// ReaperOpts holds configuration options for the session reaper.
type ReaperOpts struct {
	IntervalMinutes int
}

// ReaperOption defines a configuration option for the session reaper.
type ReaperOption func(*ReaperOpts)

// WithSweepInterval overrides the sweep interval in minutes.
func WithSweepInterval(minutes int) ReaperOption {
	return func(o *ReaperOpts) { o.IntervalMinutes = minutes }
}

// Reaper periodically evicts expired sessions independent of inbound traffic,
// so abandoned dialogues are reclaimed even when the user never returns.
type Reaper struct {
	store *Store
	sched *scheduler.Scheduler
	every int
}

// NewReaper creates a reaper for the given store, applying any provided options.
func NewReaper(store *Store, opts ...ReaperOption) *Reaper {
	cfg := ReaperOpts{IntervalMinutes: DefaultSweepIntervalMinutes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Reaper{store: store, every: cfg.IntervalMinutes}
}

// Start begins the periodic sweep on its own cron scheduler.
func (r *Reaper) Start() error {
	if r.sched != nil {
		return fmt.Errorf("reaper already started")
	}
	r.sched = scheduler.NewScheduler()
	if err := r.sched.AddEveryMinutes(r.every, func() {
		evicted := r.store.Sweep()
		slog.Debug("Reaper sweep completed", "evicted", evicted)
	}); err != nil {
		r.sched.Stop()
		r.sched = nil
		return fmt.Errorf("failed to schedule reaper sweep: %w", err)
	}
	slog.Info("Reaper started", "interval_minutes", r.every)
	return nil
}

// Stop stops the periodic sweep.
func (r *Reaper) Stop() {
	if r.sched == nil {
		return
	}
	r.sched.Stop()
	r.sched = nil
	slog.Info("Reaper stopped")
}
