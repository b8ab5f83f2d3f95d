// Package session provides the in-memory session store for the intake bot.
//
// Sessions are keyed by the canonical user identifier, created lazily on first
// access, serialized per user, and reclaimed after a TTL of inactivity either
// lazily on access or by the periodic reaper.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/guhanims/intakebot/internal/models"
)

// DefaultTTL is the session inactivity timeout.
const DefaultTTL = 30 * time.Minute

// Opts holds configuration options for the session store.
type Opts struct {
	TTL time.Duration
	Now func() time.Time
}

// Option defines a configuration option for the session store.
type Option func(*Opts)

// WithTTL overrides the session inactivity timeout.
func WithTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.TTL = ttl }
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// entry pairs a session with its per-user lock. The lock serializes all
// processing for one user; distinct users never contend on it.
type entry struct {
	mu      sync.Mutex
	session *models.Session
}

// Store is an in-memory keyed session map with TTL-based expiry.
//
// The store-wide mutex only guards the map itself; session mutation happens
// under the per-entry lock so that slow processing for one user never stalls
// another user's session access.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a session store, applying any provided options.
func NewStore(opts ...Option) *Store {
	cfg := Opts{TTL: DefaultTTL, Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SessionStore created", "ttl", cfg.TTL)
	return &Store{
		entries: make(map[string]*entry),
		ttl:     cfg.TTL,
		now:     cfg.Now,
	}
}

// resolve returns the live entry for userID, creating it if absent. It loops
// because an entry can be deleted (end_chat, reaper) between the map lookup
// and acquiring its lock; the caller receives the entry already locked.
func (st *Store) resolve(userID string) *entry {
	for {
		st.mu.Lock()
		e, ok := st.entries[userID]
		if !ok {
			e = &entry{session: models.NewSession(userID, st.now())}
			st.entries[userID] = e
			slog.Debug("SessionStore created session", "userID", userID)
		}
		st.mu.Unlock()

		e.mu.Lock()
		st.mu.Lock()
		live := st.entries[userID] == e
		st.mu.Unlock()
		if live {
			return e
		}
		e.mu.Unlock()
	}
}

// Do resolves (or lazily creates) the session for userID and runs fn with the
// per-user lock held. A session whose inactivity exceeds the TTL is replaced
// with a fresh one before fn runs; expired state is never observable.
//
// fn reports whether the event was accepted; LastActivityAt is refreshed only
// for accepted events, so rejected input does not extend a session's life.
func (st *Store) Do(userID string, fn func(s *models.Session) (accepted bool)) {
	e := st.resolve(userID)
	defer e.mu.Unlock()

	now := st.now()
	if now.Sub(e.session.LastActivityAt) > st.ttl {
		slog.Debug("SessionStore lazily expiring session", "userID", userID, "lastActivity", e.session.LastActivityAt)
		e.session = models.NewSession(userID, now)
	}

	if fn(e.session) {
		e.session.LastActivityAt = now
	}
}

// Delete removes the session for userID. A deleted session is
// indistinguishable from one that never existed; the next event from the same
// user starts a fresh dialogue.
func (st *Store) Delete(userID string) {
	st.mu.Lock()
	_, ok := st.entries[userID]
	delete(st.entries, userID)
	st.mu.Unlock()
	if ok {
		slog.Debug("SessionStore deleted session", "userID", userID)
	}
}

// Contains reports whether a live (possibly expired but not yet reclaimed)
// session exists for userID without creating one.
func (st *Store) Contains(userID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.entries[userID]
	return ok
}

// Len returns the number of sessions currently held, including expired ones
// not yet swept.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// Sweep evicts every session whose inactivity exceeds the TTL. Entries whose
// per-user lock is currently held are skipped rather than evicted mid-mutation;
// they are picked up by a later sweep if still expired.
func (st *Store) Sweep() int {
	st.mu.Lock()
	snapshot := make(map[string]*entry, len(st.entries))
	for id, e := range st.entries {
		snapshot[id] = e
	}
	st.mu.Unlock()

	now := st.now()
	evicted := 0
	for id, e := range snapshot {
		if !e.mu.TryLock() {
			// Session is mid-mutation; leave it for the next sweep.
			continue
		}
		expired := now.Sub(e.session.LastActivityAt) > st.ttl
		if expired {
			st.mu.Lock()
			if st.entries[id] == e {
				delete(st.entries, id)
				evicted++
			}
			st.mu.Unlock()
		}
		e.mu.Unlock()
	}
	if evicted > 0 {
		slog.Info("SessionStore sweep evicted expired sessions", "evicted", evicted, "remaining", st.Len())
	}
	return evicted
}
