// Package store provides persistence backends for completed inquiries.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backed stores selected by DSN.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/guhanims/intakebot/internal/models"
)

// ErrInquiryNotFound is returned when an inquiry ID does not exist.
var ErrInquiryNotFound = errors.New("inquiry not found")

// Store is the persistence capability for inquiry records.
type Store interface {
	// SaveInquiry persists a completed inquiry. Called exactly once per
	// completed dialogue (retried by the dialogue on failure).
	SaveInquiry(ctx context.Context, inq models.Inquiry) error
	// ListInquiries returns all inquiries, newest first.
	ListInquiries(ctx context.Context) ([]models.Inquiry, error)
	// UpdateInquiryStatus moves an inquiry through the triage workflow.
	UpdateInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error
	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for database-backed stores.
type Opts struct {
	DSN string
}

// Option defines a configuration option for database-backed stores.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". PostgreSQL DSNs
// use URL or key=value forms; anything else is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a mutex-guarded in-memory inquiry store.
type InMemoryStore struct {
	mu        sync.RWMutex
	inquiries map[string]models.Inquiry
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{inquiries: make(map[string]models.Inquiry)}
}

// SaveInquiry stores the inquiry keyed by ID.
func (s *InMemoryStore) SaveInquiry(ctx context.Context, inq models.Inquiry) error {
	if err := inq.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inquiries[inq.ID] = inq
	return nil
}

// ListInquiries returns all inquiries, newest first.
func (s *InMemoryStore) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Inquiry, 0, len(s.inquiries))
	for _, inq := range s.inquiries {
		out = append(out, inq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateInquiryStatus updates the status of an existing inquiry.
func (s *InMemoryStore) UpdateInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	if !models.IsValidInquiryStatus(status) {
		return models.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inq, ok := s.inquiries[id]
	if !ok {
		return ErrInquiryNotFound
	}
	inq.Status = status
	s.inquiries[id] = inq
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
