// Package store provides persistence backends for completed inquiries.
//
// This file implements the PostgreSQL-backed inquiry store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/guhanims/intakebot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists inquiries in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveInquiry persists a completed inquiry.
func (s *PostgresStore) SaveInquiry(ctx context.Context, inq models.Inquiry) error {
	if err := inq.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiries (id, name, phone, email, company, inquiry_type, product_category, specific_product, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		inq.ID, inq.Name, inq.Phone, inq.Email, inq.Company, string(inq.InquiryType),
		nilIfEmpty(inq.ProductCategory), nilIfEmpty(inq.SpecificProduct), inq.Message, string(inq.Status), inq.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveInquiry failed", "error", err, "inquiryID", inq.ID)
		return fmt.Errorf("failed to insert inquiry %s: %w", inq.ID, err)
	}
	slog.Debug("PostgresStore SaveInquiry succeeded", "inquiryID", inq.ID, "phone", inq.Phone)
	return nil
}

// ListInquiries returns all inquiries, newest first.
func (s *PostgresStore) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, email, company, inquiry_type, product_category, specific_product, message, status, created_at
		FROM inquiries ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("PostgresStore ListInquiries query failed", "error", err)
		return nil, fmt.Errorf("failed to query inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []models.Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			slog.Error("PostgresStore ListInquiries scan failed", "error", err)
			return nil, err
		}
		inquiries = append(inquiries, inq)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListInquiries rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate inquiry rows: %w", err)
	}
	slog.Debug("PostgresStore ListInquiries succeeded", "count", len(inquiries))
	return inquiries, nil
}

// UpdateInquiryStatus updates the status of an existing inquiry.
func (s *PostgresStore) UpdateInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	if !models.IsValidInquiryStatus(status) {
		return models.ErrInvalidStatus
	}
	result, err := s.db.ExecContext(ctx, `UPDATE inquiries SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		slog.Error("PostgresStore UpdateInquiryStatus failed", "error", err, "inquiryID", id)
		return fmt.Errorf("failed to update inquiry %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for inquiry %s: %w", id, err)
	}
	if affected == 0 {
		return ErrInquiryNotFound
	}
	slog.Debug("PostgresStore UpdateInquiryStatus succeeded", "inquiryID", id, "status", status)
	return nil
}

// ClearInquiries deletes all records in the inquiries table (for tests).
func (s *PostgresStore) ClearInquiries() error {
	_, err := s.db.Exec("DELETE FROM inquiries")
	if err != nil {
		slog.Error("PostgresStore ClearInquiries failed", "error", err)
		return err
	}
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
