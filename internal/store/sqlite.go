// Package store provides persistence backends for completed inquiries.
//
// This file implements the SQLite-backed inquiry store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/guhanims/intakebot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists inquiries in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveInquiry persists a completed inquiry.
func (s *SQLiteStore) SaveInquiry(ctx context.Context, inq models.Inquiry) error {
	if err := inq.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiries (id, name, phone, email, company, inquiry_type, product_category, specific_product, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inq.ID, inq.Name, inq.Phone, inq.Email, inq.Company, string(inq.InquiryType),
		nilIfEmpty(inq.ProductCategory), nilIfEmpty(inq.SpecificProduct), inq.Message, string(inq.Status), inq.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveInquiry failed", "error", err, "inquiryID", inq.ID)
		return fmt.Errorf("failed to insert inquiry %s: %w", inq.ID, err)
	}
	slog.Debug("SQLiteStore SaveInquiry succeeded", "inquiryID", inq.ID, "phone", inq.Phone)
	return nil
}

// ListInquiries returns all inquiries, newest first.
func (s *SQLiteStore) ListInquiries(ctx context.Context) ([]models.Inquiry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, email, company, inquiry_type, product_category, specific_product, message, status, created_at
		FROM inquiries ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore ListInquiries query failed", "error", err)
		return nil, fmt.Errorf("failed to query inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []models.Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			slog.Error("SQLiteStore ListInquiries scan failed", "error", err)
			return nil, err
		}
		inquiries = append(inquiries, inq)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListInquiries rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate inquiry rows: %w", err)
	}
	slog.Debug("SQLiteStore ListInquiries succeeded", "count", len(inquiries))
	return inquiries, nil
}

// UpdateInquiryStatus updates the status of an existing inquiry.
func (s *SQLiteStore) UpdateInquiryStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	if !models.IsValidInquiryStatus(status) {
		return models.ErrInvalidStatus
	}
	result, err := s.db.ExecContext(ctx, `UPDATE inquiries SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		slog.Error("SQLiteStore UpdateInquiryStatus failed", "error", err, "inquiryID", id)
		return fmt.Errorf("failed to update inquiry %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for inquiry %s: %w", id, err)
	}
	if affected == 0 {
		return ErrInquiryNotFound
	}
	slog.Debug("SQLiteStore UpdateInquiryStatus succeeded", "inquiryID", id, "status", status)
	return nil
}

// ClearInquiries deletes all records in the inquiries table (for tests).
func (s *SQLiteStore) ClearInquiries() error {
	_, err := s.db.Exec("DELETE FROM inquiries")
	if err != nil {
		slog.Error("SQLiteStore ClearInquiries failed", "error", err)
		return err
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
