// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
// Each invoice is one row holding the same JSON document the file store writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperr.Storage("open", "", fmt.Errorf("failed to create database directory: %w", err))
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperr.Storage("open", "", fmt.Errorf("failed to open database: %w", err))
	}

	// Concurrent writers wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, apperr.Storage("open", "", fmt.Errorf("failed to set busy timeout: %w", err))
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, apperr.Storage("open", "", fmt.Errorf("failed to run migrations: %w", err))
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts the invoice row. The database path is returned as the location.
func (s *SQLiteStore) Save(ctx context.Context, snap *models.Snapshot) (string, error) {
	if err := storage.CheckKey(snap.InvoiceNumber); err != nil {
		return "", err
	}
	data, err := storage.Encode(snap)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO invoices (invoice_number, client_name, total, document, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(invoice_number) DO UPDATE SET
		   client_name = excluded.client_name,
		   total = excluded.total,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		snap.InvoiceNumber, snap.ClientInfo.Name, snap.Totals.Total, string(data), time.Now().Unix(),
	)
	if err != nil {
		return "", apperr.Storage("save", snap.InvoiceNumber, fmt.Errorf("failed to upsert invoice: %w", err))
	}

	return s.path, nil
}

// Load retrieves an invoice by number.
func (s *SQLiteStore) Load(ctx context.Context, number string) (*models.Snapshot, error) {
	var document string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM invoices WHERE invoice_number = ?",
		number,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("load", number)
	}
	if err != nil {
		return nil, apperr.Storage("load", number, fmt.Errorf("failed to get invoice: %w", err))
	}

	return storage.Decode(number, []byte(document))
}

// ListKeys returns all invoice numbers in byte order.
func (s *SQLiteStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT invoice_number FROM invoices ORDER BY invoice_number COLLATE BINARY",
	)
	if err != nil {
		return nil, apperr.Storage("list", "", fmt.Errorf("failed to list invoices: %w", err))
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, apperr.Storage("list", "", fmt.Errorf("failed to scan invoice number: %w", err))
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("list", "", fmt.Errorf("failed to iterate invoices: %w", err))
	}
	return keys, nil
}

// Delete removes the invoice row.
func (s *SQLiteStore) Delete(ctx context.Context, number string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM invoices WHERE invoice_number = ?", number)
	if err != nil {
		return apperr.Storage("delete", number, fmt.Errorf("failed to delete invoice: %w", err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return apperr.Storage("delete", number, fmt.Errorf("failed to check rows affected: %w", err))
	}
	if n == 0 {
		return apperr.NotFound("delete", number)
	}
	return nil
}
