// Package storage provides abstractions for persistent invoice storage.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

// Store persists invoice snapshots keyed by invoice number.
// This abstraction allows swapping storage backends (JSON files, SQLite)
// without changing the service layer.
//
// Saves are last-writer-wins with no locking. Readers must tolerate records
// that appear or disappear between ListKeys and Load.
type Store interface {
	// Save writes the snapshot under its invoice number, replacing any
	// existing record, and returns where it was written.
	Save(ctx context.Context, snap *models.Snapshot) (string, error)

	// Load returns the record for number.
	// Errors: apperr.KindNotFound if absent, apperr.KindMalformedRecord if the
	// record exists but cannot be decoded, apperr.KindStorage on I/O failure.
	Load(ctx context.Context, number string) (*models.Snapshot, error)

	// ListKeys returns every stored invoice number in lexicographic order.
	ListKeys(ctx context.Context) ([]string, error)

	// Delete removes the record. Returns apperr.KindNotFound if absent.
	Delete(ctx context.Context, number string) error

	// Close releases any resources held by the store.
	Close() error
}

// Driver names accepted in Config.Driver.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config tells a store where things live. It is passed explicitly so several
// stores can coexist (tests, CLI and server sharing a directory).
type Config struct {
	// RecordsPath is the directory holding invoice records and rendered PDFs.
	RecordsPath string `mapstructure:"records_path"`

	// ExportsPath is the directory CSV/JSON exports are written to.
	ExportsPath string `mapstructure:"exports_path"`

	// Driver selects the backend: "file" (default) or "sqlite".
	Driver string `mapstructure:"driver"`

	// DatabasePath is the SQLite file used when Driver is "sqlite".
	DatabasePath string `mapstructure:"database_path"`
}

// DefaultConfig mirrors the directory layout the CLI has always used.
func DefaultConfig() Config {
	return Config{
		RecordsPath:  "invoices",
		ExportsPath:  "exports",
		Driver:       DriverFile,
		DatabasePath: "invoices/invoices.db",
	}
}

// CheckKey rejects invoice numbers that cannot be used as a record name.
func CheckKey(number string) error {
	switch {
	case strings.TrimSpace(number) == "":
		return apperr.Validation("invoice_number", "is required")
	case number == "." || number == "..":
		return apperr.Validation("invoice_number", "%q is not a valid invoice number", number)
	case strings.ContainsAny(number, "/\\\x00"):
		return apperr.Validation("invoice_number", "%q must not contain path separators", number)
	}
	return nil
}

// RecordName returns the base name shared by an invoice's record files,
// e.g. "invoice_INV-001".
func RecordName(number string) string {
	return fmt.Sprintf("invoice_%s", number)
}

// CheckContext returns the context's error if it is already done.
func CheckContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Encode renders the on-disk form of a record.
func Encode(snap *models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, apperr.Storage("save", snap.InvoiceNumber, fmt.Errorf("failed to encode record: %w", err))
	}
	return data, nil
}

// Decode parses a stored record and checks that it belongs under key.
func Decode(key string, data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.Malformed("load", key, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, apperr.Malformed("load", key, err)
	}
	if snap.InvoiceNumber != key {
		return nil, apperr.Malformed("load", key, fmt.Errorf("record holds invoice %q", snap.InvoiceNumber))
	}
	if snap.Items == nil {
		snap.Items = []models.LineItem{}
	}
	return &snap, nil
}
