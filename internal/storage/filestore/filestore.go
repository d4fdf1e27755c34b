// Package filestore stores each invoice as one JSON document,
// <records>/invoice_<number>.json.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// Ensure FileStore implements storage.Store
var _ storage.Store = (*FileStore)(nil)

const ext = ".json"

// FileStore implements storage.Store on a directory of JSON files.
type FileStore struct {
	dir string
}

// New creates the records directory if needed and returns a store over it.
func New(cfg storage.Config) (*FileStore, error) {
	if cfg.RecordsPath == "" {
		return nil, apperr.Validation("records_path", "is required")
	}
	if err := os.MkdirAll(cfg.RecordsPath, 0755); err != nil {
		return nil, apperr.Storage("open", "", fmt.Errorf("failed to create records directory: %w", err))
	}
	return &FileStore{dir: cfg.RecordsPath}, nil
}

// Dir returns the records directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the record file for number.
func (s *FileStore) Path(number string) string {
	return filepath.Join(s.dir, storage.RecordName(number)+ext)
}

func (s *FileStore) Close() error { return nil }

// Save writes the record through a temporary file and renames it into place,
// so an interrupted write never leaves a truncated record behind.
func (s *FileStore) Save(ctx context.Context, snap *models.Snapshot) (string, error) {
	if err := storage.CheckContext(ctx, "save"); err != nil {
		return "", err
	}
	if err := storage.CheckKey(snap.InvoiceNumber); err != nil {
		return "", err
	}

	data, err := storage.Encode(snap)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".invoice-*.tmp")
	if err != nil {
		return "", apperr.Storage("save", snap.InvoiceNumber, fmt.Errorf("failed to create temp file: %w", err))
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", apperr.Storage("save", snap.InvoiceNumber, fmt.Errorf("failed to write record: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return "", apperr.Storage("save", snap.InvoiceNumber, fmt.Errorf("failed to close record: %w", err))
	}

	path := s.Path(snap.InvoiceNumber)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", apperr.Storage("save", snap.InvoiceNumber, fmt.Errorf("failed to move record into place: %w", err))
	}

	slog.Debug("Invoice record saved", "invoice_number", snap.InvoiceNumber, "path", path)
	return path, nil
}

// Load reads and decodes the record for number.
func (s *FileStore) Load(ctx context.Context, number string) (*models.Snapshot, error) {
	if err := storage.CheckContext(ctx, "load"); err != nil {
		return nil, err
	}
	if err := storage.CheckKey(number); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(number))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("load", number)
	}
	if err != nil {
		return nil, apperr.Storage("load", number, err)
	}

	return storage.Decode(number, data)
}

// ListKeys returns the invoice numbers of every record file, sorted.
// A missing records directory is an empty store.
func (s *FileStore) ListKeys(ctx context.Context) ([]string, error) {
	if err := storage.CheckContext(ctx, "list"); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, apperr.Storage("list", "", err)
	}

	prefix := storage.RecordName("")
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the record file. Rendered PDFs are left alone.
func (s *FileStore) Delete(ctx context.Context, number string) error {
	if err := storage.CheckContext(ctx, "delete"); err != nil {
		return err
	}
	if err := storage.CheckKey(number); err != nil {
		return err
	}

	err := os.Remove(s.Path(number))
	if errors.Is(err, fs.ErrNotExist) {
		return apperr.NotFound("delete", number)
	}
	if err != nil {
		return apperr.Storage("delete", number, err)
	}
	return nil
}
