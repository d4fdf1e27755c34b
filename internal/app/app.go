// Package app assembles the configured store, mailer and archiver into a
// service.Manager shared by the CLI and the server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/archive"
	"github.com/mmynk/invoicer/internal/config"
	"github.com/mmynk/invoicer/internal/mailer"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/storage"
	"github.com/mmynk/invoicer/internal/storage/filestore"
	"github.com/mmynk/invoicer/internal/storage/sqlite"
)

// OpenStore returns the backend named by cfg.Driver.
func OpenStore(cfg storage.Config) (storage.Store, error) {
	switch cfg.Driver {
	case "", storage.DriverFile:
		return filestore.New(cfg)
	case storage.DriverSQLite:
		return sqlite.New(cfg.DatabasePath)
	}
	return nil, apperr.Validation("storage.driver", "unknown driver %q", cfg.Driver)
}

// App holds the long-lived pieces built from a Config.
type App struct {
	Config  *config.Config
	Store   storage.Store
	Manager *service.Manager
}

// New opens the store and builds the manager. Archiving is wired only when a
// bucket is configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	slog.Info("Storage initialized", "driver", cfg.Storage.Driver, "records", cfg.Storage.RecordsPath)

	opts := []service.Option{
		service.WithMailer(mailer.New(mailer.WithTimeout(cfg.SMTP.Timeout())), cfg.SMTP.Credentials()),
	}
	if cfg.Archive.Enabled() {
		archiver, err := archive.NewS3(ctx, cfg.Archive)
		if err != nil {
			store.Close()
			return nil, err
		}
		opts = append(opts, service.WithArchiver(archiver))
		slog.Info("Archiving enabled", "bucket", cfg.Archive.Bucket, "prefix", cfg.Archive.Prefix)
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Manager: service.NewManager(store, cfg.Storage, opts...),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
