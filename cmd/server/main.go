package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/invoicer/internal/app"
	"github.com/mmynk/invoicer/internal/config"
	"github.com/mmynk/invoicer/internal/server"
	"github.com/mmynk/invoicer/pkg/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("INVOICER_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Configure(os.Stdout, cfg.Log.Format, cfg.Log.Level, "info")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := server.Run(ctx, a.Manager, cfg.Server); err != nil {
		slog.Error("Server failed", "error", err)
		a.Close()
		os.Exit(1)
	}
}
