// Package logging configures structured logging with log/slog.
//
// Usage:
//
//	logging.Setup()                                  // colored, level from LOG_LEVEL env
//	logging.SetupWithLevel(slog.LevelDebug)          // colored, explicit level
//	logging.Configure(os.Stderr, "json", "", "info") // servers: JSON lines
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	SetupWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, "text", level)))
}

// Configure installs the default logger. format is "json" or "text". The
// level comes from Resolve.
func Configure(w io.Writer, format, level, fallback string) {
	slog.SetDefault(slog.New(NewHandler(w, format, Resolve(level, fallback))))
}

// Resolve picks the log level: LOG_LEVEL when set, then the configured
// level, then fallback.
func Resolve(level, fallback string) slog.Level {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return ParseLevel(env)
	}
	if strings.TrimSpace(level) != "" {
		return ParseLevel(level)
	}
	return ParseLevel(fallback)
}

// NewHandler returns a tint handler for "text" and a JSON handler for "json".
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
	})
}

// ParseLevel maps debug, warn and error to slog levels; anything else is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
