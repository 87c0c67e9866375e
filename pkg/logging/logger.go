// Package logging provides structured logging for MBL components.
//
// Output goes to stderr by default (following Unix conventions for
// CLI tools) in JSON form, built on the standard library slog
// package. The runtime core itself reports through its observability
// hook; this logger is a client of that hook, plus the driver's own
// diagnostics.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to
	// "info".
	Level string

	// Service tags every record, e.g. "repl" or "runner".
	Service string

	// Writer defaults to stderr.
	Writer io.Writer
}

// New builds a structured logger from the config.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}

// Default returns a stderr logger at info level.
func Default() *slog.Logger {
	return New(Config{})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
