// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"github.com/lmittmann/tint"
)

// setupLogger installs the process-wide slog logger.
func setupLogger(cfg *config.LogConfig) {
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, cfg)))
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

// newLogHandler returns a JSON handler for "json" and a colored tint handler
// otherwise. Debug logging records the source location.
func newLogHandler(w io.Writer, cfg *config.LogConfig) slog.Handler {
	level := parseLevel(cfg.Level)
	debug := level == slog.LevelDebug

	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: debug})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  debug,
		TimeFormat: time.DateTime,
		NoColor:    w != os.Stdout,
	})
}
