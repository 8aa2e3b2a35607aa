// Package gglog shapes gg's structured logging. Coordinator and worker
// processes are short-lived CLI invocations, not servers, so every log
// record goes to standard error — standard output is reserved for
// propagating back-end subprocess diagnostics (spec.md §6).
package gglog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alex-ozdemir/gg/internal/ggconfig"
)

// New shapes slog so emitted telemetry matches cfg's level/format.
func New(cfg ggconfig.LoggingConfig) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("gglog: unsupported level %q", cfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("gglog: unsupported format %q", cfg.Format)
	}

	return slog.New(handler).With(slog.String("component", "gg")), nil
}
