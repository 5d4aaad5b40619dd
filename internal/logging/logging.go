// Package logging builds the application's slog logger from configuration.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"filegate/internal/config"
)

// ParseLevel maps a level name to a slog level, defaulting to info.
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

// New returns a logger for cfg. A disabled config yields a no-op logger; a
// non-nil sink receives records at or above the configured level; otherwise
// records go to stderr as console text or JSON.
func New(cfg config.LogConfig, sink slog.Handler) *slog.Logger {
	return newLogger(cfg, sink, os.Stderr)
}

func newLogger(cfg config.LogConfig, sink slog.Handler, w io.Writer) *slog.Logger {
	if !cfg.Enabled {
		return Nop()
	}
	level := ParseLevel(cfg.Level)
	if sink != nil {
		return slog.New(&levelFilter{min: level, next: sink})
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// levelFilter drops records below min before they reach a user-supplied sink.
type levelFilter struct {
	min  slog.Level
	next slog.Handler
}

func (h *levelFilter) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.min && h.next.Enabled(ctx, l)
}

func (h *levelFilter) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *levelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilter{min: h.min, next: h.next.WithAttrs(attrs)}
}

func (h *levelFilter) WithGroup(name string) slog.Handler {
	return &levelFilter{min: h.min, next: h.next.WithGroup(name)}
}
