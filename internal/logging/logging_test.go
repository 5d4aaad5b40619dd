package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"filegate/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_DisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(config.LogConfig{Enabled: false, Level: "debug"}, nil, &buf)
	l.Error("parser.fetch.failed")
	assert.Empty(t, buf.String())
}

func TestNew_ConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(config.LogConfig{Enabled: true, Level: "warn"}, nil, &buf)

	l.Info("hidden")
	l.Warn("vision.retry", "attempt", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "vision.retry")
	assert.Contains(t, out, "attempt=2")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(config.LogConfig{Enabled: true, Level: "info", Format: "json"}, nil, &buf)
	l.Info("parser.done", "file", "a.csv")
	assert.Contains(t, buf.String(), `"msg":"parser.done"`)
	assert.Contains(t, buf.String(), `"file":"a.csv"`)
}

func TestNew_CustomSinkRespectsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	sink := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := New(config.LogConfig{Enabled: true, Level: "error"}, sink)

	l.Warn("dropped")
	l.With("component", "batch").Error("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "component=batch")
}
