// Package testutil provides shared helpers for querykit tests.
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger routed through t.Log, so log
// lines interleave with test output and surface only on failure or -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(&logWriter{tb: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type logWriter struct {
	tb testing.TB
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	// slog terminates records with \n and t.Log adds its own; trim to
	// avoid blank lines between records.
	w.tb.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
