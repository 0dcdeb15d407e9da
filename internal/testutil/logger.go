// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger returns a debug-level logger whose records go to t.Log, so
// they show up only for failing tests or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(newHandler(tbWriter{t}))
}

// NewBufferLogger returns a debug-level logger writing one text record per
// line to buf, for tests that assert on log output.
func NewBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(newHandler(buf))
}

func newHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: dropTime,
	})
}

// dropTime removes the record timestamp so output is stable across runs.
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

type tbWriter struct {
	t testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
