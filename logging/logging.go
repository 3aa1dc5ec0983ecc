// Package logging wires log/slog for the preset server and terminal editor.
// Components get their logger from For and never hold a handler themselves.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// level is shared by every handler this package installs.
var level = new(slog.LevelVar)

// Init sends logs to stderr. See InitWriter.
func Init(levelStr, format string) {
	InitWriter(os.Stderr, levelStr, format)
}

// InitWriter makes a text or JSON handler on w the process default. An
// unrecognised format means text; an unrecognised level means info. The
// terminal editor points w at a file so log lines stay off its screen.
func InitWriter(w io.Writer, levelStr, format string) {
	level.Set(ParseLevel(levelStr))
	slog.SetDefault(slog.New(newHandler(w, format)))
}

func newHandler(w io.Writer, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// For names a component. Records carry component=<name> and are handed to
// slog.Default() when written, not when For is called, so a package-level
// logger still reaches a handler installed later.
func For(component string) *slog.Logger {
	return slog.New(&componentHandler{component: component})
}

// SetLevel moves the threshold for all loggers.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel reads debug, info, warn (or warning) and error, ignoring case.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type componentHandler struct {
	component string
	attrs     []slog.Attr
}

func (h *componentHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return slog.Default().Handler().Enabled(ctx, l)
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("component", h.component))
	r.AddAttrs(h.attrs...)
	return slog.Default().Handler().Handle(ctx, r)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &componentHandler{
		component: h.component,
		attrs:     append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// No caller groups attributes, so groups collapse into the top level.
func (h *componentHandler) WithGroup(string) slog.Handler {
	return h
}
