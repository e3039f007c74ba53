// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(what string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", what, Mask(err.Error()))
}

// ParseLevel maps a config level name to a pterm level. Unknown names mean info.
func ParseLevel(name string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled":
		return pterm.LogLevelDisabled
	}
	return pterm.LogLevelInfo
}

// NewLogger returns a slog logger that prints through pterm to w. Attribute values
// are masked.
func NewLogger(w io.Writer, level string) *slog.Logger {
	pl := pterm.DefaultLogger.
		WithLevel(ParseLevel(level)).
		WithWriter(w)
	return slog.New(&maskingHandler{next: pterm.NewSlogHandler(pl)})
}

// maskingHandler masks string attributes before they reach the terminal.
type maskingHandler struct {
	next slog.Handler
}

func (h *maskingHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *maskingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, Mask(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(maskAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *maskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &maskingHandler{next: h.next.WithAttrs(masked)}
}

func (h *maskingHandler) WithGroup(name string) slog.Handler {
	return &maskingHandler{next: h.next.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, Mask(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, Mask(err.Error()))
		}
	}
	return a
}
