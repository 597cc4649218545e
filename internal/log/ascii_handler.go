package log

import (
	"context"
	"io"
	"log/slog"

	"github.com/crawlmd/crawlmd/internal/sanitize"
)

// ASCIIHandler wraps an slog.Handler and sanitizes record messages and
// string attribute values into the safe ASCII output encoding.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components keep accepting a plain *slog.Logger
type ASCIIHandler struct {
	handler slog.Handler
}

// NewASCIIHandler creates an ASCIIHandler wrapping the given handler.
// If handler is nil, slog.Default()'s handler is used.
func NewASCIIHandler(handler slog.Handler) *ASCIIHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &ASCIIHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ASCIIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record and passes it to the underlying handler.
func (h *ASCIIHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, sanitize.Text(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// WithAttrs returns a new handler with sanitized attributes added.
func (h *ASCIIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &ASCIIHandler{handler: h.handler.WithAttrs(clean)}
}

// WithGroup returns a new handler with the given group name.
func (h *ASCIIHandler) WithGroup(name string) slog.Handler {
	return &ASCIIHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes one attribute, recursing into groups.
func sanitizeAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		clean := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			clean[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: sanitize.Text(a.Key), Value: slog.GroupValue(clean...)}
	case slog.KindString:
		return slog.String(sanitize.Text(a.Key), sanitize.Text(a.Value.String()))
	default:
		return a
	}
}

// NewLogger creates a logger writing sanitized text records to w.
// Verbose selects LevelDebug; otherwise LevelWarn, so normal operation
// stays quiet on stderr.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewASCIIHandler(handler))
}
