package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// LogHandlerDecorator wraps a slog.Handler and injects attributes from
// context. Extraction runs only when a record is actually handled, so
// registering extractors costs nothing on suppressed levels.
type LogHandlerDecorator struct {
	inner   slog.Handler
	extract []ContextExtractor
}

// NewLogHandlerDecorator creates a new decorated handler.
// Nil extractors are filtered out.
func NewLogHandlerDecorator(inner slog.Handler, extractors ...ContextExtractor) slog.Handler {
	h := &LogHandlerDecorator{inner: inner}
	for _, ex := range extractors {
		if ex != nil {
			h.extract = append(h.extract, ex)
		}
	}
	return h
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle runs the extractors against ctx, appends whatever they produce
// to the record, and delegates. Extraction happens per log call, so
// request-scoped values like request and tenant IDs are always current.
func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extract {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.inner.Handle(ctx, rec)
}

// WithAttrs pushes the static attributes down to the wrapped handler,
// keeping the extractors on the outside.
func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandlerDecorator{inner: h.inner.WithAttrs(attrs), extract: h.extract}
}

// WithGroup pushes the group down to the wrapped handler, keeping the
// extractors on the outside.
func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return &LogHandlerDecorator{inner: h.inner.WithGroup(name), extract: h.extract}
}
