package logging

import (
	"context"
	"log/slog"
)

type groupKeyContextKey struct{}

// WithGroupKey stores the duplicate-group key being processed in the context
// so nested stage code tags its log lines automatically.
func WithGroupKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, groupKeyContextKey{}, key)
}

// GroupKeyFromContext returns the group key stored in ctx, if any.
func GroupKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(groupKeyContextKey{}).(string)
	return key, ok && key != ""
}

// WithContext derives a logger that carries the context's group key.
// A nil logger yields the no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	if key, ok := GroupKeyFromContext(ctx); ok {
		return logger.With(String("group_key", key))
	}
	return logger
}
