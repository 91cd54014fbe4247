package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	return withStr(ctx, "component", component)
}

// WithURL creates a child logger with a url field
func WithURL(ctx context.Context, url string) context.Context {
	return withStr(ctx, "url", url)
}

// WithBatchID creates a child logger with a batch_id field
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return withStr(ctx, "batch_id", batchID)
}

func withStr(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str(key, value).Logger()
	return WithContext(ctx, childLogger)
}
