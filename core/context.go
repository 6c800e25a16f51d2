package core

import "context"

// Context keys for report options
type contextKey string

const suppressProgressKey contextKey = "suppressProgress"

// WithSuppressProgress disables per-period progress logging.
func WithSuppressProgress(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressProgressKey, true)
}

// shouldSuppressProgress returns whether progress logging is disabled
func shouldSuppressProgress(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressProgressKey).(bool)
	return ok && suppress
}
