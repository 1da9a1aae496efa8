package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithRequest returns a child context carrying a request-scoped logger,
// typically pre-tagged with the request id by the HTTP middleware.
func WithRequest(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger. Contexts without one (CLI
// commands, tests) get a no-op logger, never nil.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
