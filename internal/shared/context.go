package shared

import (
	"context"

	"go.uber.org/zap"
)

// Context keys for request-scoped data. Keep types unexported to avoid collisions.
type ctxKey string

const (
	ctxKeyTraceID ctxKey = "trace-id"
	ctxKeyLogger  ctxKey = "logger"
)

// TraceHeader carries the correlation id in both directions.
const TraceHeader = "X-Trace-Id"

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyTraceID, id)
}

// TraceID returns the correlation id bound to ctx, or "".
func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyTraceID).(string)
	return v
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// Logger returns the request logger bound to ctx, falling back to base.
func Logger(ctx context.Context, base *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(*zap.Logger); ok && l != nil {
		return l
	}
	if base == nil {
		return zap.NewNop()
	}
	return base
}
