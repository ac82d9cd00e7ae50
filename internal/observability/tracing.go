package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "api-gateway"

// InstrumentHandler wraps h with an OpenTelemetry server span per request.
// Spans go to the global tracer provider; without one configured they are
// no-ops.
func InstrumentHandler(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, serviceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// AnnotateAuth records the auth decision on the active span.
func AnnotateAuth(ctx context.Context, outcome, subject, traceID string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("auth.outcome", outcome),
		attribute.String("gateway.trace_id", traceID),
	}
	if subject != "" {
		attrs = append(attrs, attribute.String("enduser.id", subject))
	}
	span.SetAttributes(attrs...)
}
