// Package observability provides structured logging and metrics for the
// gateway.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - request loggers carrying the correlation id as trace_id
//   - Prometheus counters for auth decisions, token failures and error replies
//   - OpenTelemetry span annotation for auth decisions
package observability
