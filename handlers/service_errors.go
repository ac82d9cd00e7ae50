package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/internal/shared"
	"github.com/sobhit1/feed-chain/services"
	"github.com/sobhit1/feed-chain/utils"
)

const (
	msgValidationFailed    = "Validation failed"
	msgConstraintViolation = "Constraint validation failed"
	msgUnexpected          = "An unexpected error occurred"

	// maxTraceFrames bounds the stack excerpt exposed in development.
	maxTraceFrames = 5
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// ErrorMapper turns any error into the APIError payload. It is the single
// place where failures become HTTP responses.
type ErrorMapper struct {
	logger            *zap.Logger
	metrics           *observability.Metrics
	exposeDiagnostics bool
	now               func() time.Time
}

// NewErrorMapper creates the mapper. exposeDiagnostics adds exception
// type, message and a short stack to 500 payloads and must only be set in
// development environments.
func NewErrorMapper(logger *zap.Logger, metrics *observability.Metrics, exposeDiagnostics bool) *ErrorMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorMapper{
		logger:            logger,
		metrics:           metrics,
		exposeDiagnostics: exposeDiagnostics,
		now:               time.Now,
	}
}

// WithClock overrides the timestamp source, for tests.
func (m *ErrorMapper) WithClock(now func() time.Time) *ErrorMapper {
	cp := *m
	cp.now = now
	return &cp
}

// WriteError renders err and writes it to w.
func (m *ErrorMapper) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := m.Render(r, err)
	if writeErr := utils.WriteAPIError(w, apiErr); writeErr != nil {
		m.logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// Render maps err to its payload, logs it and counts it.
func (m *ErrorMapper) Render(r *http.Request, err error) utils.APIError {
	status, message, details := m.classify(err)

	traceID := shared.TraceID(r.Context())
	if traceID != "" {
		if details == nil {
			details = make(map[string]string, 1)
		}
		details["traceId"] = traceID
	}

	m.log(r, status, err, traceID)
	m.metrics.RecordErrorResponse(status)

	return utils.NewAPIError(m.now(), status, message, r.URL.Path, details)
}

func (m *ErrorMapper) classify(err error) (int, string, map[string]string) {
	if utils.IsValidationError(err) {
		return http.StatusUnprocessableEntity, msgValidationFailed, copyDetails(utils.GetValidationFields(err))
	}
	if utils.IsConstraintViolation(err) {
		return http.StatusBadRequest, msgConstraintViolation, copyDetails(utils.GetViolations(err))
	}

	switch {
	case services.IsNotFoundError(err):
		return http.StatusNotFound, services.GetErrorMessage(err), nil
	case services.IsBadRequestError(err):
		return http.StatusBadRequest, services.GetErrorMessage(err), nil
	case services.IsValidationError(err):
		return http.StatusUnprocessableEntity, msgValidationFailed, copyDetails(services.GetErrorDetails(err))
	case services.IsConstraintViolationError(err):
		return http.StatusBadRequest, msgConstraintViolation, copyDetails(services.GetErrorDetails(err))
	case services.IsUnauthorizedError(err):
		return http.StatusUnauthorized, services.GetErrorMessage(err), nil
	case services.IsForbiddenError(err):
		return http.StatusForbidden, services.GetErrorMessage(err), nil
	case services.IsMethodNotAllowedError(err):
		return http.StatusMethodNotAllowed, services.GetErrorMessage(err), nil
	case services.IsTimeoutError(err):
		return http.StatusGatewayTimeout, services.GetErrorMessage(err), nil
	}

	if !m.exposeDiagnostics {
		return http.StatusInternalServerError, msgUnexpected, nil
	}
	return http.StatusInternalServerError, msgUnexpected, diagnostics(err)
}

func (m *ErrorMapper) log(r *http.Request, status int, err error, traceID string) {
	if traceID == "" {
		traceID = "N/A"
	}
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("trace_id", traceID),
		zap.Error(err),
	}
	logger := shared.Logger(r.Context(), m.logger)

	if status >= http.StatusInternalServerError {
		if st := findStack(err); st != nil {
			fields = append(fields, zap.String("stack", fmt.Sprintf("%+v", st)))
		}
		logger.Error("unhandled error", fields...)
		return
	}
	logger.Warn("request failed", fields...)
}

func diagnostics(err error) map[string]string {
	if err == nil {
		return nil
	}
	d := map[string]string{
		"exception": fmt.Sprintf("%T", pkgerrors.Cause(err)),
		"message":   err.Error(),
	}
	if st := findStack(err); st != nil {
		d["trace"] = formatFrames(st)
	}
	return d
}

// findStack returns the deepest stack recorded by pkg/errors in err's chain.
func findStack(err error) pkgerrors.StackTrace {
	var deepest pkgerrors.StackTrace
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			deepest = st.StackTrace()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return deepest
}

func formatFrames(st pkgerrors.StackTrace) string {
	if len(st) > maxTraceFrames {
		st = st[:maxTraceFrames]
	}
	lines := make([]string, 0, len(st))
	for _, f := range st {
		lines = append(lines, fmt.Sprintf("%n(%s:%d)", f, f, f))
	}
	return strings.Join(lines, "\n")
}

func copyDetails(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
