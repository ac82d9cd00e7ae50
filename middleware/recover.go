package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/internal/shared"
)

// Recover converts a panic in a downstream handler into a 500 payload. If
// the handler already started the response the payload cannot be sent, so
// the failure is logged and counted instead.
func Recover(errs ErrorWriter, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := panicError(rec)
				if ww.Status() != 0 {
					logLatePanic(r, ww.Status(), err, metrics, logger)
					return
				}
				errs.WriteError(ww, r, err)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func logLatePanic(r *http.Request, sent int, err error, metrics *observability.Metrics, logger *zap.Logger) {
	traceID := shared.TraceID(r.Context())
	if traceID == "" {
		traceID = "N/A"
	}
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("path", r.URL.Path),
		zap.Int("status", http.StatusInternalServerError),
		zap.Int("status_sent", sent),
		zap.String("trace_id", traceID),
		zap.Error(err),
	}
	if st, ok := err.(interface{ StackTrace() pkgerrors.StackTrace }); ok {
		fields = append(fields, zap.String("stack", fmt.Sprintf("%+v", st.StackTrace())))
	}
	shared.Logger(r.Context(), logger).Error("panic after response started", fields...)
	metrics.RecordErrorResponse(http.StatusInternalServerError)
}

func panicError(rec interface{}) error {
	if e, ok := rec.(error); ok {
		return pkgerrors.WithStack(fmt.Errorf("panic: %w", e))
	}
	return pkgerrors.Errorf("panic: %v", rec)
}
