package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/internal/shared"
)

const maxTraceIDLength = 128

var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:\-]+$`)

// Correlation binds a trace id to every request. A well-formed inbound
// X-Trace-Id is reused; anything else is replaced with a fresh UUID. The id
// is echoed on the response and attached to the request logger.
func Correlation(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(shared.TraceHeader)
			if !validTraceID(traceID) {
				traceID = uuid.NewString()
			}

			w.Header().Set(shared.TraceHeader, traceID)

			ctx := shared.WithTraceID(r.Context(), traceID)
			ctx = shared.WithLogger(ctx, observability.ForRequest(ctx, logger))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validTraceID(id string) bool {
	return id != "" && len(id) <= maxTraceIDLength && traceIDPattern.MatchString(id)
}
