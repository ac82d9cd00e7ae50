package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sobhit1/feed-chain/services"
)

// Timeout bounds downstream handlers with a context deadline. Handlers must
// watch r.Context(); once they return after the deadline without having
// written anything, the mapper renders a 504. A non-positive d disables it.
func Timeout(d time.Duration, errs ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				cancel()
				if errors.Is(ctx.Err(), context.DeadlineExceeded) && ww.Status() == 0 {
					errs.WriteError(ww, r, services.ErrRequestTimeout.Wrap(ctx.Err()))
				}
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
