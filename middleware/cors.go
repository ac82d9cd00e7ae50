package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/internal/shared"
	"github.com/sobhit1/feed-chain/services"
)

// CORSMethods are the only methods offered to cross-origin callers.
var CORSMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodOptions,
}

// CORSConfig configures the CORS gate.
type CORSConfig struct {
	// AllowedOrigins lists exact origins ("scheme://host[:port]"). "*"
	// admits every origin.
	AllowedOrigins []string
	// MaxAge is how long, in seconds, a preflight result may be cached.
	MaxAge int
}

// CORS rejects cross-origin requests from origins outside the allow-list
// with a 403 payload, before any auth work. Admitted requests get the
// usual CORS response headers and preflights are answered directly.
func CORS(cfg CORSConfig, errs ErrorWriter, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	allowAll := false
	for _, o := range cfg.AllowedOrigins {
		o = normalizeOrigin(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	isAllowed := func(origin string) bool {
		if allowAll {
			return true
		}
		_, ok := allowed[normalizeOrigin(origin)]
		return ok
	}

	headers := cors.Handler(cors.Options{
		AllowOriginFunc:  func(_ *http.Request, origin string) bool { return isAllowed(origin) },
		AllowedMethods:   CORSMethods,
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{shared.TraceHeader},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})

	return func(next http.Handler) http.Handler {
		withHeaders := headers(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || sameOrigin(r, origin) {
				next.ServeHTTP(w, r)
				return
			}
			if !isAllowed(origin) {
				metrics.RecordCORSRejection()
				shared.Logger(r.Context(), logger).Warn("cors origin rejected",
					zap.String("origin", origin),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				errs.WriteError(w, r, services.ErrInvalidCORSRequest)
				return
			}
			withHeaders.ServeHTTP(w, r)
		})
	}
}

func sameOrigin(r *http.Request, origin string) bool {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return normalizeOrigin(origin) == normalizeOrigin(scheme+"://"+r.Host)
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}
