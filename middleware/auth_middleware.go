package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/internal/policy"
	"github.com/sobhit1/feed-chain/internal/shared"
	"github.com/sobhit1/feed-chain/internal/token"
	"github.com/sobhit1/feed-chain/services"
)

// AccessTokenCookie carries the access token for browser clients. The
// Authorization header takes precedence when both are present.
const AccessTokenCookie = "access_token"

// TokenDecoder verifies a raw token. Implemented by *token.Codec.
type TokenDecoder interface {
	Decode(raw string) (*token.Claims, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	decoder TokenDecoder
	routes  *policy.RoutePolicy
	errors  ErrorWriter
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(decoder TokenDecoder, routes *policy.RoutePolicy, errors ErrorWriter, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		decoder: decoder,
		routes:  routes,
		errors:  errors,
		metrics: metrics,
		logger:  logger,
	}
}

// Authenticate lets public paths through and requires a valid access token
// everywhere else. Rejections never say why the token was refused.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := shared.Logger(ctx, m.logger)

		if match := m.routes.Explain(r.URL.Path); match.Classification == policy.Public {
			m.record(r, Decision{Kind: DecisionPublic})
			logger.Debug("public route",
				zap.String("path", r.URL.Path),
				zap.String("pattern", match.Pattern))
			next.ServeHTTP(w, r.WithContext(WithDecision(ctx, Decision{Kind: DecisionPublic})))
			return
		}

		raw := extractToken(r)
		if raw == "" {
			logger.Warn("missing token", zap.String("path", r.URL.Path))
			m.reject(w, r, "missing_token", services.ErrAuthenticationRequired)
			return
		}

		claims, err := m.decoder.Decode(raw)
		if err != nil {
			kind := string(token.KindOf(err))
			if kind == "" {
				kind = "unknown"
			}
			m.metrics.RecordTokenFailure(kind)
			logger.Warn("token validation failed",
				zap.String("path", r.URL.Path),
				zap.String("kind", kind),
				zap.Error(err))
			m.reject(w, r, kind, services.ErrAuthenticationRequired.Wrap(err))
			return
		}

		if err := policy.RequireTokenType(claims, token.TypeAccess); err != nil {
			m.metrics.RecordTokenFailure("wrong_type")
			logger.Warn("token type rejected",
				zap.String("path", r.URL.Path),
				zap.String("token_type", claims.Type.String()))
			m.reject(w, r, "wrong_type", services.ErrAuthenticationRequired.Wrap(err))
			return
		}

		decision := Decision{Kind: DecisionAuthenticated, Claims: claims}
		m.record(r, decision)

		logger.Debug("authentication successful",
			zap.String("sub", claims.Subject),
			zap.Strings("roles", claims.Roles))

		ctx = WithClaims(ctx, claims)
		ctx = WithDecision(ctx, decision)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole is a middleware that requires a specific role
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := shared.Logger(ctx, m.logger)

			claims := GetClaimsFromContext(ctx)
			if claims == nil {
				logger.Error("claims not found in context")
				m.errors.WriteError(w, r, services.ErrAuthenticationRequired)
				return
			}

			if !claims.HasRole(role) {
				logger.Warn("insufficient permissions",
					zap.String("required_role", role),
					zap.Strings("roles", claims.Roles))
				m.errors.WriteError(w, r, services.ErrInsufficientPermissions)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	m.record(r, Decision{Kind: DecisionRejected, Reason: reason})
	m.errors.WriteError(w, r, err)
}

func (m *AuthMiddleware) record(r *http.Request, d Decision) {
	m.metrics.RecordAuthDecision(d.Kind.String())
	subject := ""
	if d.Claims != nil {
		subject = d.Claims.Subject
	}
	observability.AnnotateAuth(r.Context(), d.Kind.String(), subject, shared.TraceID(r.Context()))
}

// extractToken extracts the JWT from the Authorization header ("Bearer TOKEN")
// or the access_token cookie.
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
