package middleware

import (
	"context"
	"net/http"

	"github.com/sobhit1/feed-chain/internal/token"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for verified token claims
	ClaimsKey contextKey = "claims"

	// DecisionKey is the context key for the auth decision
	DecisionKey contextKey = "auth_decision"
)

// ErrorWriter renders a failure as the API error payload. Implemented by
// handlers.ErrorMapper; declared here so the pipeline does not depend on
// the handlers package.
type ErrorWriter interface {
	WriteError(w http.ResponseWriter, r *http.Request, err error)
}

// DecisionKind is the outcome of the auth stage.
type DecisionKind int

const (
	DecisionRejected DecisionKind = iota
	DecisionPublic
	DecisionAuthenticated
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionPublic:
		return "public"
	case DecisionAuthenticated:
		return "authenticated"
	default:
		return "rejected"
	}
}

// Decision is the per-request auth outcome. Claims is set only when Kind is
// DecisionAuthenticated; Reason only when it is DecisionRejected.
type Decision struct {
	Kind   DecisionKind
	Claims *token.Claims
	Reason string
}

// GetClaimsFromContext retrieves verified claims from context
func GetClaimsFromContext(ctx context.Context) *token.Claims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if claims, ok := val.(*token.Claims); ok {
			return claims
		}
	}
	return nil
}

// WithClaims adds verified claims to the context
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetDecisionFromContext retrieves the auth decision from context
func GetDecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(DecisionKey).(Decision)
	return d, ok
}

// WithDecision adds the auth decision to the context
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, DecisionKey, d)
}
