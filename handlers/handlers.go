package handlers

import (
	"net/http"
	"time"

	"github.com/sobhit1/feed-chain/middleware"
	"github.com/sobhit1/feed-chain/services"
	"github.com/sobhit1/feed-chain/utils"
)

// ErrorDeps provides the error mapper for route wiring
type ErrorDeps interface {
	ErrorMapper() *ErrorMapper
}

// CurrentUserResponse is the response body for GET /api/v1/me
type CurrentUserResponse struct {
	Sub       string    `json:"sub"`
	Roles     []string  `json:"roles"`
	TokenID   string    `json:"tokenId,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GetCurrentUserHandler returns the caller's identity from the verified token
func GetCurrentUserHandler(deps ErrorDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.GetClaimsFromContext(r.Context())
		if claims == nil {
			deps.ErrorMapper().WriteError(w, r, services.ErrAuthenticationRequired)
			return
		}
		roles := claims.Roles
		if roles == nil {
			roles = []string{}
		}
		_ = utils.WriteOK(w, CurrentUserResponse{
			Sub:       claims.Subject,
			Roles:     roles,
			TokenID:   claims.ID,
			Issuer:    claims.Issuer,
			IssuedAt:  claims.IssuedAt,
			ExpiresAt: claims.ExpiresAt,
		})
	}
}

// NotFoundHandler renders unmatched routes through the error mapper
func NotFoundHandler(deps ErrorDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.ErrorMapper().WriteError(w, r, services.NotFound("No handler found for "+r.Method+" "+r.URL.Path))
	}
}

// MethodNotAllowedHandler renders a 405 through the error mapper
func MethodNotAllowedHandler(deps ErrorDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.ErrorMapper().WriteError(w, r, services.MethodNotAllowed(r.Method, r.URL.Path))
	}
}
