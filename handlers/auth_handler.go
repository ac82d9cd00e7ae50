package handlers

import (
	"net/http"

	"github.com/sobhit1/feed-chain/auth"
	"github.com/sobhit1/feed-chain/services"
)

// AuthDeps provides auth handler for route wiring
type AuthDeps interface {
	AuthHandler() *auth.Handler
	ErrorMapper() *ErrorMapper
}

// AuthRefreshHandler returns an http.HandlerFunc for the refresh endpoint
func AuthRefreshHandler(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			h.HandleRefresh(w, r)
			return
		}
		deps.ErrorMapper().WriteError(w, r, services.WrapInternal("authentication not configured", nil))
	}
}

// AuthLogoutHandler returns an http.HandlerFunc for the logout endpoint
func AuthLogoutHandler(deps AuthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := deps.AuthHandler(); h != nil {
			h.HandleLogout(w, r)
			return
		}
		deps.ErrorMapper().WriteError(w, r, services.WrapInternal("authentication not configured", nil))
	}
}
