package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/shared"
	"github.com/sobhit1/feed-chain/services"
)

// KeySetDeps provides the published verification keys
type KeySetDeps interface {
	ErrorDeps
	PublicJWKS() (jwk.Set, error)
}

// JWKSHandler publishes the public signing key as a JSON Web Key Set so
// other services can verify tokens without sharing key files.
func JWKSHandler(deps KeySetDeps, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := deps.PublicJWKS()
		if err != nil {
			deps.ErrorMapper().WriteError(w, r, services.WrapInternal("build jwks", err))
			return
		}

		body, err := json.Marshal(set)
		if err != nil {
			deps.ErrorMapper().WriteError(w, r, services.WrapInternal("encode jwks", err))
			return
		}

		w.Header().Set("Content-Type", "application/jwk-set+json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			shared.Logger(r.Context(), logger).Warn("failed to write jwks", zap.Error(err))
		}
	}
}
