package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/testutil"
	"github.com/sobhit1/feed-chain/internal/token"
	"github.com/sobhit1/feed-chain/middleware"
)

type fakeDeps struct {
	mapper *ErrorMapper
	jwks   func() (jwk.Set, error)
}

func (d fakeDeps) ErrorMapper() *ErrorMapper    { return d.mapper }
func (d fakeDeps) PublicJWKS() (jwk.Set, error) { return d.jwks() }

func newFakeDeps() fakeDeps {
	return fakeDeps{mapper: NewErrorMapper(zap.NewNop(), nil, false)}
}

func TestGetCurrentUserHandler(t *testing.T) {
	deps := newFakeDeps()

	t.Run("returns 200 with identity when authenticated", func(t *testing.T) {
		issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		claims := &token.Claims{
			ID:        "jti-1",
			Subject:   "user-123",
			Issuer:    "feed-chain",
			Roles:     []string{"admin", "user"},
			IssuedAt:  issued,
			ExpiresAt: issued.Add(15 * time.Minute),
			Type:      token.TypeAccess,
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()

		GetCurrentUserHandler(deps)(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Data CurrentUserResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "user-123", body.Data.Sub)
		assert.Equal(t, []string{"admin", "user"}, body.Data.Roles)
		assert.Equal(t, "jti-1", body.Data.TokenID)
		assert.True(t, body.Data.ExpiresAt.Equal(issued.Add(15*time.Minute)))
	})

	t.Run("roles render as an empty list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req = req.WithContext(middleware.WithClaims(req.Context(), &token.Claims{Subject: "u", Type: token.TypeAccess}))
		rec := httptest.NewRecorder()

		GetCurrentUserHandler(deps)(rec, req)
		assert.Contains(t, rec.Body.String(), `"roles":[]`)
	})

	t.Run("returns 401 when claims missing in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		GetCurrentUserHandler(deps)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestJWKSHandler(t *testing.T) {
	kp := testutil.KeyPair(t)
	deps := newFakeDeps()
	deps.jwks = kp.PublicJWKS

	rec := httptest.NewRecorder()
	JWKSHandler(deps, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/jwk-set+json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("Cache-Control"))

	set, err := jwk.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	key, ok := set.Key(0)
	require.True(t, ok)
	kid, ok := key.KeyID()
	require.True(t, ok)
	assert.Equal(t, kp.KeyID(), kid)
	assert.NotContains(t, rec.Body.String(), `"d":`, "private exponent must never be published")
}

func TestJWKSHandler_Failure(t *testing.T) {
	deps := newFakeDeps()
	deps.jwks = func() (jwk.Set, error) { return nil, errors.New("no key") }

	rec := httptest.NewRecorder()
	JWKSHandler(deps, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFallbackHandlers(t *testing.T) {
	deps := newFakeDeps()

	rec := httptest.NewRecorder()
	NotFoundHandler(deps)(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No handler found for GET /nope")

	rec = httptest.NewRecorder()
	MethodNotAllowedHandler(deps)(rec, httptest.NewRequest(http.MethodPatch, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
