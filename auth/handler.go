package auth

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/internal/audit"
	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/internal/policy"
	"github.com/sobhit1/feed-chain/internal/shared"
	"github.com/sobhit1/feed-chain/internal/token"
	"github.com/sobhit1/feed-chain/middleware"
	"github.com/sobhit1/feed-chain/services"
	"github.com/sobhit1/feed-chain/utils"
)

const (
	// AccessCookieName carries the access token for browser clients.
	AccessCookieName = middleware.AccessTokenCookie
	// RefreshCookieName carries the refresh token. It is scoped to the
	// refresh endpoint so it never travels with ordinary API calls.
	RefreshCookieName = "refresh_token"

	RefreshPath = "/api/v1/auth/refresh"
	LogoutPath  = "/api/v1/auth/logout"
)

// SessionCodec issues and verifies session tokens. Implemented by *token.Codec.
type SessionCodec interface {
	Decode(raw string) (*token.Claims, error)
	IssuePair(subject string, roles []string) (*token.Pair, error)
	TTL(typ token.Type) time.Duration
}

// CookieConfig controls the attributes of the token cookies.
type CookieConfig struct {
	Secure bool
}

// TokenResponse is returned by a successful refresh.
type TokenResponse struct {
	TokenType   string `json:"tokenType"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Handler serves the session endpoints: refresh-token rotation and logout.
type Handler struct {
	codec   SessionCodec
	errors  middleware.ErrorWriter
	cookies CookieConfig
	metrics *observability.Metrics
	audit   *audit.Recorder
	logger  *zap.Logger
}

// NewHandler creates a new session handler.
func NewHandler(codec SessionCodec, errors middleware.ErrorWriter, cookies CookieConfig, metrics *observability.Metrics, recorder *audit.Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		codec:   codec,
		errors:  errors,
		cookies: cookies,
		metrics: metrics,
		audit:   recorder,
		logger:  logger,
	}
}

// HandleRefresh exchanges a refresh token for a new access/refresh pair.
// The presented refresh token is read from its cookie, or from the JSON
// body for non-browser clients.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := shared.Logger(r.Context(), h.logger)

	raw, err := h.refreshToken(r)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	if raw == "" {
		logger.Warn("refresh token missing")
		h.deny(r, "missing_token")
		h.errors.WriteError(w, r, services.ErrInvalidRefreshToken)
		return
	}

	claims, err := h.codec.Decode(raw)
	if err != nil {
		h.metrics.RecordTokenFailure(string(token.KindOf(err)))
		logger.Warn("refresh token rejected", zap.Error(err))
		h.deny(r, string(token.KindOf(err)))
		h.errors.WriteError(w, r, services.ErrInvalidRefreshToken.Wrap(err))
		return
	}
	if err := policy.RequireTokenType(claims, token.TypeRefresh); err != nil {
		h.metrics.RecordTokenFailure("wrong_type")
		logger.Warn("refresh with non-refresh token", zap.String("token_type", claims.Type.String()))
		h.deny(r, "wrong_type")
		h.errors.WriteError(w, r, services.ErrInvalidRefreshToken.Wrap(err))
		return
	}

	pair, err := h.codec.IssuePair(claims.Subject, claims.Roles)
	if err != nil {
		h.errors.WriteError(w, r, services.WrapInternal("issue token pair", err))
		return
	}

	h.setTokenCookies(w, pair)
	w.Header().Set("Cache-Control", "no-store")

	logger.Info("session refreshed", zap.String("sub", claims.Subject))
	h.audit.Record(r.Context(), audit.Event{
		Action:   audit.ActionRefresh,
		Outcome:  audit.OutcomeSuccess,
		Subject:  claims.Subject,
		TokenID:  claims.ID,
		Path:     r.URL.Path,
		RemoteIP: r.RemoteAddr,
	})

	_ = utils.WriteOK(w, TokenResponse{
		TokenType:   "Bearer",
		AccessToken: pair.AccessToken,
		ExpiresIn:   int64(h.codec.TTL(token.TypeAccess) / time.Second),
	})
}

// HandleLogout expires both token cookies. Tokens already issued stay
// valid until they expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie(AccessCookieName, "", "/", -1))
	http.SetCookie(w, h.cookie(RefreshCookieName, "", RefreshPath, -1))
	h.audit.Record(r.Context(), audit.Event{
		Action:   audit.ActionLogout,
		Outcome:  audit.OutcomeSuccess,
		Path:     r.URL.Path,
		RemoteIP: r.RemoteAddr,
	})
	utils.WriteNoContent(w)
}

func (h *Handler) deny(r *http.Request, reason string) {
	h.audit.Record(r.Context(), audit.Event{
		Action:   audit.ActionRefresh,
		Outcome:  audit.OutcomeDenied,
		Reason:   reason,
		Path:     r.URL.Path,
		RemoteIP: r.RemoteAddr,
	})
}

func (h *Handler) refreshToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(RefreshCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return "", nil
	}

	var req refreshRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		return "", services.ErrMalformedBody.Wrap(err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return "", nil
	}
	return strings.TrimSpace(req.RefreshToken), nil
}

func (h *Handler) setTokenCookies(w http.ResponseWriter, pair *token.Pair) {
	http.SetCookie(w, h.cookie(AccessCookieName, pair.AccessToken, "/", int(h.codec.TTL(token.TypeAccess)/time.Second)))
	http.SetCookie(w, h.cookie(RefreshCookieName, pair.RefreshToken, RefreshPath, int(h.codec.TTL(token.TypeRefresh)/time.Second)))
}

func (h *Handler) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
