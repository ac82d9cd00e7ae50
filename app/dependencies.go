package app

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/auth"
	"github.com/sobhit1/feed-chain/config"
	"github.com/sobhit1/feed-chain/handlers"
	"github.com/sobhit1/feed-chain/internal/audit"
	"github.com/sobhit1/feed-chain/internal/keys"
	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/internal/policy"
	"github.com/sobhit1/feed-chain/internal/token"
	"github.com/sobhit1/feed-chain/middleware"
)

// readinessSubject is the subject of the probe token minted by /readyz.
const readinessSubject = "readiness-probe"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Token material
	Keys  *keys.KeyPair
	Codec *token.Codec

	// Request pipeline
	Routes         *policy.RoutePolicy
	AuthMiddleware *middleware.AuthMiddleware
	Health         *handlers.HealthHandler

	errorMapper *handlers.ErrorMapper
	authHandler *auth.Handler
}

// AuthHandler returns the session handler for route wiring (implements handlers.AuthDeps)
func (d *Dependencies) AuthHandler() *auth.Handler {
	return d.authHandler
}

// ErrorMapper returns the shared error mapper (implements handlers.ErrorDeps)
func (d *Dependencies) ErrorMapper() *handlers.ErrorMapper {
	return d.errorMapper
}

// PublicJWKS returns the published verification keys (implements handlers.KeySetDeps)
func (d *Dependencies) PublicJWKS() (jwk.Set, error) {
	return d.Keys.PublicJWKS()
}

// NewDependencies creates and wires up all application dependencies. Key
// loading failures are returned unwrapped enough for errors.As to reach
// the *keys.KeyLoadError.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = observability.NewMetrics()
	}
	deps.errorMapper = handlers.NewErrorMapper(logger, deps.Metrics, cfg.ExposeDiagnostics())

	// Load signing keys
	if err := deps.initKeys(cfg); err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	// Initialize token codec
	if err := deps.initTokens(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	// Initialize route policy and auth
	deps.initAuth(cfg)

	deps.initHealth()

	logger.Info("all dependencies initialized successfully",
		zap.String("environment", cfg.Environment),
		zap.String("kid", deps.Keys.KeyID()))
	return deps, nil
}

func (d *Dependencies) initKeys(cfg *config.Config) error {
	kp, err := keys.LoadKeyPair(cfg.JWT.PrivateKeyLocation, cfg.JWT.PublicKeyLocation)
	if err != nil {
		return err
	}
	d.Keys = kp
	d.Logger.Info("signing keys loaded", zap.String("kid", kp.KeyID()))
	return nil
}

func (d *Dependencies) initTokens(cfg *config.Config) error {
	codec, err := token.NewCodec(d.Keys,
		token.WithIssuer(cfg.JWT.Issuer),
		token.WithAccessTTL(cfg.JWT.AccessTokenTTL),
		token.WithRefreshTTL(cfg.JWT.RefreshTokenTTL),
		token.WithClockSkew(cfg.JWT.ClockSkew),
	)
	if err != nil {
		return err
	}
	d.Codec = codec
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Routes = policy.MustDefault()
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Codec, d.Routes, d.errorMapper, d.Metrics, d.Logger)
	d.authHandler = auth.NewHandler(d.Codec, d.errorMapper, auth.CookieConfig{Secure: cfg.Cookie.Secure}, d.Metrics, audit.NewRecorder(d.Logger), d.Logger)
	d.Logger.Info("auth initialized", zap.Strings("public_patterns", d.Routes.Patterns()))
}

func (d *Dependencies) initHealth() {
	d.Health = handlers.NewHealthHandler(map[string]handlers.Checker{
		"signing_keys": handlers.CheckFunc(d.checkSigning),
	}, d.Logger)
}

// checkSigning proves the loaded key pair can still sign and verify.
func (d *Dependencies) checkSigning(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, _, err := d.Codec.Issue(readinessSubject, nil, token.TypeAccess)
	if err != nil {
		return fmt.Errorf("sign probe token: %w", err)
	}
	if _, err := d.Codec.Decode(raw); err != nil {
		return fmt.Errorf("verify probe token: %w", err)
	}
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return nil
}
