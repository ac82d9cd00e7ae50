package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sobhit1/feed-chain/app"
	"github.com/sobhit1/feed-chain/config"
	"github.com/sobhit1/feed-chain/internal/keys"
	"github.com/sobhit1/feed-chain/internal/observability"
	"github.com/sobhit1/feed-chain/routes"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(ctx)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		var loadErr *keys.KeyLoadError
		if errors.As(err, &loadErr) {
			logger.Fatal("cannot start without signing keys",
				zap.String("reason", string(loadErr.Reason)),
				zap.String("location", loadErr.Location),
				zap.Error(err))
		}
		logger.Fatal("api-gateway stopped", zap.Error(err))
	}
}

// setup loads the configuration, .env included, and builds the logger from
// it.
func setup(ctx context.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger, err := initLogger(cfg.Observability)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// initLogger builds the process logger from the observability settings.
func initLogger(obs config.ObservabilityConfig) (*zap.Logger, error) {
	return observability.NewLogger(obs.LogLevel, obs.LogFormat)
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close(context.Background()) }()

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           routes.SetupRoutes(deps),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	servers := []*http.Server{srv}
	errCh := make(chan error, 2)

	go func() {
		logger.Info("api-gateway listening",
			zap.String("addr", srv.Addr),
			zap.Bool("tls", cfg.Server.TLS.Enabled))
		var err error
		if cfg.Server.TLS.Enabled {
			err = srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	if cfg.Observability.MetricsEnabled {
		metricsSrv := &http.Server{
			Addr:              cfg.MetricsAddress(),
			Handler:           deps.Metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		servers = append(servers, metricsSrv)
		go func() {
			logger.Info("metrics listening", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", s.Addr, err))
		}
	}
	logger.Info("api-gateway stopped")
	return errors.Join(errs...)
}
