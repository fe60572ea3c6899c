// Package repofitservice boots the repofit backend: configuration,
// store, remote API clients, health probing, and the HTTP server.
package repofitservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/repofit/repofit-backend/internal/api"
	"github.com/repofit/repofit-backend/internal/auth"
	"github.com/repofit/repofit-backend/internal/cache"
	"github.com/repofit/repofit-backend/internal/config"
	"github.com/repofit/repofit-backend/internal/generate"
	"github.com/repofit/repofit-backend/internal/health"
	"github.com/repofit/repofit-backend/internal/language"
	"github.com/repofit/repofit-backend/internal/logger"
	"github.com/repofit/repofit-backend/internal/model"
	"github.com/repofit/repofit-backend/internal/quota"
	"github.com/repofit/repofit-backend/internal/retry"
	"github.com/repofit/repofit-backend/internal/services"
	"github.com/repofit/repofit-backend/internal/store"
	"github.com/repofit/repofit-backend/internal/store/postgres"
	"github.com/repofit/repofit-backend/internal/store/sqlite"
	"github.com/repofit/repofit-backend/internal/tone"
)

// Run starts the repofit service HTTP server and blocks until shutdown
// or error.
func Run() error {
	log := logger.New("repofit-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("language_api_url", cfg.LanguageAPIURL).
		Str("generation_api_url", cfg.GenerationAPIURL).
		Msg("Repofit service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = st.Close() }()

	authorizer, err := auth.ParseStatic(cfg.APIKeys)
	if err != nil {
		log.Error().Err(err).Msg("API key configuration invalid")
		return err
	}

	langClient := language.NewClient(cfg.LanguageAPIURL, cfg.LanguageAPIKey)
	genClient := generate.NewClient(cfg.GenerationAPIURL, cfg.GenerationAPIKey)

	// Component health checkers feed the aggregate service flag.
	svcHealth := startHealthCheckers(ctx, cfg, log, st, langClient, genClient)

	router := buildRouter(cfg, log, st, langClient, genClient, authorizer, svcHealth.IsHealthy)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore selects the persistence driver from configuration.
func newStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	limits := quota.Limits{Free: cfg.FreeTierLimit}
	switch cfg.DBDriver {
	case "postgres":
		log.Info().Msg("using postgres store")
		return postgres.New(cfg.PostgresDSN, limits)
	case "sqlite":
		log.Info().Str("path", cfg.SQLitePath).Msg("using sqlite store")
		return sqlite.New(cfg.SQLitePath, limits)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

func buildRouter(cfg *config.Config, log zerolog.Logger, st store.Store, langClient *language.Client, genClient *generate.Client, authorizer auth.Authorizer, isHealthy func() bool) http.Handler {
	retryOpts := retry.Options{
		MaxRetries:     cfg.MaxRetries,
		Base:           cfg.RetryBase,
		Cap:            cfg.RetryCap,
		AttemptTimeout: cfg.AttemptTimeout,
	}

	toneCache := cache.New[model.ToneAnalysis](cfg.CacheCapacity)
	tones := tone.NewService(langClient, toneCache, retryOpts, cfg.CacheTTL, log)

	limits := quota.Limits{Free: cfg.FreeTierLimit}
	ledger := quota.NewLedger(st, log).WithLimits(limits)

	deps := api.Deps{
		Authorizer:   authorizer,
		Analyses:     services.NewAnalysisService(ledger, tones, log),
		Descriptions: services.NewDescriptionService(ledger, tones, genClient, st, retryOpts, log),
		Histories:    services.NewHistoryService(st),
		Ledger:       ledger,
		IsHealthy:    isHealthy,
	}
	return api.NewRouter(deps)
}

// startHealthCheckers starts component probes and the aggregate flag.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, langClient *language.Client, genClient *generate.Client) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	checkers := []health.HealthChecker{
		health.NewPingChecker("store", st, log, probeTimeout),
		health.NewPingChecker("language", langClient, log, probeTimeout),
		health.NewPingChecker("generation", genClient, log, probeTimeout),
	}
	for _, c := range checkers {
		go c.Start(ctx, interval)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// waitUntilHealthy blocks until dependencies report healthy or the
// startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := cfg.HealthIntervalSeconds * 2
	if timeoutSeconds < 60 {
		timeoutSeconds = 60
	}
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on
// SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
