package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ironbridge-it/website-api/cmd/mainconfig"
	"github.com/ironbridge-it/website-api/internal/api/router"
	"github.com/ironbridge-it/website-api/internal/app/bootstrap"
	appconfig "github.com/ironbridge-it/website-api/internal/config"
	"github.com/ironbridge-it/website-api/internal/content"
	httpmiddleware "github.com/ironbridge-it/website-api/internal/http/middleware"
	"github.com/ironbridge-it/website-api/internal/leads"
	"github.com/ironbridge-it/website-api/internal/observability/metrics"
	"github.com/ironbridge-it/website-api/internal/ratelimit"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting website API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"rate_limit_backend", cfg.RateLimitBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// application holds everything the server needs, built once at startup.
type application struct {
	handler http.Handler
	sweeper *ratelimit.Sweeper
	pool    *pgxpool.Pool
	redis   *redis.Client
}

func (a *application) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return app.sweeper.Run(gctx)
	})
	return g.Wait()
}

func buildApplication(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*application, error) {
	app := &application{}

	metricsHandler, intakeMetrics, contentMetrics := setupMetrics(cfg.MetricsEnabled)

	pool, err := bootstrap.BuildPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.pool = pool

	if cfg.RateLimitBackend == appconfig.RateLimitBackendRedis {
		app.redis = bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	}
	limiter, windows := bootstrap.BuildLimiter(cfg, app.redis, logger)

	contentRepo, err := bootstrap.BuildContentRepository(cfg, pool)
	if err != nil {
		app.close()
		return nil, err
	}

	intakeOpts := []leads.IntakeOption{
		leads.WithMetrics(intakeMetrics),
		leads.WithStoreTimeout(cfg.StoreTimeout),
	}
	if bootstrap.LeadEventsEnabled(cfg) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		intakeOpts = append(intakeOpts,
			leads.WithNotifier(bootstrap.BuildLeadPublisher(awsCfg, cfg, logger)),
			leads.WithNotifyTimeout(cfg.LeadEventsTimeout),
		)
	}
	intake := leads.NewIntake(limiter, bootstrap.BuildLeadRepository(pool, logger), logger, intakeOpts...)

	throttle := httpmiddleware.NewThrottle(cfg.APIRatePerSec, cfg.APIBurst)
	targets := []ratelimit.Sweepable{throttle}
	if windows != nil {
		targets = append(targets, windows)
	}
	app.sweeper, err = ratelimit.NewSweeper(cfg.RateLimitSweep, logger, targets...)
	if err != nil {
		app.close()
		return nil, err
	}

	routerCfg := &router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(intake, logger),
		ContentHandler:     content.NewHandler(contentRepo, contentMetrics, logger, cfg.StoreTimeout),
		MetricsHandler:     metricsHandler,
		Throttle:           throttle,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if pool != nil {
		routerCfg.Database = pool
	}
	app.handler = router.New(routerCfg)
	return app, nil
}

// setupMetrics returns nils when metrics are disabled; the metrics types
// tolerate nil receivers.
func setupMetrics(enabled bool) (http.Handler, *metrics.IntakeMetrics, *metrics.ContentMetrics) {
	if !enabled {
		return nil, nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return handler, metrics.NewIntakeMetrics(reg), metrics.NewContentMetrics(reg)
}
