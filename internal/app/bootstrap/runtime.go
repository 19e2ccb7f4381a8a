package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/ironbridge-it/website-api/internal/config"
	"github.com/ironbridge-it/website-api/internal/content"
	"github.com/ironbridge-it/website-api/internal/leads"
	"github.com/ironbridge-it/website-api/internal/ratelimit"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPool opens the Postgres pool, or returns nil when DATABASE_URL is unset.
func BuildPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || !cfg.UseDatabase() {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping database: %w", err)
	}
	return pool, nil
}

// BuildLimiter returns the contact form limiter. The second value is non-nil
// when the limiter keeps windows in process and needs periodic sweeping.
// A redis backend that cannot be reached falls back to the in-memory window.
func BuildLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (ratelimit.Limiter, ratelimit.Sweepable) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RateLimitBackend == appconfig.RateLimitBackendRedis {
		if redisClient != nil {
			logger.Info("contact rate limit backed by redis", "limit", cfg.ContactRateLimit, "window", cfg.ContactRateWindow.String())
			return ratelimit.NewRedisWindow(redisClient, "", cfg.ContactRateLimit, cfg.ContactRateWindow, logger), nil
		}
		logger.Warn("redis rate limit requested but redis unavailable; using in-memory window")
	}
	window := ratelimit.NewWindow(cfg.ContactRateLimit, cfg.ContactRateWindow)
	return window, window
}

// BuildLeadRepository picks Postgres when a pool exists.
func BuildLeadRepository(pool *pgxpool.Pool, logger *logging.Logger) leads.Repository {
	if pool != nil {
		return leads.NewPostgresRepository(pool)
	}
	if logger != nil {
		logger.Warn("DATABASE_URL not set; leads are kept in memory only")
	}
	return leads.NewInMemoryRepository()
}

// BuildContentRepository picks Postgres when a pool exists, otherwise the seed
// file at CONTENT_SEED_PATH or the built-in catalogue.
func BuildContentRepository(cfg *appconfig.Config, pool *pgxpool.Pool) (content.Repository, error) {
	if pool != nil {
		return content.NewPostgresRepository(pool), nil
	}
	var (
		seed *content.Seed
		err  error
	)
	if path := strings.TrimSpace(cfg.ContentSeedPath); path != "" {
		seed, err = content.LoadSeed(path)
	} else {
		seed, err = content.DefaultSeed()
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load content seed: %w", err)
	}
	return content.NewInMemoryRepository(seed), nil
}
