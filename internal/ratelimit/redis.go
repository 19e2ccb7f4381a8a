package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironbridge-it/website-api/pkg/logging"
)

// incrWindow bumps the counter and starts the expiry on the first hit of a window.
var incrWindow = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisWindow is a fixed-window limiter whose counters live in Redis, so all
// server instances share one limit per client.
type RedisWindow struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
	logger *logging.Logger
}

// NewRedisWindow creates a limiter storing counters under prefix.
func NewRedisWindow(client redis.Scripter, prefix string, limit int, window time.Duration, logger *logging.Logger) *RedisWindow {
	if client == nil {
		panic("ratelimit: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "ratelimit:contact"
	}
	return &RedisWindow{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Allow increments the caller's counter. Redis failures fail open so an outage
// does not take the contact form down with it.
func (r *RedisWindow) Allow(ctx context.Context, key string) bool {
	redisKey := r.prefix + ":" + key
	count, err := incrWindow.Run(ctx, r.client, []string{redisKey}, r.window.Milliseconds()).Int64()
	if err != nil {
		r.logger.Error("rate limit check failed", "error", err, "key", redisKey)
		return true
	}
	if count > int64(r.limit) {
		r.logger.Warn("contact rate limit exceeded", "key", key, "count", count, "max", r.limit)
		return false
	}
	return true
}
