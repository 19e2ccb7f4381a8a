package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit backends for the contact form.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL  string
	StoreTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Contact form limiter
	RateLimitBackend  string
	ContactRateLimit  int
	ContactRateWindow time.Duration
	RateLimitSweep    string

	// Throttling for the read-only API routes
	APIRatePerSec float64
	APIBurst      int

	CORSAllowedOrigins []string
	ContentSeedPath    string
	MetricsEnabled     bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LeadEventsQueueURL  string
	LeadEventsTimeout   time.Duration
}

// Load reads configuration from environment variables, after merging a local
// .env file when one exists.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		StoreTimeout: getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		RateLimitBackend:  strings.ToLower(strings.TrimSpace(getEnv("RATE_LIMIT_BACKEND", RateLimitBackendMemory))),
		ContactRateLimit:  getEnvAsInt("CONTACT_RATE_LIMIT", 5),
		ContactRateWindow: getEnvAsDuration("CONTACT_RATE_WINDOW", 15*time.Minute),
		RateLimitSweep:    getEnv("RATE_LIMIT_SWEEP", "@every 5m"),

		APIRatePerSec: getEnvAsFloat("API_RATE_PER_SEC", 10),
		APIBurst:      getEnvAsInt("API_BURST", 20),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		ContentSeedPath:    getEnv("CONTENT_SEED_PATH", ""),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LeadEventsQueueURL:  getEnv("LEAD_EVENTS_QUEUE_URL", ""),
		LeadEventsTimeout:   getEnvAsDuration("LEAD_EVENTS_TIMEOUT", 2*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: PORT is required")
	}
	switch c.RateLimitBackend {
	case RateLimitBackendMemory:
	case RateLimitBackendRedis:
		if c.RedisAddr == "" {
			return errors.New("config: REDIS_ADDR is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("config: unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	if c.ContactRateLimit <= 0 {
		return fmt.Errorf("config: CONTACT_RATE_LIMIT must be positive, got %d", c.ContactRateLimit)
	}
	if c.ContactRateWindow <= 0 {
		return fmt.Errorf("config: CONTACT_RATE_WINDOW must be positive, got %s", c.ContactRateWindow)
	}
	if c.APIRatePerSec <= 0 || c.APIBurst <= 0 {
		return errors.New("config: API_RATE_PER_SEC and API_BURST must be positive")
	}
	return nil
}

// UseDatabase reports whether gateways should be backed by Postgres.
func (c *Config) UseDatabase() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
