package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "REDIS_ADDR", "RATE_LIMIT_BACKEND",
		"CONTACT_RATE_LIMIT", "CONTACT_RATE_WINDOW", "API_RATE_PER_SEC", "API_BURST",
		"CORS_ALLOWED_ORIGINS", "METRICS_ENABLED", "STORE_TIMEOUT", "LEAD_EVENTS_QUEUE_URL",
		"LEAD_EVENTS_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.RateLimitBackend != RateLimitBackendMemory {
		t.Fatalf("expected memory backend, got %s", cfg.RateLimitBackend)
	}
	if cfg.ContactRateLimit != 5 {
		t.Fatalf("expected 5 submissions per window, got %d", cfg.ContactRateLimit)
	}
	if cfg.ContactRateWindow != 15*time.Minute {
		t.Fatalf("expected 15m window, got %s", cfg.ContactRateWindow)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Fatalf("expected 5s store timeout, got %s", cfg.StoreTimeout)
	}
	if cfg.LeadEventsTimeout != 2*time.Second {
		t.Fatalf("expected 2s lead events timeout, got %s", cfg.LeadEventsTimeout)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics enabled by default")
	}
	if cfg.UseDatabase() {
		t.Fatalf("expected no database without DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_BACKEND", "Redis")
	t.Setenv("CONTACT_RATE_LIMIT", "3")
	t.Setenv("CONTACT_RATE_WINDOW", "1h")
	t.Setenv("API_RATE_PER_SEC", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com, ,https://www.example.com")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Env != "production" {
		t.Fatalf("expected overrides, got port=%s env=%s", cfg.Port, cfg.Env)
	}
	if !cfg.UseDatabase() {
		t.Fatalf("expected database to be enabled")
	}
	if cfg.RateLimitBackend != RateLimitBackendRedis {
		t.Fatalf("expected redis backend, got %s", cfg.RateLimitBackend)
	}
	if cfg.ContactRateLimit != 3 || cfg.ContactRateWindow != time.Hour {
		t.Fatalf("unexpected limiter settings: %d/%s", cfg.ContactRateLimit, cfg.ContactRateWindow)
	}
	if cfg.APIRatePerSec != 2.5 {
		t.Fatalf("expected api rate 2.5, got %v", cfg.APIRatePerSec)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.MetricsEnabled {
		t.Fatalf("expected metrics disabled")
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown backend", map[string]string{"RATE_LIMIT_BACKEND": "memcached"}, "unknown RATE_LIMIT_BACKEND"},
		{"redis without addr", map[string]string{"RATE_LIMIT_BACKEND": "redis"}, "REDIS_ADDR"},
		{"zero limit", map[string]string{"CONTACT_RATE_LIMIT": "0"}, "CONTACT_RATE_LIMIT"},
		{"negative burst", map[string]string{"API_BURST": "-1"}, "API_BURST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONTACT_RATE_LIMIT", "lots")
	t.Setenv("CONTACT_RATE_WINDOW", "soon")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ContactRateLimit != 5 || cfg.ContactRateWindow != 15*time.Minute {
		t.Fatalf("expected defaults, got %d/%s", cfg.ContactRateLimit, cfg.ContactRateWindow)
	}
}
