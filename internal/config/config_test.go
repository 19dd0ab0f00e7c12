package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CLAIMS_TABLE", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.ClaimsTable != "claims" {
		t.Fatalf("expected default claims table, got %s", cfg.ClaimsTable)
	}
	if cfg.LocalStorePath != "data/claims.json" {
		t.Fatalf("expected default local store path, got %s", cfg.LocalStorePath)
	}
	if cfg.SyncPollInterval != 0 {
		t.Fatalf("expected polling disabled by default, got %s", cfg.SyncPollInterval)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limiting disabled by default, got %d", cfg.RateLimitRPS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CLAIMS_TABLE", "hospital_claims")
	t.Setenv("LOCAL_STORE_PATH", "/var/lib/claimdesk/claims.json")
	t.Setenv("SYNC_POLL_INTERVAL", "45s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("RATE_LIMIT_RPS", "50")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.ClaimsTable != "hospital_claims" {
		t.Fatalf("expected claims table override, got %s", cfg.ClaimsTable)
	}
	if cfg.LocalStorePath != "/var/lib/claimdesk/claims.json" {
		t.Fatalf("expected local store path override, got %s", cfg.LocalStorePath)
	}
	if cfg.SyncPollInterval != 45*time.Second {
		t.Fatalf("expected poll interval override, got %s", cfg.SyncPollInterval)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis TLS enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected CORS origins override, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 50 {
		t.Fatalf("expected rate limit override, got %d", cfg.RateLimitRPS)
	}
}
