package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/payables")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("DB_LOCK_TIMEOUT", "")
	t.Setenv("DB_STATEMENT_TIMEOUT", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected default token TTL 24h, got %s", cfg.TokenTTL)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Errorf("expected default lock timeout 5s, got %s", cfg.LockTimeout)
	}
	if cfg.IsProduction() {
		t.Error("expected development environment by default")
	}
	if err := cfg.RequireDatabase(); err != nil {
		t.Errorf("RequireDatabase: %v", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DB_LOCK_TIMEOUT", "five seconds")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed DB_LOCK_TIMEOUT, got nil")
	}
}

func TestRequireJWTSecret(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireJWTSecret(); err == nil {
		t.Error("expected error for empty JWT secret")
	}
	cfg.JWTSecret = "s3cret"
	if err := cfg.RequireJWTSecret(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
