package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, sourced from the environment (and an optional .env file).
type Config struct {
	DatabaseURL      string
	ServerPort       string
	JWTSecret        string
	TokenTTL         time.Duration
	AllowedOrigins   string
	LockTimeout      time.Duration
	StatementTimeout time.Duration
	Environment      string
}

// Load reads configuration from the environment. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		Environment:    strings.ToLower(getEnv("APP_ENV", "development")),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LockTimeout, err = getDuration("DB_LOCK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.StatementTimeout, err = getDuration("DB_STATEMENT_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV selects production behaviour (JSON logs).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RequireDatabase returns an error when DATABASE_URL is not configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return nil
}

// RequireJWTSecret returns an error when JWT_SECRET is not configured.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
