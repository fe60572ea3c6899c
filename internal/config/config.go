package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the repofit backend.
// Environment variables are parsed from the REPOFIT_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override store driver
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/repofit.db"`

	// Language API (sentiment / entities / content classification)
	LanguageAPIURL string `envconfig:"LANGUAGE_API_URL" default:"http://localhost:9400"`
	LanguageAPIKey string `envconfig:"LANGUAGE_API_KEY" default:""`

	// Generation API (project description drafting)
	GenerationAPIURL string `envconfig:"GENERATION_API_URL" default:"http://localhost:9500"`
	GenerationAPIKey string `envconfig:"GENERATION_API_KEY" default:""`

	// Tone analysis cache
	CacheCapacity int           `envconfig:"CACHE_CAPACITY" default:"1000"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"24h"`

	// Remote call discipline
	MaxRetries     uint64        `envconfig:"MAX_RETRIES" default:"3"`
	RetryBase      time.Duration `envconfig:"RETRY_BASE" default:"500ms"`
	RetryCap       time.Duration `envconfig:"RETRY_CAP" default:"8s"`
	AttemptTimeout time.Duration `envconfig:"ATTEMPT_TIMEOUT" default:"10s"`

	// Quota
	FreeTierLimit int `envconfig:"FREE_TIER_LIMIT" default:"3"`

	// Health probing
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`

	// Dev authorizer: comma-separated apiKey:userId pairs
	APIKeys string `envconfig:"API_KEYS" default:""`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set
// to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("CACHE_CAPACITY must be positive, got %d", c.CacheCapacity)
	}
	if c.FreeTierLimit <= 0 {
		return fmt.Errorf("FREE_TIER_LIMIT must be positive, got %d", c.FreeTierLimit)
	}
	return nil
}

// New creates a Config by parsing environment variables.
// Variables are prefixed with REPOFIT_, e.g. REPOFIT_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("REPOFIT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("language_api_url", cfg.LanguageAPIURL).
		Str("generation_api_url", cfg.GenerationAPIURL).
		Int("cache_capacity", cfg.CacheCapacity).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("free_tier_limit", cfg.FreeTierLimit).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests.
func NewForTesting() *Config {
	cfg := &Config{
		Environment:    EnvTesting,
		BuildTarget:    "local",
		DBDriver:       "sqlite",
		SQLitePath:     "file::memory:",
		HTTPPort:       8080,
		LanguageAPIURL: "http://localhost:9400",
		CacheCapacity:  1000,
		CacheTTL:       24 * time.Hour,
		MaxRetries:     3,
		RetryBase:      time.Millisecond,
		RetryCap:       10 * time.Millisecond,
		AttemptTimeout: time.Second,
		FreeTierLimit:  3,

		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing.
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server listen address.
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
