// Package config defines seasondiag configuration and its loader.
package config

import (
	"fmt"
	"time"

	"github.com/pable/go-season-diag/internal/diagnosis"
	"github.com/pable/go-season-diag/internal/metric"
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the SQLite file holding cached season logs and saved diagnoses.
	DBPath string `koanf:"db_path"`

	// CacheBackend selects where fetched season logs are cached: sqlite or redis.
	CacheBackend string `koanf:"cache_backend"`
	// RedisURL is used when CacheBackend is redis, e.g. redis://localhost:6379/0.
	RedisURL string `koanf:"redis_url"`
	// CacheTTL bounds how long a cached season log is served. Zero keeps it
	// until explicitly invalidated.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// SavantBaseURL is the Baseball Savant CSV search endpoint.
	SavantBaseURL string `koanf:"savant_base_url"`
	// HTTPTimeout bounds a single Savant download.
	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// Addr is the listen address of `seasondiag serve`.
	Addr string `koanf:"addr"`

	MinGames   int `koanf:"min_games"`
	WindowSize int `koanf:"window_size"`

	// Metrics overrides the threshold tiers of individual metrics, keyed by
	// metric name. Unset tiers keep their defaults.
	Metrics map[string]ThresholdOverride `koanf:"metrics"`
}

// ThresholdOverride replaces some or all tiers of one metric.
type ThresholdOverride struct {
	Stable   *float64 `koanf:"stable"`
	Moderate *float64 `koanf:"moderate"`
	Major    *float64 `koanf:"major"`
}

// New returns a Config holding the defaults.
func New() *Config {
	p := diagnosis.DefaultPolicy()
	return &Config{
		LogLevel:      "info",
		DBPath:        "seasondiag.db",
		CacheBackend:  CacheSQLite,
		RedisURL:      "redis://localhost:6379/0",
		CacheTTL:      0,
		SavantBaseURL: "https://baseballsavant.mlb.com/statcast_search/csv",
		HTTPTimeout:   60 * time.Second,
		Addr:          ":8080",
		MinGames:      p.MinGames,
		WindowSize:    p.WindowSize,
	}
}

// Policy returns the sampling policy described by c.
func (c *Config) Policy() diagnosis.Policy {
	return diagnosis.Policy{MinGames: c.MinGames, WindowSize: c.WindowSize}
}

// Catalog returns the default metric catalog with c's threshold overrides applied.
func (c *Config) Catalog() (metric.Catalog, error) {
	base := metric.Default()
	if len(c.Metrics) == 0 {
		return base, nil
	}
	merged := make(map[string]metric.Thresholds, len(c.Metrics))
	for name, o := range c.Metrics {
		spec, ok := base[metric.Name(name)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidConfig, name)
		}
		th := spec.Thresholds
		if o.Stable != nil {
			th.Stable = *o.Stable
		}
		if o.Moderate != nil {
			th.Moderate = *o.Moderate
		}
		if o.Major != nil {
			th.Major = *o.Major
		}
		merged[name] = th
	}
	cat, err := base.WithThresholds(merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cat, nil
}

// Validate checks field ranges and cross-field rules.
func (c *Config) Validate() error {
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.CacheBackend {
	case CacheSQLite:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url must be set for the redis cache", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must not be negative", ErrInvalidConfig)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http_timeout must be positive", ErrInvalidConfig)
	}
	if c.SavantBaseURL == "" {
		return fmt.Errorf("%w: savant_base_url must not be empty", ErrInvalidConfig)
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	return nil
}
