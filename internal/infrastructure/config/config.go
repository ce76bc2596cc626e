package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Launcher  LauncherConfig
	Store     StoreConfig
	Catalog   CatalogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// CORSOrigins restricts browser access; empty allows any origin
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// LauncherConfig holds supervision and probe settings.
type LauncherConfig struct {
	HealthInterval time.Duration `envconfig:"LAUNCHER_HEALTH_INTERVAL" default:"30s"`
	ProbeTimeout   time.Duration `envconfig:"LAUNCHER_PROBE_TIMEOUT" default:"5s"`
	ProbeRetries   int           `envconfig:"LAUNCHER_PROBE_RETRIES" default:"1"`
	MaxProbes      int           `envconfig:"LAUNCHER_MAX_PROBES" default:"8"`
	UserAgent      string        `envconfig:"LAUNCHER_USER_AGENT" default:"AgentOS-Launcher/1.0"`
}

// StoreConfig selects the window state backend.
type StoreConfig struct {
	Backend       string `envconfig:"STORE_BACKEND" default:"memory"`
	Path          string `envconfig:"STORE_PATH" default:"./data/window-state"`
	RedisAddr     string `envconfig:"STORE_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"STORE_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"STORE_REDIS_DB" default:"0"`
	SQLitePath    string `envconfig:"STORE_SQLITE_PATH" default:"./data/launcher.db"`
}

// CatalogConfig holds application manifest settings.
type CatalogConfig struct {
	Dir       string `envconfig:"CATALOG_DIR" default:"./apps"`
	Autostart bool   `envconfig:"CATALOG_AUTOSTART" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Launcher: LauncherConfig{
			HealthInterval: 30 * time.Second,
			ProbeTimeout:   5 * time.Second,
			ProbeRetries:   1,
			MaxProbes:      8,
			UserAgent:      "AgentOS-Launcher/1.0",
		},
		Store: StoreConfig{
			Backend:    "memory",
			Path:       "./data/window-state",
			RedisAddr:  "localhost:6379",
			SQLitePath: "./data/launcher.db",
		},
		Catalog: CatalogConfig{
			Dir: "./apps",
		},
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Launcher.HealthInterval <= 0 {
		return fmt.Errorf("LAUNCHER_HEALTH_INTERVAL must be positive, got %s", c.Launcher.HealthInterval)
	}
	if c.Launcher.ProbeTimeout <= 0 {
		return fmt.Errorf("LAUNCHER_PROBE_TIMEOUT must be positive, got %s", c.Launcher.ProbeTimeout)
	}
	if c.Launcher.ProbeRetries < 0 {
		return fmt.Errorf("LAUNCHER_PROBE_RETRIES must not be negative, got %d", c.Launcher.ProbeRetries)
	}
	if c.Launcher.MaxProbes <= 0 {
		return fmt.Errorf("LAUNCHER_MAX_PROBES must be positive, got %d", c.Launcher.MaxProbes)
	}

	switch c.Store.Backend {
	case "memory", "file", "redis", "sqlite":
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, file, redis, sqlite, got %q", c.Store.Backend)
	}
	return nil
}
