package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Launcher config
	assert.Equal(t, 30*time.Second, cfg.Launcher.HealthInterval)
	assert.Equal(t, 5*time.Second, cfg.Launcher.ProbeTimeout)
	assert.Equal(t, 8, cfg.Launcher.MaxProbes)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.False(t, cfg.Catalog.Autostart)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOrDefaultFallsBackOnInvalid(t *testing.T) {
	t.Setenv("STORE_BACKEND", "etcd")
	t.Setenv("PORT", "9000")

	cfg := LoadOrDefault()
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                     "9000",
		"HOST":                     "127.0.0.1",
		"CORS_ORIGINS":             "http://localhost:5173,http://localhost:3000",
		"LOG_LEVEL":                "debug",
		"LOG_DEV":                  "true",
		"RATE_LIMIT_RPS":           "500",
		"RATE_LIMIT_BURST":         "1000",
		"RATE_LIMIT_ENABLED":       "false",
		"LAUNCHER_HEALTH_INTERVAL": "10s",
		"LAUNCHER_PROBE_TIMEOUT":   "750ms",
		"LAUNCHER_PROBE_RETRIES":   "3",
		"LAUNCHER_MAX_PROBES":      "2",
		"LAUNCHER_USER_AGENT":      "probe/2",
		"STORE_BACKEND":            "redis",
		"STORE_REDIS_ADDR":         "cache:6379",
		"STORE_REDIS_PASSWORD":     "hunter2",
		"STORE_REDIS_DB":           "4",
		"CATALOG_DIR":              "/srv/apps",
		"CATALOG_AUTOSTART":        "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.CORSOrigins)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 10*time.Second, cfg.Launcher.HealthInterval)
	assert.Equal(t, 750*time.Millisecond, cfg.Launcher.ProbeTimeout)
	assert.Equal(t, 3, cfg.Launcher.ProbeRetries)
	assert.Equal(t, 2, cfg.Launcher.MaxProbes)
	assert.Equal(t, "probe/2", cfg.Launcher.UserAgent)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "hunter2", cfg.Store.RedisPassword)
	assert.Equal(t, 4, cfg.Store.RedisDB)

	assert.Equal(t, "/srv/apps", cfg.Catalog.Dir)
	assert.True(t, cfg.Catalog.Autostart)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Launcher.HealthInterval)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"duration", "LAUNCHER_HEALTH_INTERVAL", "soon"},
		{"integer", "RATE_LIMIT_RPS", "lots"},
		{"boolean", "CATALOG_AUTOSTART", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"sqlite backend", func(c *Config) { c.Store.Backend = "sqlite" }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }, true},
		{"zero interval", func(c *Config) { c.Launcher.HealthInterval = 0 }, true},
		{"negative timeout", func(c *Config) { c.Launcher.ProbeTimeout = -time.Second }, true},
		{"negative retries", func(c *Config) { c.Launcher.ProbeRetries = -1 }, true},
		{"no probes", func(c *Config) { c.Launcher.MaxProbes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
