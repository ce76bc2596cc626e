// Package config provides 12-factor configuration management for the launcher.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Launcher: Health check interval, probe timeout, retries and concurrency
//   - Store: Window state backend (memory, file, redis, sqlite)
//   - Catalog: Manifest directory and autostart
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS (comma separated)
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - LAUNCHER_HEALTH_INTERVAL, LAUNCHER_PROBE_TIMEOUT, LAUNCHER_PROBE_RETRIES,
//     LAUNCHER_MAX_PROBES, LAUNCHER_USER_AGENT
//   - STORE_BACKEND, STORE_PATH, STORE_REDIS_ADDR, STORE_REDIS_PASSWORD,
//     STORE_REDIS_DB, STORE_SQLITE_PATH
//   - CATALOG_DIR, CATALOG_AUTOSTART
package config
