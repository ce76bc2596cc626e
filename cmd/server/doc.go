// Package main is the entry point of the AgentOS application launcher.
//
// The launcher starts catalog applications (web pages served over HTTP or
// local index files), supervises them with periodic health checks, keeps
// their window geometry in a key/value store and streams every launch
// outcome to websocket subscribers.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	STORE_BACKEND=sqlite ./server -port 8000 -catalog ./apps
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown, stopping every process
package main
