/*
Package monitoring provides metrics collection for the launcher.

# Overview

Metrics are registered on a private Prometheus registry so several
collectors can coexist in one process (tests, embedded use). The registry
carries Go runtime and process collectors alongside the launcher metrics.

# Features

- HTTP request metrics (latency, throughput, size)
- Launch outcomes by error code
- Active process gauge
- Health probe outcomes and probe latency
- Window state write outcomes
- Event stream and WebSocket connection metrics

# Usage

	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Time operations
	timer := monitoring.NewTimer(metrics, "launch")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring
