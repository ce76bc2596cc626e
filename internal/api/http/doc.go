// Package http provides the REST API of the launcher.
//
// Endpoints:
//   - Liveness: / and /health
//   - Catalog: GET /apps, POST /apps
//   - Lifecycle: POST /apps/:id/{launch,restart,stop,focus,window}
//   - Processes: GET /processes, /processes/:id, /processes/:id/diagnostics
//   - Supervision: POST /health-checks
//   - Logs: POST /logs, GET and PUT /logs/level
//   - Metrics: GET /metrics/json
//
// Failed launches answer with the LaunchResult itself, carrying the
// user-facing message and the error code, under a status derived from the
// code. The detailed failure report is only served by the diagnostics
// endpoint.
//
//	handlers := http.NewHandlers(svc, apps, logger, http.NewHandlerMetrics(metrics))
//	router.POST("/apps/:id/launch", handlers.LaunchApp)
package http
