package http

import "github.com/gin-gonic/gin"

// Register mounts every handler on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	// Catalog and lifecycle
	router.GET("/apps", h.ListApps)
	router.POST("/apps", h.RegisterApp)
	router.POST("/apps/:id/launch", h.LaunchApp)
	router.POST("/apps/:id/restart", h.RestartApp)
	router.POST("/apps/:id/stop", h.StopApp)
	router.POST("/apps/:id/focus", h.FocusApp)
	router.POST("/apps/:id/window", h.UpdateWindowState)

	// Supervision
	router.GET("/processes", h.ListProcesses)
	router.GET("/processes/:id", h.GetProcess)
	router.GET("/processes/:id/diagnostics", h.GetDiagnostics)
	router.POST("/health-checks", h.RunHealthChecks)

	// Logs
	router.POST("/logs", h.IngestLogs)
	router.GET("/logs/level", h.GetLogLevel)
	router.PUT("/logs/level", h.SetLogLevel)
}
