package http

import (
	"errors"
	"net/http"
	"sort"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/launcher"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service identification reported by the root endpoint
const (
	ServiceName = "AgentOS Launcher"
	Version     = "0.3.0"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	launcher *launcher.Service
	catalog  *catalog.Catalog
	logger   *logging.Logger
	metrics  *HandlerMetrics
}

// NewHandlers creates a new handler set
func NewHandlers(
	svc *launcher.Service,
	apps *catalog.Catalog,
	logger *logging.Logger,
	metrics *HandlerMetrics,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	if metrics == nil {
		metrics = NewHandlerMetrics(nil)
	}
	return &Handlers{
		launcher: svc,
		catalog:  apps,
		logger:   logger,
		metrics:  metrics,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": ServiceName,
		"version": Version,
	})
}

// Health reports registry and catalog statistics
func (h *Handlers) Health(c *gin.Context) {
	stats := h.launcher.Stats()
	status := "healthy"
	if stats.Unhealthy > 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"launcher": stats,
		"catalog":  h.catalog.Stats(),
	})
}

// ListApps lists the catalog
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps":  h.catalog.List(),
		"stats": h.catalog.Stats(),
	})
}

// RegisterApp adds or replaces a catalog entry
func (h *Handlers) RegisterApp(c *gin.Context) {
	done := h.metrics.Track("register_app")

	var app types.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		done(false)
		badRequest(c, "invalid application: "+err.Error())
		return
	}

	stored, err := h.catalog.Put(&app)
	if err != nil {
		done(false)
		badRequest(c, err.Error())
		return
	}
	done(true)

	h.logger.Info("Application registered",
		zap.String("app_id", stored.ID),
		zap.String("kind", string(stored.Kind)))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"app":     stored,
	})
}

// LaunchApp launches a catalog application, or brings it to the
// foreground when it already runs.
func (h *Handlers) LaunchApp(c *gin.Context) {
	app, ok := h.lookupApp(c)
	if !ok {
		return
	}
	res := h.launcher.Launch(c.Request.Context(), app)
	c.JSON(statusForResult(res), res)
}

// RestartApp stops and relaunches a catalog application
func (h *Handlers) RestartApp(c *gin.Context) {
	app, ok := h.lookupApp(c)
	if !ok {
		return
	}
	res := h.launcher.Restart(c.Request.Context(), app)
	c.JSON(statusForResult(res), res)
}

// StopApp stops a running application
func (h *Handlers) StopApp(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}

	if !h.launcher.Stop(c.Request.Context(), appID) {
		processNotFound(c, appID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app_id":  appID,
		"message": launcher.MessageStopped,
	})
}

// FocusApp brings a running application to the foreground
func (h *Handlers) FocusApp(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}

	proc, found := h.launcher.BringToForeground(appID)
	if !found {
		processNotFound(c, appID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app_id":  appID,
		"message": launcher.MessageForeground,
		"process": proc,
	})
}

// UpdateWindowState records window geometry reported by the front-end
func (h *Handlers) UpdateWindowState(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}

	var ws launcher.WindowState
	if err := c.ShouldBindJSON(&ws); err != nil {
		badRequest(c, "invalid window state: "+err.Error())
		return
	}
	if err := utils.ValidateWindowGeometry(ws.X, ws.Y, ws.Width, ws.Height); err != nil {
		badRequest(c, err.Error())
		return
	}

	err := h.launcher.UpdateWindowState(c.Request.Context(), appID, ws)
	switch {
	case errors.Is(err, launcher.ErrInvalidWindowState):
		badRequest(c, err.Error())
	case errors.Is(err, launcher.ErrProcessNotFound):
		processNotFound(c, appID)
	case err != nil:
		h.logger.Error("Failed to persist window state", zap.String("app_id", appID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"app_id":  appID,
			"error":   "window state could not be saved",
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"app_id":  appID,
		})
	}
}

// ListProcesses lists the active processes
func (h *Handlers) ListProcesses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"processes": sortedProcesses(h.launcher.RunningProcesses()),
		"stats":     h.launcher.Stats(),
	})
}

// GetProcess returns the registered process of an application
func (h *Handlers) GetProcess(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}

	proc, found := h.launcher.GetApplicationProcess(appID)
	if !found {
		processNotFound(c, appID)
		return
	}
	c.JSON(http.StatusOK, proc)
}

// GetDiagnostics returns the detailed report of the last launch failure
func (h *Handlers) GetDiagnostics(c *gin.Context) {
	appID, ok := appIDParam(c)
	if !ok {
		return
	}

	lerr, found := h.launcher.LastFailure(appID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"app_id":  appID,
			"error":   "no failure recorded",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":      appID,
		"code":        lerr.Code,
		"recoverable": lerr.Code.Recoverable(),
		"message":     lerr.UserMessage(),
		"report":      lerr.DetailedReport(),
	})
}

// RunHealthChecks runs one health check round immediately
func (h *Handlers) RunHealthChecks(c *gin.Context) {
	done := h.metrics.Track("health_checks")
	h.launcher.PerformHealthChecks(c.Request.Context())
	done(true)

	c.JSON(http.StatusOK, gin.H{
		"processes": sortedProcesses(h.launcher.RunningProcesses()),
		"stats":     h.launcher.Stats(),
	})
}

func (h *Handlers) lookupApp(c *gin.Context) (*types.Application, bool) {
	appID, ok := appIDParam(c)
	if !ok {
		return nil, false
	}

	app, err := h.catalog.Lookup(appID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"app_id":  appID,
			"error":   "application not found",
		})
		return nil, false
	}
	return app, true
}

func appIDParam(c *gin.Context) (string, bool) {
	appID := c.Param("id")
	if err := utils.ValidateID(appID, "app_id", true); err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return appID, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

func processNotFound(c *gin.Context, appID string) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"app_id":  appID,
		"error":   launcher.ErrProcessNotFound.Error(),
	})
}

func sortedProcesses(procs []*launcher.Process) []*launcher.Process {
	sort.Slice(procs, func(i, j int) bool { return procs[i].AppID < procs[j].AppID })
	return procs
}

// statusForResult maps a launch outcome onto an HTTP status
func statusForResult(res launcher.LaunchResult) int {
	code, failed := res.Code()
	if !failed {
		return http.StatusOK
	}

	switch code {
	case launcher.ErrorCodeInvalidState:
		return http.StatusConflict
	case launcher.ErrorCodeDisposed:
		return http.StatusServiceUnavailable
	case launcher.ErrorCodeURLNotAccessible, launcher.ErrorCodeNetwork, launcher.ErrorCodeHealthCheckFailed:
		return http.StatusBadGateway
	case launcher.ErrorCodeIndexNotFound:
		return http.StatusNotFound
	case launcher.ErrorCodeFileAccessDenied:
		return http.StatusForbidden
	case launcher.ErrorCodeInvalidFileContent, launcher.ErrorCodeSymbolicLink:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
