package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxLogBatch bounds the entries accepted in one request
const MaxLogBatch = 100

// AppLogEntry is one log line shipped by a launched front-end
type AppLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
}

// AppLogRequest is a batch of log lines from one application
type AppLogRequest struct {
	AppID   string        `json:"app_id"`
	Entries []AppLogEntry `json:"entries"`
}

// IngestLogs writes application log lines into the service log, tagged
// with the application id.
func (h *Handlers) IngestLogs(c *gin.Context) {
	var req AppLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid log request format")
		return
	}
	if err := utils.ValidateID(req.AppID, "app_id", true); err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(req.Entries) == 0 {
		badRequest(c, "no log entries provided")
		return
	}
	if len(req.Entries) > MaxLogBatch {
		badRequest(c, "too many log entries")
		return
	}

	logger := h.logger.Component("app").With(zap.String("app_id", req.AppID))
	for _, entry := range req.Entries {
		logAppEntry(logger, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"entries_received": len(req.Entries),
		"timestamp":        time.Now().Unix(),
	})
}

func logAppEntry(logger *zap.Logger, entry AppLogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+1)
	if entry.Timestamp != "" {
		fields = append(fields, zap.String("app_timestamp", entry.Timestamp))
	}
	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch strings.ToLower(entry.Level) {
	case "error":
		logger.Error(entry.Message, fields...)
	case "warn", "warning":
		logger.Warn(entry.Message, fields...)
	case "debug", "verbose":
		logger.Debug(entry.Message, fields...)
	default:
		logger.Info(entry.Message, fields...)
	}
}

// GetLogLevel reports the current service log level
func (h *Handlers) GetLogLevel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"level": h.logger.Level().String()})
}

// SetLogLevel changes the service log level at runtime
func (h *Handlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Level string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "level is required")
		return
	}
	if err := h.logger.SetLevel(req.Level); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.logger.Info("Log level changed", zap.String("level", req.Level))
	c.JSON(http.StatusOK, gin.H{"level": h.logger.Level().String()})
}
