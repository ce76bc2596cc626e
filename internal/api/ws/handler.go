package ws

import (
	"net/http"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/launcher"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection timing
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// Message types
const (
	TypeSystem       = "system"
	TypeLaunchResult = "launch_result"
	TypePing         = "ping"
	TypePong         = "pong"
	TypeError        = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // front-ends run on arbitrary local ports
	},
}

// EventSource is the subscription side of the launcher event stream
type EventSource interface {
	Subscribe() (<-chan launcher.LaunchResult, error)
	Unsubscribe(sub <-chan launcher.LaunchResult)
}

// Message is the envelope of every frame sent to clients
type Message struct {
	Type         string                 `json:"type"`
	ConnectionID string                 `json:"connection_id,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Result       *launcher.LaunchResult `json:"result,omitempty"`
	Timestamp    int64                  `json:"timestamp"`
}

// clientMessage is what clients may send
type clientMessage struct {
	Type string `json:"type"`
}

// Handler streams launch results to websocket clients
type Handler struct {
	events  EventSource
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(events EventSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		events: events,
		logger: logger.Named("ws"),
	}
}

// WithMetrics adds connection and message tracking
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and streams every launch result
// until the client leaves or the stream closes. ?app_id= restricts the
// stream to one application.
func (h *Handler) HandleConnection(c *gin.Context) {
	filter := c.Query("app_id")
	if filter != "" {
		if err := utils.ValidateID(filter, "app_id", false); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	sub, err := h.events.Subscribe()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "event stream closed"})
		return
	}
	defer h.events.Unsubscribe(sub)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	logger := h.logger.With(zap.String("connection_id", connID))
	logger.Debug("Client connected", zap.String("filter", filter))

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	replies := make(chan Message, 4)
	done := make(chan struct{})
	go h.readLoop(conn, replies, done, logger)

	h.send(conn, Message{
		Type:         TypeSystem,
		ConnectionID: connID,
		Message:      "Connected to launcher event stream",
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case res, ok := <-sub:
			if !ok {
				h.close(conn, websocket.CloseGoingAway, "launcher stopped")
				return
			}
			if filter != "" && res.AppID != filter {
				continue
			}
			result := res
			if err := h.send(conn, Message{Type: TypeLaunchResult, Result: &result}); err != nil {
				logger.Debug("Write failed", zap.Error(err))
				return
			}
		case reply := <-replies:
			if err := h.send(conn, reply); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			logger.Debug("Client disconnected")
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

// readLoop consumes client frames and queues replies. Only the writer
// goroutine touches the connection for writes.
func (h *Handler) readLoop(conn *websocket.Conn, replies chan<- Message, done chan<- struct{}, logger *zap.Logger) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		reply, label := Message{Type: TypePong}, TypePing
		if msg.Type != TypePing {
			reply, label = Message{Type: TypeError, Message: "unknown message type"}, "unknown"
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", label)
		}
		select {
		case replies <- reply:
		default:
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg Message) error {
	msg.Timestamp = time.Now().Unix()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", msg.Type)
	}
	return nil
}

func (h *Handler) close(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
