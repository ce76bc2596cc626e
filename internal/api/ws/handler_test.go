package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/launcher"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	server  *httptest.Server
	events  *launcher.Broadcaster[launcher.LaunchResult]
	metrics *monitoring.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	events := launcher.NewBroadcaster[launcher.LaunchResult](8)
	metrics := monitoring.NewMetrics()

	router := gin.New()
	router.GET("/events", NewHandler(events, nil).WithMetrics(metrics).HandleConnection)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &harness{server: server, events: events, metrics: metrics}
}

func (h *harness) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/events" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// waitSubscribers blocks until the handler has subscribed n connections
func waitSubscribers(t *testing.T, events *launcher.Broadcaster[launcher.LaunchResult], n int) {
	t.Helper()
	require.Eventually(t, func() bool { return events.SubscriberCount() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestStreamsLaunchResults(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "")

	welcome := readMessage(t, conn)
	assert.Equal(t, TypeSystem, welcome.Type)
	assert.NotEmpty(t, welcome.ConnectionID)
	waitSubscribers(t, h.events, 1)

	h.events.Publish(launcher.LaunchResult{ID: "evt_1", Success: true, AppID: "notes", Message: launcher.MessageLaunched})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeLaunchResult, msg.Type)
	require.NotNil(t, msg.Result)
	assert.Equal(t, "notes", msg.Result.AppID)
	assert.Equal(t, launcher.MessageLaunched, msg.Result.Message)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.WSConnections))
}

func TestFiltersByApplication(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "?app_id=charts")
	readMessage(t, conn)
	waitSubscribers(t, h.events, 1)

	h.events.Publish(launcher.LaunchResult{ID: "evt_1", AppID: "notes"})
	h.events.Publish(launcher.LaunchResult{ID: "evt_2", AppID: "charts"})

	msg := readMessage(t, conn)
	require.NotNil(t, msg.Result)
	assert.Equal(t, "charts", msg.Result.AppID)
}

func TestRejectsInvalidFilter(t *testing.T) {
	h := newHarness(t)

	resp, err := http.Get(h.server.URL + "/events?app_id=bad.id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPingAndUnknownMessages(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "")
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, TypePong, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "launch"}))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "unknown message type", msg.Message)
}

func TestClosesWhenStreamCloses(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "")
	readMessage(t, conn)
	waitSubscribers(t, h.events, 1)

	h.events.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestRefusesAfterStreamClosed(t *testing.T) {
	h := newHarness(t)
	h.events.Close()

	resp, err := http.Get(h.server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnsubscribesOnDisconnect(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "")
	readMessage(t, conn)
	waitSubscribers(t, h.events, 1)

	require.NoError(t, conn.Close())
	waitSubscribers(t, h.events, 0)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.WSConnections) == 0
	}, 2*time.Second, 5*time.Millisecond)
}
