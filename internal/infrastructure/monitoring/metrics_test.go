package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIndependentRegistries(t *testing.T) {
	// Two collectors must not collide on registration
	m1 := NewMetrics()
	m2 := NewMetrics()

	m1.RecordLaunch(true, "")
	assert.Equal(t, 1.0, testutil.ToFloat64(m1.Launches.WithLabelValues("success", "none")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.Launches.WithLabelValues("success", "none")))

	n, err := testutil.GatherAndCount(m1.Registry(), "launcher_launches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordLaunch(t *testing.T) {
	m := NewMetrics()

	m.RecordLaunch(true, "")
	m.RecordLaunch(false, "NETWORK_ERROR")
	m.RecordLaunch(false, "NETWORK_ERROR")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Launches.WithLabelValues("failure", "NETWORK_ERROR")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalLaunches)
	assert.Equal(t, int64(2), snap.FailedLaunches)
}

func TestGaugesAndCounters(t *testing.T) {
	m := NewMetrics()

	m.SetProcessesActive(4)
	m.RecordHealthCheck(true)
	m.RecordHealthCheck(false)
	m.RecordWindowStateWrite(nil)
	m.RecordWindowStateWrite(errors.New("disk full"))
	m.IncEventsPublished()
	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()

	assert.Equal(t, 4.0, testutil.ToFloat64(m.ProcessesActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealthChecks.WithLabelValues("unhealthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WindowStateWrites.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.ActiveProcesses)
	assert.Equal(t, int64(1), snap.ActiveConnections)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/apps/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/apps/notes", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/apps/:id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "launcher_http_requests_total"))
	assert.True(t, strings.Contains(body, "launcher_uptime_seconds"))
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	timer := NewTimer(m, "launch")
	time.Sleep(time.Millisecond)
	d := timer.Stop("success")
	assert.Greater(t, d, time.Duration(0))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))

	// nil metrics is tolerated
	assert.NotPanics(t, func() { NewTimer(nil, "stop").Stop("success") })
}
