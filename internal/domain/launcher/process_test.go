package launcher

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProcess(t *testing.T) *Process {
	t.Helper()
	cfg := NewLaunchConfig(webApp("notes"), "http://localhost/notes")
	return newProcess("notes", cfg, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil)
}

func TestNewProcess(t *testing.T) {
	p := testProcess(t)

	assert.Equal(t, StatusStarting, p.Status)
	assert.True(t, p.IsActive())
	assert.False(t, p.IsTerminated())
	assert.True(t, p.IsHealthy)
	assert.NotEmpty(t, p.InstanceID)
	assert.Equal(t, p.LaunchedAt, p.LastAccessed)
	assert.Nil(t, p.LastHealthCheck)
}

func TestProcessTransitions(t *testing.T) {
	t.Run("starting to running to stopped", func(t *testing.T) {
		p := testProcess(t)
		require.NoError(t, p.markRunning())
		assert.Equal(t, StatusRunning, p.Status)
		require.NoError(t, p.markRunning())

		assert.True(t, p.markStopped())
		assert.Equal(t, StatusStopped, p.Status)
		assert.False(t, p.markStopped())
		assert.False(t, p.markCrashed("late"))
		assert.Equal(t, StatusStopped, p.Status)
	})

	t.Run("crash is terminal", func(t *testing.T) {
		p := testProcess(t)
		require.NoError(t, p.markRunning())

		assert.True(t, p.markCrashed("probe failed"))
		assert.Equal(t, StatusCrashed, p.Status)
		assert.False(t, p.IsHealthy)
		require.NotNil(t, p.HealthCheckError)
		assert.Equal(t, "probe failed", *p.HealthCheckError)

		assert.Error(t, p.markRunning())
		assert.False(t, p.markStopped())
		assert.Equal(t, StatusCrashed, p.Status)
	})

	t.Run("starting may stop directly", func(t *testing.T) {
		p := testProcess(t)
		assert.True(t, p.markStopped())
		assert.Error(t, p.markRunning())
	})
}

func TestProcessTouchIsMonotonic(t *testing.T) {
	p := testProcess(t)
	start := p.LastAccessed

	p.touch(start)
	assert.True(t, p.LastAccessed.After(start))

	prev := p.LastAccessed
	p.touch(start.Add(-time.Hour))
	assert.True(t, p.LastAccessed.After(prev))

	later := start.Add(time.Minute)
	p.touch(later)
	assert.Equal(t, later, p.LastAccessed)
}

func TestProcessRecordHealth(t *testing.T) {
	p := testProcess(t)
	now := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)

	p.recordHealth(now, errors.New("timeout"))
	require.NotNil(t, p.LastHealthCheck)
	assert.Equal(t, now, *p.LastHealthCheck)
	assert.False(t, p.IsHealthy)
	require.NotNil(t, p.HealthCheckError)

	p.recordHealth(now.Add(time.Second), nil)
	assert.True(t, p.IsHealthy)
	assert.Nil(t, p.HealthCheckError)
}

func TestProcessSnapshotIsDeep(t *testing.T) {
	p := testProcess(t)
	p.WindowState = &WindowState{Width: 800, Height: 600}
	p.recordHealth(time.Now(), errors.New("slow"))

	snap := p.snapshot()
	snap.WindowState.Width = 1
	*snap.HealthCheckError = "changed"
	*snap.LastHealthCheck = time.Time{}
	snap.Status = StatusCrashed

	assert.Equal(t, 800, p.WindowState.Width)
	assert.Equal(t, "slow", *p.HealthCheckError)
	assert.False(t, p.LastHealthCheck.IsZero())
	assert.Equal(t, StatusStarting, p.Status)

	var nilProc *Process
	assert.Nil(t, nilProc.snapshot())
}

func TestAfter(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(time.Nanosecond), after(base, base))
	assert.Equal(t, base.Add(time.Nanosecond), after(base, base.Add(-time.Second)))
	assert.Equal(t, base.Add(time.Second), after(base, base.Add(time.Second)))
	assert.Equal(t, base, after(time.Time{}, base))
}
