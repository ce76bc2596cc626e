package launcher

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProcessStatus is the lifecycle state of a supervised application
type ProcessStatus string

const (
	StatusStarting ProcessStatus = "starting"
	StatusRunning  ProcessStatus = "running"
	StatusStopped  ProcessStatus = "stopped"
	StatusCrashed  ProcessStatus = "crashed"
)

// IsActive reports starting or running
func (s ProcessStatus) IsActive() bool {
	return s == StatusStarting || s == StatusRunning
}

// IsTerminated reports stopped or crashed
func (s ProcessStatus) IsTerminated() bool {
	return s == StatusStopped || s == StatusCrashed
}

// Process is the runtime record of one launched application.
// The registered instance is only mutated by the Service; everything
// handed out is a snapshot.
type Process struct {
	AppID            string        `json:"app_id"`
	InstanceID       string        `json:"instance_id"`
	Config           LaunchConfig  `json:"config"`
	Status           ProcessStatus `json:"status"`
	LaunchedAt       time.Time     `json:"launched_at"`
	LastAccessed     time.Time     `json:"last_accessed"`
	LastHealthCheck  *time.Time    `json:"last_health_check,omitempty"`
	IsHealthy        bool          `json:"is_healthy"`
	HealthCheckError *string       `json:"health_check_error,omitempty"`
	WindowState      *WindowState  `json:"window_state,omitempty"`
}

func newProcess(appID string, cfg LaunchConfig, now time.Time, ws *WindowState) *Process {
	return &Process{
		AppID:        appID,
		InstanceID:   uuid.NewString(),
		Config:       cfg,
		Status:       StatusStarting,
		LaunchedAt:   now,
		LastAccessed: now,
		IsHealthy:    true,
		WindowState:  ws,
	}
}

// IsActive reports whether the process is starting or running
func (p *Process) IsActive() bool { return p.Status.IsActive() }

// IsTerminated reports whether the process is stopped or crashed
func (p *Process) IsTerminated() bool { return p.Status.IsTerminated() }

// markRunning moves starting to running. Calling it on a terminated
// process is a programming error.
func (p *Process) markRunning() error {
	switch p.Status {
	case StatusStarting:
		p.Status = StatusRunning
		return nil
	case StatusRunning:
		return nil
	default:
		return fmt.Errorf("process %s: cannot mark %s process running", p.AppID, p.Status)
	}
}

// markStopped moves an active process to stopped. Returns false when the
// process was already terminated.
func (p *Process) markStopped() bool {
	if p.IsTerminated() {
		return false
	}
	p.Status = StatusStopped
	return true
}

// markCrashed moves an active process to crashed and records the reason
func (p *Process) markCrashed(reason string) bool {
	if p.IsTerminated() {
		return false
	}
	p.Status = StatusCrashed
	p.IsHealthy = false
	p.HealthCheckError = &reason
	return true
}

// touch advances lastAccessed, keeping it strictly increasing
func (p *Process) touch(now time.Time) {
	p.LastAccessed = after(p.LastAccessed, now)
}

// recordHealth stores a probe outcome
func (p *Process) recordHealth(now time.Time, probeErr error) {
	checked := now
	p.LastHealthCheck = &checked
	if probeErr == nil {
		p.IsHealthy = true
		p.HealthCheckError = nil
		return
	}
	msg := probeErr.Error()
	p.IsHealthy = false
	p.HealthCheckError = &msg
}

// snapshot returns a deep copy safe to hand out
func (p *Process) snapshot() *Process {
	if p == nil {
		return nil
	}
	c := *p
	if p.LastHealthCheck != nil {
		t := *p.LastHealthCheck
		c.LastHealthCheck = &t
	}
	if p.HealthCheckError != nil {
		s := *p.HealthCheckError
		c.HealthCheckError = &s
	}
	c.WindowState = p.WindowState.clone()
	return &c
}

// after returns now, or one nanosecond past prev when the clock has not
// moved past it.
func after(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
