package launcher

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/id"
)

// LaunchResult is the outcome of one launcher operation. It is returned
// to the caller and published on the event stream unchanged.
type LaunchResult struct {
	ID        id.EventID   `json:"id"`
	Success   bool         `json:"success"`
	AppID     string       `json:"app_id"`
	Process   *Process     `json:"process,omitempty"`
	Message   string       `json:"message"`
	ErrorCode *ErrorCode   `json:"error_code,omitempty"`
	Err       *LaunchError `json:"-"`
	Timestamp time.Time    `json:"timestamp"`
}

func newEventID() id.EventID {
	return id.NewEventID()
}

func successResult(appID string, p *Process, message string, now time.Time) LaunchResult {
	return LaunchResult{
		ID:        newEventID(),
		Success:   true,
		AppID:     appID,
		Process:   p.snapshot(),
		Message:   message,
		Timestamp: now,
	}
}

func failureResult(appID string, p *Process, err *LaunchError, now time.Time) LaunchResult {
	code := err.Code
	return LaunchResult{
		ID:        newEventID(),
		Success:   false,
		AppID:     appID,
		Process:   p.snapshot(),
		Message:   err.UserMessage(),
		ErrorCode: &code,
		Err:       err,
		Timestamp: now,
	}
}

// Code returns the error code of a failed result
func (r LaunchResult) Code() (ErrorCode, bool) {
	if r.ErrorCode == nil {
		return "", false
	}
	return *r.ErrorCode, true
}
