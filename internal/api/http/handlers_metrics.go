package http

import (
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
)

// HandlerMetrics times API operations that the launcher does not
// already measure itself.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper. A nil metrics records nothing.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track starts timing operation; call the returned func with the outcome
func (hm *HandlerMetrics) Track(operation string) func(success bool) {
	timer := monitoring.NewTimer(hm.metrics, "api_"+operation)
	return func(success bool) {
		if success {
			timer.Stop("success")
			return
		}
		timer.Stop("failure")
	}
}
