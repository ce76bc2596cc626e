package launcher

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// healthTarget is one process picked for probing
type healthTarget struct {
	id   string
	proc *Process
	cfg  LaunchConfig
}

// Start runs the health monitor loop until Dispose. Calling it twice, or
// after Dispose, does nothing.
func (s *Service) Start() {
	s.monitorMu.Lock()
	defer s.monitorMu.Unlock()

	if s.monitorCancel != nil || s.isDisposed() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.monitorCancel = cancel
	s.monitorDone = done

	go s.runMonitor(ctx, done)
	s.logger.Info("Health monitor started", zap.Duration("interval", s.opts.HealthInterval))
}

func (s *Service) runMonitor(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PerformHealthChecks(ctx)
		}
	}
}

// stopMonitor cancels the loop and waits for an in-flight round to finish
func (s *Service) stopMonitor() {
	s.monitorMu.Lock()
	cancel, done := s.monitorCancel, s.monitorDone
	s.monitorCancel = nil
	s.monitorDone = nil
	s.monitorMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("Health monitor stopped")
}

// PerformHealthChecks probes every active process whose check interval
// has elapsed. One failing probe never affects the others.
func (s *Service) PerformHealthChecks(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	targets := make([]healthTarget, 0, len(s.processes))
	for id, p := range s.processes {
		if p.IsActive() && s.due(p, now) {
			targets = append(targets, healthTarget{id: id, proc: p, cfg: p.Config})
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	timer := monitoring.NewTimer(s.metrics, "health_check")

	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrentProbes)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			s.checkOne(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	timer.Stop("success")
}

// due reports whether the check interval has elapsed. A quarter interval
// of slack absorbs ticker jitter.
func (s *Service) due(p *Process, now time.Time) bool {
	if p.LastHealthCheck == nil {
		return true
	}
	slack := s.opts.HealthInterval / 4
	return now.Sub(*p.LastHealthCheck) >= s.opts.HealthInterval-slack
}

// checkOne probes one process and applies the outcome if the process is
// still the registered, live instance.
func (s *Service) checkOne(ctx context.Context, t healthTarget) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Health check panicked", zap.String("app_id", t.id), zap.Any("panic", r))
		}
	}()

	lerr := s.probe(ctx, t.id, t.cfg)
	if lerr != nil && ctx.Err() != nil {
		// cancelled by dispose, not a verdict on the process
		return
	}

	var probeErr error
	if lerr != nil {
		probeErr = lerr
	}
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(probeErr == nil)
	}

	now := s.now()

	s.mu.Lock()
	cur, ok := s.processes[t.id]
	if s.disposed || !ok || cur != t.proc || cur.IsTerminated() {
		s.mu.Unlock()
		return
	}
	cur.recordHealth(now, probeErr)

	crashed := false
	if probeErr != nil && cur.Status == StatusRunning {
		crashed = cur.markCrashed(probeErr.Error())
	}
	snap := cur.snapshot()
	active := s.activeCountLocked()
	s.mu.Unlock()

	if probeErr == nil {
		return
	}
	if !crashed {
		s.logger.Debug("Probe failed during startup", zap.String("app_id", t.id), zap.Error(probeErr))
		return
	}

	s.setActive(active)
	s.persist(context.WithoutCancel(ctx), t.id, snap.WindowState)

	herr := ErrHealthCheckFailed(t.id, t.cfg.Address(), lerr)
	s.logger.Warn("Health check failed", zap.String("app_id", t.id), zap.Error(herr))

	s.mu.Lock()
	s.lastFailures[t.id] = herr
	s.mu.Unlock()

	s.emit(failureResult(t.id, snap, herr, now))
}
