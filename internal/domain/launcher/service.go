package launcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrProcessNotFound is returned when no active process exists for an id
var ErrProcessNotFound = errors.New("process not found")

// Result messages
const (
	MessageLaunched   = "Application launched"
	MessageForeground = "Application brought to foreground"
	MessageStopped    = "Application stopped"
	MessageRestarted  = "Application restarted"
)

// Prober checks that an address answers. It returns the response status
// or an error when no answer arrived in time.
type Prober interface {
	Probe(ctx context.Context, address string, headers map[string]string) (int, error)
}

// IndexLocator resolves the entry document of a local-content application
type IndexLocator interface {
	Locate(contentDir string, candidates []string) (*IndexDocument, error)
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	HealthInterval      time.Duration
	ProbeTimeout        time.Duration
	MaxConcurrentProbes int
	SubscriberBuffer    int
	Locator             IndexLocator
	Now                 func() time.Time
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		HealthInterval:      30 * time.Second,
		ProbeTimeout:        5 * time.Second,
		MaxConcurrentProbes: 8,
		SubscriberBuffer:    DefaultSubscriberBuffer,
	}
}

// Stats summarizes the registry
type Stats struct {
	Active      int `json:"active"`
	Starting    int `json:"starting"`
	Running     int `json:"running"`
	Crashed     int `json:"crashed"`
	Unhealthy   int `json:"unhealthy"`
	Subscribers int `json:"subscribers"`
}

// Service supervises launched applications
type Service struct {
	mu           sync.Mutex
	processes    map[string]*Process     // Protected by mu
	lastLaunched map[string]time.Time    // Protected by mu
	lastFailures map[string]*LaunchError // Protected by mu
	disposed     bool                    // Protected by mu

	prober   Prober
	windows  *windowStore
	locator  IndexLocator
	events   *Broadcaster[LaunchResult]
	launches singleflight.Group
	windowMu sync.Mutex
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	opts     Options
	now      func() time.Time

	monitorMu     sync.Mutex
	monitorCancel context.CancelFunc
	monitorDone   chan struct{}
	disposeOnce   sync.Once
}

// NewService creates a launcher service. The health monitor does not run
// until Start is called.
func NewService(prober Prober, store Store, logger *zap.Logger, opts Options) *Service {
	defaults := DefaultOptions()
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = defaults.HealthInterval
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaults.ProbeTimeout
	}
	if opts.MaxConcurrentProbes <= 0 {
		opts.MaxConcurrentProbes = defaults.MaxConcurrentProbes
	}
	if opts.SubscriberBuffer <= 0 {
		opts.SubscriberBuffer = defaults.SubscriberBuffer
	}
	if opts.Locator == nil {
		opts.Locator = NewLocator()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("launcher")

	return &Service{
		processes:    make(map[string]*Process),
		lastLaunched: make(map[string]time.Time),
		lastFailures: make(map[string]*LaunchError),
		prober:       prober,
		windows:      newWindowStore(store, logger),
		locator:      opts.Locator,
		events:       NewBroadcaster[LaunchResult](opts.SubscriberBuffer),
		logger:       logger,
		opts:         opts,
		now:          opts.Now,
	}
}

// WithMetrics adds metrics tracking to the service
func (s *Service) WithMetrics(metrics *monitoring.Metrics) *Service {
	s.metrics = metrics
	s.windows.metrics = metrics
	if metrics != nil {
		s.events.onPublish = func(LaunchResult) { metrics.IncEventsPublished() }
	}
	return s
}

// Events returns the stream every LaunchResult is published on
func (s *Service) Events() *Broadcaster[LaunchResult] {
	return s.events
}

// Launch starts supervising an application, or brings it to the
// foreground when it is already active.
func (s *Service) Launch(ctx context.Context, app *types.Application) LaunchResult {
	timer := monitoring.NewTimer(s.metrics, "launch")
	res := s.launch(ctx, app)
	timer.Stop(outcome(res))
	s.recordLaunch(res)
	return s.emit(res)
}

func (s *Service) launch(ctx context.Context, app *types.Application) LaunchResult {
	if lerr := validateApplication(app); lerr != nil {
		return s.fail(appID(app), lerr)
	}
	if s.isDisposed() {
		return s.fail(app.ID, ErrDisposed(app.ID))
	}

	if res, ok := s.foreground(app.ID); ok {
		return res
	}

	// Concurrent launches of one id share a single probe and registration.
	// The shared launch outlives the leader's cancellation; probe bounds it.
	leader := false
	shared := context.WithoutCancel(ctx)
	v, _, _ := s.launches.Do(app.ID, func() (interface{}, error) {
		leader = true
		return s.launchNew(shared, app), nil
	})
	res := v.(LaunchResult)
	if leader {
		return res
	}

	if res.Success {
		if fg, ok := s.foreground(app.ID); ok {
			return fg
		}
	}
	res.ID = newEventID()
	res.Timestamp = s.now()
	return res
}

// launchNew probes the target and registers a new process
func (s *Service) launchNew(ctx context.Context, app *types.Application) LaunchResult {
	s.cleanupTerminated(ctx, app.ID)

	address, lerr := s.resolveTarget(app)
	if lerr != nil {
		return s.fail(app.ID, lerr)
	}
	cfg := NewLaunchConfig(app, address)
	ws := s.windows.load(ctx, app.ID)

	if lerr := s.probe(ctx, app.ID, cfg); lerr != nil {
		return s.fail(app.ID, lerr)
	}

	now := s.now()

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return s.fail(app.ID, ErrDisposed(app.ID))
	}
	if existing, ok := s.processes[app.ID]; ok && existing.IsActive() {
		existing.touch(now)
		snap := existing.snapshot()
		s.mu.Unlock()
		return successResult(app.ID, snap, MessageForeground, now)
	}
	replaced := s.processes[app.ID]

	launchedAt := after(s.lastLaunched[app.ID], now)
	p := newProcess(app.ID, cfg, launchedAt, ws)
	if err := p.markRunning(); err != nil {
		s.mu.Unlock()
		panic(err)
	}
	s.processes[app.ID] = p
	s.lastLaunched[app.ID] = launchedAt
	delete(s.lastFailures, app.ID)
	snap := p.snapshot()
	active := s.activeCountLocked()
	s.mu.Unlock()

	if replaced != nil {
		s.persist(ctx, app.ID, replaced.WindowState)
	}
	s.setActive(active)

	s.logger.Info("Application launched",
		zap.String("app_id", app.ID),
		zap.String("address", address),
		zap.String("instance_id", snap.InstanceID))

	return successResult(app.ID, snap, MessageLaunched, now)
}

// foreground touches an active process and returns a foreground result
func (s *Service) foreground(id string) (LaunchResult, bool) {
	p, ok := s.BringToForeground(id)
	if !ok {
		return LaunchResult{}, false
	}
	return successResult(id, p, MessageForeground, p.LastAccessed), true
}

// resolveTarget returns the address to probe
func (s *Service) resolveTarget(app *types.Application) (string, *LaunchError) {
	if app.Kind == types.KindLocal {
		doc, err := s.locator.Locate(app.ContentDir, app.IndexCandidates)
		if err != nil {
			if lerr, ok := AsLaunchError(err); ok {
				return "", lerr.withApp(app.ID)
			}
			return "", ErrIndexNotFound(app.ContentDir, nil, nil).WithCause(err).withApp(app.ID)
		}
		s.logger.Debug("Located index document",
			zap.String("app_id", app.ID),
			zap.String("path", doc.Path),
			zap.String("title", doc.Title),
			zap.String("charset", doc.Charset))
		return doc.URL, nil
	}

	if err := utils.ValidateURL(app.URL, "url", true); err != nil {
		return "", ErrNetwork(app.ID, app.URL, err)
	}
	return app.URL, nil
}

// probe runs one bounded reachability check
func (s *Service) probe(ctx context.Context, appID string, cfg LaunchConfig) *LaunchError {
	if s.prober == nil {
		return ErrNetwork(appID, cfg.Address(), errors.New("no prober configured"))
	}

	pctx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
	defer cancel()

	start := time.Now()
	status, err := s.prober.Probe(pctx, cfg.Address(), cfg.Headers())
	if s.metrics != nil {
		s.metrics.ObserveProbe(time.Since(start))
	}

	if err != nil {
		return ErrNetwork(appID, cfg.Address(), err)
	}
	if status < 200 || status > 299 {
		return ErrURLNotAccessible(appID, cfg.Address(), status)
	}
	return nil
}

// Stop stops and unregisters a process. Returns false when nothing was
// registered for the id.
func (s *Service) Stop(ctx context.Context, id string) bool {
	timer := monitoring.NewTimer(s.metrics, "stop")
	snap, ok := s.stop(ctx, id)
	if !ok {
		timer.Stop("noop")
		return false
	}
	timer.Stop("success")
	s.emit(successResult(id, snap, MessageStopped, s.now()))
	return true
}

// stop persists the window state, marks the process stopped and removes it
func (s *Service) stop(ctx context.Context, id string) (*Process, bool) {
	s.mu.Lock()
	p, ok := s.processes[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	saved := p.WindowState
	s.mu.Unlock()

	s.persist(ctx, id, saved)

	s.mu.Lock()
	if cur, ok := s.processes[id]; !ok || cur != p {
		// removed or replaced while persisting
		s.mu.Unlock()
		return nil, false
	}
	latest := p.WindowState
	p.markStopped()
	delete(s.processes, id)
	snap := p.snapshot()
	active := s.activeCountLocked()
	s.mu.Unlock()

	if latest != saved {
		s.persist(ctx, id, latest)
	}
	s.setActive(active)

	s.logger.Info("Application stopped", zap.String("app_id", id), zap.String("instance_id", snap.InstanceID))
	return snap, true
}

// cleanupTerminated removes a crashed process left in the registry
func (s *Service) cleanupTerminated(ctx context.Context, id string) {
	s.mu.Lock()
	p, ok := s.processes[id]
	if !ok || !p.IsTerminated() {
		s.mu.Unlock()
		return
	}
	delete(s.processes, id)
	ws := p.WindowState
	s.mu.Unlock()

	s.persist(ctx, id, ws)
}

// Restart stops the application if registered and launches it again.
// Exactly one result is emitted.
func (s *Service) Restart(ctx context.Context, app *types.Application) LaunchResult {
	timer := monitoring.NewTimer(s.metrics, "restart")

	if lerr := validateApplication(app); lerr != nil {
		res := s.fail(appID(app), lerr)
		timer.Stop(outcome(res))
		s.recordLaunch(res)
		return s.emit(res)
	}
	if s.isDisposed() {
		res := s.fail(app.ID, ErrDisposed(app.ID))
		timer.Stop(outcome(res))
		s.recordLaunch(res)
		return s.emit(res)
	}

	s.stop(ctx, app.ID)
	s.cleanupTerminated(ctx, app.ID)

	res := s.launch(ctx, app)
	if res.Success && res.Message == MessageLaunched {
		res.Message = MessageRestarted
	}
	timer.Stop(outcome(res))
	s.recordLaunch(res)
	return s.emit(res)
}

// UpdateWindowState records reported geometry for an active process and
// persists it.
func (s *Service) UpdateWindowState(ctx context.Context, id string, ws WindowState) error {
	if err := ws.Validate(); err != nil {
		return err
	}
	if ws.LastUpdated.IsZero() {
		ws.LastUpdated = s.now()
	}

	s.mu.Lock()
	p, ok := s.processes[id]
	if !ok || p.IsTerminated() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProcessNotFound, id)
	}
	state := ws
	p.WindowState = &state
	s.mu.Unlock()

	// Writes are serialized and always carry the newest geometry
	s.windowMu.Lock()
	defer s.windowMu.Unlock()

	s.mu.Lock()
	latest := p.WindowState.clone()
	s.mu.Unlock()

	return s.windows.save(ctx, id, latest)
}

// BringToForeground touches an active process and returns a snapshot
func (s *Service) BringToForeground(id string) (*Process, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.processes[id]
	if !ok || !p.IsActive() {
		return nil, false
	}
	p.touch(now)
	return p.snapshot(), true
}

// IsApplicationRunning reports whether an active process exists for id
func (s *Service) IsApplicationRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.processes[id]
	return ok && p.IsActive()
}

// GetApplicationProcess returns a snapshot of the registered process,
// including a crashed one awaiting cleanup.
func (s *Service) GetApplicationProcess(id string) (*Process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.processes[id]
	if !ok {
		return nil, false
	}
	return p.snapshot(), true
}

// RunningProcesses returns snapshots of all active processes
func (s *Service) RunningProcesses() []*Process {
	s.mu.Lock()
	defer s.mu.Unlock()

	procs := make([]*Process, 0, len(s.processes))
	for _, p := range s.processes {
		if p.IsActive() {
			procs = append(procs, p.snapshot())
		}
	}
	return procs
}

// LastFailure returns the most recent failure recorded for id
func (s *Service) LastFailure(id string) (*LaunchError, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lerr, ok := s.lastFailures[id]
	return lerr, ok
}

// Stats returns registry statistics
func (s *Service) Stats() Stats {
	s.mu.Lock()
	var st Stats
	for _, p := range s.processes {
		switch p.Status {
		case StatusStarting:
			st.Starting++
		case StatusRunning:
			st.Running++
		case StatusCrashed:
			st.Crashed++
		}
		if p.IsActive() {
			st.Active++
			if !p.IsHealthy {
				st.Unhealthy++
			}
		}
	}
	s.mu.Unlock()

	st.Subscribers = s.events.SubscriberCount()
	return st
}

// Dispose stops the health monitor, stops every process and closes the
// event stream. Later calls are no-ops.
func (s *Service) Dispose(ctx context.Context) {
	s.disposeOnce.Do(func() {
		s.stopMonitor()

		s.mu.Lock()
		s.disposed = true
		snaps := make([]*Process, 0, len(s.processes))
		for id, p := range s.processes {
			p.markStopped()
			snaps = append(snaps, p.snapshot())
			delete(s.processes, id)
		}
		s.mu.Unlock()

		for _, snap := range snaps {
			s.persist(ctx, snap.AppID, snap.WindowState)
			s.emit(successResult(snap.AppID, snap, MessageStopped, s.now()))
		}
		s.setActive(0)

		s.events.Close()
		s.logger.Info("Launcher disposed", zap.Int("stopped", len(snaps)))
	})
}

func (s *Service) isDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// fail builds a failure result and remembers the error for diagnostics
func (s *Service) fail(id string, lerr *LaunchError) LaunchResult {
	lerr.withApp(id)

	if id != "" && lerr.Code != ErrorCodeDisposed && lerr.Code != ErrorCodeInvalidState {
		s.mu.Lock()
		s.lastFailures[id] = lerr
		s.mu.Unlock()
	}

	s.logger.Warn("Launch failed",
		zap.String("app_id", id),
		zap.String("code", string(lerr.Code)),
		zap.Error(lerr))

	var snap *Process
	if p, ok := s.GetApplicationProcess(id); ok {
		snap = p
	}
	return failureResult(id, snap, lerr, s.now())
}

// emit publishes a result and returns it
func (s *Service) emit(res LaunchResult) LaunchResult {
	s.events.Publish(res)
	return res
}

func (s *Service) recordLaunch(res LaunchResult) {
	if s.metrics == nil {
		return
	}
	code, _ := res.Code()
	s.metrics.RecordLaunch(res.Success, string(code))
}

// persist saves a window state, logging failures
func (s *Service) persist(ctx context.Context, id string, ws *WindowState) {
	s.windowMu.Lock()
	defer s.windowMu.Unlock()
	if err := s.windows.save(ctx, id, ws); err != nil {
		s.logger.Error("Failed to persist window state", zap.String("app_id", id), zap.Error(err))
	}
}

func (s *Service) setActive(n int) {
	if s.metrics != nil {
		s.metrics.SetProcessesActive(n)
	}
}

func (s *Service) activeCountLocked() int {
	n := 0
	for _, p := range s.processes {
		if p.IsActive() {
			n++
		}
	}
	return n
}

// validateApplication checks launch preconditions
func validateApplication(app *types.Application) *LaunchError {
	if app == nil {
		return ErrInvalidState("", "missing")
	}
	if err := utils.ValidateID(app.ID, "id", true); err != nil {
		return ErrInvalidState(app.ID, "invalid").WithCause(err)
	}
	if !app.Status.Launchable() {
		return ErrInvalidState(app.ID, string(app.Status))
	}
	return nil
}

func appID(app *types.Application) string {
	if app == nil {
		return ""
	}
	return app.ID
}

func outcome(res LaunchResult) string {
	if res.Success {
		return "success"
	}
	return "failure"
}
