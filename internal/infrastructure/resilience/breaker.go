package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a breaker
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold uint32
	// Cooldown is how long the circuit stays open before letting a trial through
	Cooldown time.Duration
	// HalfOpenRequests is the number of trial requests, all of which must
	// succeed to close the circuit again
	HalfOpenRequests uint32
	// OnStateChange is called whenever the state changes, outside the lock
	OnStateChange func(name string, from State, to State)
	// Now overrides the clock in tests
	Now func() time.Time
}

// DefaultSettings suits probing a single application endpoint
func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		Cooldown:         15 * time.Second,
		HalfOpenRequests: 1,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.FailureThreshold == 0 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.Cooldown <= 0 {
		s.Cooldown = def.Cooldown
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = def.HalfOpenRequests
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Counts holds breaker statistics since the last state change
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker fails calls fast once a target keeps failing
type Breaker struct {
	name     string
	settings Settings

	mu       sync.Mutex
	state    State     // Protected by mu
	counts   Counts    // Protected by mu
	openedAt time.Time // Protected by mu
	inFlight uint32    // Protected by mu, half-open trials only
}

// New creates a breaker; zero fields in settings take DefaultSettings values
func New(name string, settings Settings) *Breaker {
	return &Breaker{
		name:     name,
		settings: settings.withDefaults(),
		state:    StateClosed,
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, moving open to half-open once the
// cooldown has passed
func (b *Breaker) State() State {
	b.mu.Lock()
	state, change := b.refreshLocked()
	b.mu.Unlock()

	b.notify(change)
	return state
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do runs fn if the circuit allows it and records the outcome.
// A panic in fn counts as a failure and is re-raised.
func (b *Breaker) Do(fn func() error) (err error) {
	if err := b.allow(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.record(false)
			panic(r)
		}
	}()

	err = fn()
	b.record(err == nil)
	return err
}

// Reset closes the circuit and clears the counts
func (b *Breaker) Reset() {
	b.mu.Lock()
	change := b.setStateLocked(StateClosed)
	b.counts = Counts{}
	b.mu.Unlock()

	b.notify(change)
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	state, change := b.refreshLocked()

	var err error
	switch state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if b.inFlight >= b.settings.HalfOpenRequests {
			err = ErrTooManyRequests
		} else {
			b.inFlight++
		}
	}
	if err == nil {
		b.counts.Requests++
	}
	b.mu.Unlock()

	b.notify(change)
	return err
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	var change *transition

	if b.state == StateHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}

	if success {
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.HalfOpenRequests {
			change = b.setStateLocked(StateClosed)
		}
	} else {
		b.counts.TotalFailures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		switch b.state {
		case StateClosed:
			if b.counts.ConsecutiveFailures >= b.settings.FailureThreshold {
				change = b.setStateLocked(StateOpen)
			}
		case StateHalfOpen:
			change = b.setStateLocked(StateOpen)
		}
	}
	b.mu.Unlock()

	b.notify(change)
}

type transition struct {
	from, to State
}

func (b *Breaker) refreshLocked() (State, *transition) {
	if b.state == StateOpen && !b.settings.Now().Before(b.openedAt.Add(b.settings.Cooldown)) {
		return StateHalfOpen, b.setStateLocked(StateHalfOpen)
	}
	return b.state, nil
}

func (b *Breaker) setStateLocked(state State) *transition {
	if b.state == state {
		return nil
	}

	prev := b.state
	b.state = state
	b.counts = Counts{}
	b.inFlight = 0
	if state == StateOpen {
		b.openedAt = b.settings.Now()
	}
	return &transition{from: prev, to: state}
}

func (b *Breaker) notify(change *transition) {
	if change != nil && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, change.from, change.to)
	}
}
