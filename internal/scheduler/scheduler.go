// Package scheduler debounces user-activity signals into idle-triggered
// state saves. One qualifying signal arms a single deferred save; the
// save runs at the host's next idle opportunity once the debounce
// interval has elapsed, and further signals while armed are ignored.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/nightjar-editor/nightjar/internal/logging"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"go.uber.org/zap"
)

// State represents the scheduler state.
type State int

const (
	StateIdle State = iota
	StatePendingSave
	StateUnloaded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingSave:
		return "pending-save"
	case StateUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// IdleHost schedules low-priority deferred work for the host's next idle
// opportunity. The returned cancel function revokes a callback that has
// not yet run and is safe to call more than once.
type IdleHost interface {
	RequestIdleCallback(fn func()) (cancel func())
}

// TimerFactory schedules fn to run after d and returns a stop function.
// Injectable so tests can drive time by hand.
type TimerFactory func(d time.Duration, fn func()) (stop func())

// Settings configures the scheduler.
type Settings struct {
	// Debounce is the minimum interval between the activity signal and
	// the earliest moment the save may run.
	Debounce time.Duration
	// Idle provides the host idle opportunity.
	Idle IdleHost
	// Timer schedules the debounce delay. Defaults to time.AfterFunc.
	Timer TimerFactory
	// Save is invoked exactly once per armed cycle.
	Save func(ctx context.Context, opts types.SaveOptions) error
	// OnStateChange is called whenever the state changes.
	OnStateChange func(from State, to State)
	Logger        *logging.Logger
}

// Scheduler is the save-debouncing state machine.
type Scheduler struct {
	settings Settings

	mu          sync.Mutex
	state       State
	cancelTimer func()
	cancelIdle  func()
}

// New creates a scheduler in the idle state.
func New(settings Settings) *Scheduler {
	if settings.Debounce == 0 {
		settings.Debounce = 2 * time.Second
	}
	if settings.Timer == nil {
		settings.Timer = func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		}
	}
	if settings.Logger == nil {
		settings.Logger = logging.NewNop()
	}

	return &Scheduler{settings: settings, state: StateIdle}
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NoteActivity records a qualifying input signal (keyboard or pointer
// press). The first signal while idle arms one deferred save; signals
// while already armed or after unload are ignored.
func (s *Scheduler) NoteActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return
	}
	s.setState(StatePendingSave)
	s.cancelTimer = s.settings.Timer(s.settings.Debounce, s.requestIdle)
}

// Unload transitions the scheduler to its terminal state: no further
// saves are scheduled, though a save already in flight is unaffected.
// Idempotent.
func (s *Scheduler) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateUnloaded {
		return
	}
	s.cancelPendingLocked()
	s.setState(StateUnloaded)
}

// Destroy releases every scheduled callback. Safe to call repeatedly and
// when nothing was ever scheduled.
func (s *Scheduler) Destroy() {
	s.Unload()
}

func (s *Scheduler) requestIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePendingSave {
		return
	}
	if s.settings.Idle == nil {
		// No idle host: treat timer expiry itself as the opportunity.
		go s.fire()
		return
	}
	s.cancelIdle = s.settings.Idle.RequestIdleCallback(s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.state != StatePendingSave {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.settings.Save(context.Background(), types.SaveOptions{IsUnloading: false}); err != nil {
		s.settings.Logger.Warn("scheduled state save failed", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimer = nil
	s.cancelIdle = nil
	if s.state == StatePendingSave {
		s.setState(StateIdle)
	}
}

func (s *Scheduler) cancelPendingLocked() {
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
	if s.cancelIdle != nil {
		s.cancelIdle()
		s.cancelIdle = nil
	}
}

func (s *Scheduler) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	if s.settings.OnStateChange != nil {
		s.settings.OnStateChange(from, to)
	}
}
