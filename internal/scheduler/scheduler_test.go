package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTimer captures scheduled callbacks so tests can advance time by
// hand.
type manualTimer struct {
	mu      sync.Mutex
	pending []func()
	stopped int
}

func (m *manualTimer) factory() TimerFactory {
	return func(d time.Duration, fn func()) func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.pending = append(m.pending, fn)
		return func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.stopped++
		}
	}
}

func (m *manualTimer) fireAll() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// manualIdle captures idle callbacks for explicit firing.
type manualIdle struct {
	mu       sync.Mutex
	pending  []func()
	requests int
}

func (m *manualIdle) RequestIdleCallback(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
	m.requests++
	return func() {}
}

func (m *manualIdle) fireAll() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

type saveRecorder struct {
	mu    sync.Mutex
	calls []types.SaveOptions
}

func (r *saveRecorder) save(ctx context.Context, opts types.SaveOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, opts)
	return nil
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestScheduler(t *testing.T) (*Scheduler, *manualTimer, *manualIdle, *saveRecorder) {
	t.Helper()

	timer := &manualTimer{}
	idle := &manualIdle{}
	rec := &saveRecorder{}

	s := New(Settings{
		Debounce: time.Second,
		Idle:     idle,
		Timer:    timer.factory(),
		Save:     rec.save,
	})
	return s, timer, idle, rec
}

func TestSingleActivityTriggersOneSave(t *testing.T) {
	s, timer, idle, rec := newTestScheduler(t)

	s.NoteActivity()
	assert.Equal(t, StatePendingSave, s.State())

	timer.fireAll()
	idle.fireAll()

	require.Equal(t, 1, rec.count())
	assert.False(t, rec.calls[0].IsUnloading)
	assert.Equal(t, StateIdle, s.State())
}

func TestRepeatedActivityDoesNotReschedule(t *testing.T) {
	s, timer, idle, rec := newTestScheduler(t)

	s.NoteActivity()
	s.NoteActivity()
	s.NoteActivity()

	timer.fireAll()
	idle.fireAll()

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 1, idle.requests)
}

func TestActivityAfterSaveArmsAgain(t *testing.T) {
	s, timer, idle, rec := newTestScheduler(t)

	s.NoteActivity()
	timer.fireAll()
	idle.fireAll()
	require.Equal(t, 1, rec.count())

	s.NoteActivity()
	timer.fireAll()
	idle.fireAll()
	assert.Equal(t, 2, rec.count())
}

func TestUnloadStopsFutureSaves(t *testing.T) {
	s, timer, idle, rec := newTestScheduler(t)

	s.Unload()
	assert.Equal(t, StateUnloaded, s.State())

	s.NoteActivity()
	timer.fireAll()
	idle.fireAll()

	assert.Equal(t, 0, rec.count())
}

func TestUnloadCancelsArmedSave(t *testing.T) {
	s, timer, idle, rec := newTestScheduler(t)

	s.NoteActivity()
	s.Unload()

	timer.fireAll()
	idle.fireAll()

	assert.Equal(t, 0, rec.count())
	assert.Equal(t, StateUnloaded, s.State())
}

func TestUnloadIsIdempotent(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)

	s.Unload()
	s.Unload()
	s.Destroy()

	assert.Equal(t, StateUnloaded, s.State())
}

func TestDestroyWithoutScheduling(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)

	// Nothing was ever armed; Destroy must still be safe.
	s.Destroy()
	s.Destroy()

	assert.Equal(t, StateUnloaded, s.State())
}

func TestStateChangeHook(t *testing.T) {
	timer := &manualTimer{}
	idle := &manualIdle{}
	rec := &saveRecorder{}

	var transitions []string
	s := New(Settings{
		Debounce: time.Second,
		Idle:     idle,
		Timer:    timer.factory(),
		Save:     rec.save,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})

	s.NoteActivity()
	timer.fireAll()
	idle.fireAll()
	s.Unload()

	assert.Equal(t, []string{
		"idle>pending-save",
		"pending-save>idle",
		"idle>unloaded",
	}, transitions)
}
