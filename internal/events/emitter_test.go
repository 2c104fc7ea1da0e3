package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitterDeliversInSubscriptionOrder(t *testing.T) {
	e := NewEmitter[int]()

	var seen []string
	e.On(func(v int) { seen = append(seen, "first") })
	e.On(func(v int) { seen = append(seen, "second") })

	e.Emit(1)

	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestDisposeRemovesHandler(t *testing.T) {
	e := NewEmitter[string]()

	var calls int
	d := e.On(func(string) { calls++ })

	e.Emit("a")
	d.Dispose()
	e.Emit("b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Len())
}

func TestDisposeIsIdempotent(t *testing.T) {
	e := NewEmitter[struct{}]()

	d := e.On(func(struct{}) {})
	d.Dispose()
	d.Dispose()

	assert.Equal(t, 0, e.Len())

	// Disposing after Clear must also be a no-op.
	d2 := e.On(func(struct{}) {})
	e.Clear()
	d2.Dispose()
	assert.Equal(t, 0, e.Len())
}

func TestClearDropsAllSubscriptions(t *testing.T) {
	e := NewEmitter[int]()

	var calls int
	e.On(func(int) { calls++ })
	e.On(func(int) { calls++ })

	e.Clear()
	e.Emit(7)

	assert.Equal(t, 0, calls)
}
