// Package events implements typed subscription registries with
// disposable handles, so lifecycle teardown can deterministically release
// every listener it registered.
package events

import "sync"

// Disposable releases a subscription. Dispose is idempotent and safe to
// call on subscriptions that were never delivered an event.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a plain function to a one-shot Disposable.
type DisposableFunc struct {
	once sync.Once
	fn   func()
}

// NewDisposable wraps fn so it runs at most once.
func NewDisposable(fn func()) *DisposableFunc {
	return &DisposableFunc{fn: fn}
}

// Dispose runs the wrapped function on the first call only.
func (d *DisposableFunc) Dispose() {
	d.once.Do(func() {
		if d.fn != nil {
			d.fn()
		}
	})
}

// Emitter fans a value out to subscribed handlers in subscription order.
type Emitter[T any] struct {
	mu       sync.Mutex
	next     int
	order    []int
	handlers map[int]func(T)
}

// NewEmitter creates an empty emitter.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{handlers: make(map[int]func(T))}
}

// On subscribes handler and returns its disposable handle.
func (e *Emitter[T]) On(handler func(T)) Disposable {
	e.mu.Lock()
	defer e.mu.Unlock()

	token := e.next
	e.next++
	e.handlers[token] = handler
	e.order = append(e.order, token)

	return NewDisposable(func() { e.remove(token) })
}

// Emit delivers value to every current subscriber.
func (e *Emitter[T]) Emit(value T) {
	e.mu.Lock()
	handlers := make([]func(T), 0, len(e.order))
	for _, token := range e.order {
		if h, ok := e.handlers[token]; ok {
			handlers = append(handlers, h)
		}
	}
	e.mu.Unlock()

	for _, h := range handlers {
		h(value)
	}
}

// Clear drops every subscription. Outstanding disposables remain safe to
// call afterwards.
func (e *Emitter[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers = make(map[int]func(T))
	e.order = nil
}

// Len reports the number of live subscriptions.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.handlers)
}

func (e *Emitter[T]) remove(token int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.handlers, token)
	for i, t := range e.order {
		if t == token {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}
