// Package viewstate holds per-screen state and runs loads off the
// foreground loop.
//
// Observable state is only written from the Loop goroutine. Repository
// calls run on a Pool and post their outcome back to the Loop.
package viewstate

import "sync"

// Observable is a value with synchronous change observers.
type Observable[T any] struct {
	mu        sync.RWMutex
	value     T
	next      int
	observers map[int]func(T)
}

// NewObservable returns an Observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, observers: map[int]func(T){}}
}

// Get returns the current value. Safe from any goroutine.
func (o *Observable[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

// Set stores v and calls every observer with it before returning.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	o.value = v
	fns := make([]func(T), 0, len(o.observers))
	for i := 0; i < o.next; i++ {
		if fn, ok := o.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Observe registers fn and returns a func that unregisters it.
func (o *Observable[T]) Observe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	id := o.next
	o.next++
	o.observers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.observers, id)
		o.mu.Unlock()
	}
}

// LoadState is the tri-state loading flag of a holder.
type LoadState int

const (
	Unknown LoadState = iota
	Idle
	Loading
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	default:
		return "unknown"
	}
}
