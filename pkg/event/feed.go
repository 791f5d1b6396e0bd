package event

import (
	"github.com/sasha-s/go-deadlock"
)

// Feed is an observer list with synchronous dispatch: Send invokes every
// registered handler on the calling goroutine before returning. Handlers that
// block stall the sender, which for simulation events is deliberate: the
// physics loop's frame time absorbs slow subscribers and feeds into time
// dilation instead of queueing unbounded work.
type Feed[T any] struct {
	mutex    deadlock.Mutex
	handlers []func(T)
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{}
}

// Notify registers a handler. Handlers cannot be removed; subscribers with a
// shorter lifetime than the feed should check their own done state.
func (f *Feed[T]) Notify(handler func(T)) {
	f.mutex.Lock()
	f.handlers = append(f.handlers, handler)
	f.mutex.Unlock()
}

// Send dispatches value to every handler in registration order. The handler
// list is snapshotted first so a handler may register further handlers
// without deadlocking.
func (f *Feed[T]) Send(value T) {
	f.mutex.Lock()
	handlers := make([]func(T), len(f.handlers))
	copy(handlers, f.handlers)
	f.mutex.Unlock()

	for _, handler := range handlers {
		handler(value)
	}
}
