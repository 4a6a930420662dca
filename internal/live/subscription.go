package live

import (
	"context"
	"sync"
)

// Subscription is a cancellable stream of snapshots. Delivery is latest-wins:
// a slow reader skips intermediate snapshots but never sees them out of order.
type Subscription[T any] struct {
	out       chan T
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newSubscription[T any](cancel context.CancelFunc) *Subscription[T] {
	return &Subscription[T]{out: make(chan T, 1), cancel: cancel}
}

// C returns the snapshot channel. It is closed once the subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(s.cancel)
}

// deliver replaces any undelivered snapshot with v. Only the producer goroutine calls it.
func (s *Subscription[T]) deliver(v T) {
	select {
	case s.out <- v:
		return
	default:
	}
	select {
	case <-s.out:
	default:
	}
	s.out <- v
}
