package live

import (
	"context"
	"sync"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
)

// Navigations delivers forced navigation to the portals a user has open.
// It implements handoff.Navigator.
type Navigations struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]*Subscription[handoff.View]
}

var _ handoff.Navigator = (*Navigations)(nil)

// NewNavigations returns an empty registry.
func NewNavigations() *Navigations {
	return &Navigations{subs: make(map[string]map[uint64]*Subscription[handoff.View])}
}

// Subscribe streams navigation requests for userID until ctx ends or the
// subscription is closed. Only the latest undelivered request is kept.
func (n *Navigations) Subscribe(ctx context.Context, userID string) *Subscription[handoff.View] {
	subCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription[handoff.View](cancel)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[uint64]*Subscription[handoff.View])
	}
	n.subs[userID][id] = sub
	n.mu.Unlock()

	go func() {
		<-subCtx.Done()
		n.mu.Lock()
		delete(n.subs[userID], id)
		if len(n.subs[userID]) == 0 {
			delete(n.subs, userID)
		}
		close(sub.out)
		n.mu.Unlock()
	}()
	return sub
}

// Navigate sends view to every open stream of userID. Users without an open
// portal are skipped.
func (n *Navigations) Navigate(_ context.Context, userID string, view handoff.View) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs[userID] {
		sub.deliver(view)
	}
}

// Listeners returns the number of open navigation streams.
func (n *Navigations) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, subs := range n.subs {
		total += len(subs)
	}
	return total
}
