package live

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository/memory"
)

type fixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	hub        *Hub
}

func newFixture() *fixture {
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	hub := NewHub(HubDependencies{
		Dispatcher: dispatcher,
		Tickets:    store.Tickets(),
		Sessions:   store.Sessions(),
		Messages:   store.Messages(),
	})
	return &fixture{store: store, dispatcher: dispatcher, hub: hub}
}

func next[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

func (f *fixture) publish(t *testing.T, e events.Event) {
	t.Helper()
	require.NoError(t, f.dispatcher.Publish(context.Background(), e))
}

func TestTicketSubscriptionFollowsChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sub := f.hub.SubscribeTickets(ctx, TicketFilter{CustomerID: "c1"})
	defer sub.Close()

	assert.Empty(t, next(t, sub).Tickets)

	ticket := &domain.Ticket{CustomerID: "c1", Title: "login", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityLow}
	require.NoError(t, f.store.Tickets().Create(ctx, ticket))
	f.publish(t, events.Event{Type: events.EventTicketCreated, TicketID: ticket.ID, CustomerID: "c1"})

	snap := next(t, sub)
	require.Len(t, snap.Tickets, 1)
	assert.Equal(t, ticket.ID, snap.Tickets[0].ID)

	// Another customer's ticket does not wake this observer.
	f.publish(t, events.Event{Type: events.EventTicketCreated, CustomerID: "c2"})
	select {
	case <-sub.C():
		t.Fatal("unexpected snapshot")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionSubscriptionDerivesState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ticket := &domain.Ticket{CustomerID: "c1", Title: "vpn", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityHigh}
	require.NoError(t, f.store.Tickets().Create(ctx, ticket))
	session := &domain.LiveChatSession{TicketID: ticket.ID, CustomerID: "c1"}
	require.NoError(t, f.store.Sessions().Create(ctx, session))
	_, err := f.store.Tickets().MarkInProgress(ctx, ticket.ID, session.ID)
	require.NoError(t, err)

	sub := f.hub.SubscribeSession(ctx, session.ID)
	defer sub.Close()
	assert.Equal(t, handoff.StateSessionOpenUnstaffed, next(t, sub).State)

	_, err = f.store.Sessions().AssignConsultant(ctx, session.ID, "a1", time.Now())
	require.NoError(t, err)
	f.publish(t, events.Event{Type: events.EventSessionUpdated, SessionID: session.ID})
	assert.Equal(t, handoff.StateSessionActive, next(t, sub).State)
}

func TestDeletedSessionIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ticket := &domain.Ticket{CustomerID: "c1", Title: "x", Status: domain.TicketStatusPending, Priority: domain.TicketPriorityLow}
	require.NoError(t, f.store.Tickets().Create(ctx, ticket))
	session := &domain.LiveChatSession{TicketID: ticket.ID, CustomerID: "c1"}
	require.NoError(t, f.store.Sessions().Create(ctx, session))

	sub := f.hub.SubscribeMessages(ctx, session.ID)
	defer sub.Close()
	require.NoError(t, next(t, sub).Err)

	f.store.DeleteSession(session.ID)
	f.publish(t, events.Event{Type: events.EventSessionUpdated, SessionID: session.ID})

	snap := next(t, sub)
	assert.ErrorIs(t, snap.Err, handoff.ErrNotFound)
	_, open := <-sub.C()
	assert.False(t, open)
	assert.Eventually(t, func() bool { return f.hub.Active() == 0 }, time.Second, 10*time.Millisecond)
}

func TestUnknownSessionEndsImmediately(t *testing.T) {
	f := newFixture()
	sub := f.hub.SubscribeSession(context.Background(), "missing")
	snap := next(t, sub)
	assert.ErrorIs(t, snap.Err, handoff.ErrNotFound)
	_, open := <-sub.C()
	assert.False(t, open)
}

func TestCloseAndCancelUnregister(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())

	byClose := f.hub.SubscribeTickets(context.Background(), TicketFilter{})
	byContext := f.hub.SubscribeTickets(ctx, TicketFilter{})
	next(t, byClose)
	next(t, byContext)
	assert.Equal(t, 2, f.hub.Active())

	byClose.Close()
	byClose.Close()
	cancel()

	assert.Eventually(t, func() bool { return f.hub.Active() == 0 }, time.Second, 10*time.Millisecond)
	for range byClose.C() {
	}
	for range byContext.C() {
	}
}

func TestLatestWinsDelivery(t *testing.T) {
	sub := newSubscription[int](func() {})
	sub.deliver(1)
	sub.deliver(2)
	sub.deliver(3)
	assert.Equal(t, 3, <-sub.C())
	select {
	case v := <-sub.C():
		t.Fatalf("stale snapshot %d delivered", v)
	default:
	}
}
