package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/live"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository/memory"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
)

var (
	liveAdmin    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	liveCustomer = domain.Actor{ID: "cust-1", Role: domain.RoleCustomer}
	liveOutsider = domain.Actor{ID: "cust-2", Role: domain.RoleCustomer}
)

type liveFixture struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	handoff    *service.HandoffService
	handler    *LiveHandler
}

func newLiveFixture(t *testing.T) *liveFixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	navigations := live.NewNavigations()
	hub := live.NewHub(live.HubDependencies{
		Dispatcher: dispatcher,
		Tickets:    store.Tickets(),
		Sessions:   store.Sessions(),
		Messages:   store.Messages(),
	})
	svc := service.NewHandoffService(service.HandoffDependencies{
		TicketRepo:  store.Tickets(),
		SessionRepo: store.Sessions(),
		MessageRepo: store.Messages(),
		Dispatcher:  dispatcher,
		Navigator:   navigations,
	})
	return &liveFixture{
		store:      store,
		dispatcher: dispatcher,
		handoff:    svc,
		handler: NewLiveHandler(LiveDependencies{
			Hub:         hub,
			Navigations: navigations,
			Handoff:     svc,
			Heartbeat:   time.Hour,
		}),
	}
}

func (f *liveFixture) seedTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		CustomerID: liveCustomer.ID,
		Title:      "Invoice missing",
		Status:     domain.TicketStatusPending,
		Priority:   domain.TicketPriorityMedium,
	}
	require.NoError(t, f.store.Tickets().Create(context.Background(), ticket))
	return ticket
}

type sseEvent struct {
	name string
	data string
}

// sseStream runs a stream body against a pipe and parses what it writes.
type sseStream struct {
	events chan sseEvent
	done   chan error
	cancel context.CancelFunc
}

func openStream(t *testing.T, body func(context.Context, *bufio.Writer) error) *sseStream {
	t.Helper()
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	s := &sseStream{
		events: make(chan sseEvent, 256),
		done:   make(chan error, 1),
		cancel: cancel,
	}
	go func() {
		err := body(ctx, bufio.NewWriter(pw))
		pw.Close()
		s.done <- err
	}()
	go func() {
		defer close(s.events)
		scanner := bufio.NewScanner(pr)
		var current sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				if current.name != "" {
					s.events <- current
				}
				current = sseEvent{}
			case strings.HasPrefix(line, "event: "):
				current.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				current.data = strings.TrimPrefix(line, "data: ")
			}
		}
	}()
	t.Cleanup(func() {
		cancel()
		pr.Close()
	})
	return s
}

func (s *sseStream) next(t *testing.T) (sseEvent, bool) {
	t.Helper()
	select {
	case e, ok := <-s.events:
		return e, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a stream event")
		return sseEvent{}, false
	}
}

// until reads events up to and including the first one named name.
func (s *sseStream) until(t *testing.T, name string) []sseEvent {
	t.Helper()
	var seen []sseEvent
	for {
		e, ok := s.next(t)
		require.True(t, ok, "stream ended before %q", name)
		seen = append(seen, e)
		if e.name == name {
			return seen
		}
	}
}

// drain cancels the stream and returns everything written before it ended.
func (s *sseStream) drain(t *testing.T) []sseEvent {
	t.Helper()
	s.cancel()
	var rest []sseEvent
	for {
		e, ok := s.next(t)
		if !ok {
			return rest
		}
		rest = append(rest, e)
	}
}

func decodeData[T any](t *testing.T, e sseEvent) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(e.data), &v), e.data)
	return v
}

func countNamed(list []sseEvent, name string) int {
	n := 0
	for _, e := range list {
		if e.name == name {
			n++
		}
	}
	return n
}

func TestTicketStreamRedirectsCustomerOnce(t *testing.T) {
	ctx := context.Background()
	f := newLiveFixture(t)
	ticket := f.seedTicket(t)

	filter := live.TicketFilter{CustomerID: liveCustomer.ID, Limit: adminQueueLimit}
	stream := openStream(t, f.handler.ticketStream(liveCustomer, filter, handoff.TicketList()))

	first := stream.until(t, sseTickets)
	list := decodeData[[]map[string]any](t, first[len(first)-1])
	require.Len(t, list, 1)
	assert.Equal(t, ticket.ID, list[0]["id"])

	result, err := f.handoff.Accept(ctx, liveAdmin, ticket.ID)
	require.NoError(t, err)

	seen := stream.until(t, sseNavigate)
	nav := decodeData[navigatePayload](t, seen[len(seen)-1])
	assert.Equal(t, "live-chat/"+result.Session.ID, nav.To)

	// Another snapshot of the same accepted ticket.
	require.NoError(t, f.dispatcher.Publish(ctx, events.Event{
		Type:       events.EventTicketStatusChanged,
		TicketID:   ticket.ID,
		CustomerID: liveCustomer.ID,
	}))
	seen = append(seen, stream.until(t, sseTickets)...)
	seen = append(seen, stream.drain(t)...)

	assert.Equal(t, 1, countNamed(seen, sseNavigate))
	assert.NoError(t, <-stream.done)
}

func TestTicketStreamDoesNotRedirectAdmins(t *testing.T) {
	ctx := context.Background()
	f := newLiveFixture(t)
	ticket := f.seedTicket(t)

	stream := openStream(t, f.handler.ticketStream(liveAdmin, live.TicketFilter{Limit: adminQueueLimit}, handoff.TicketList()))
	stream.until(t, sseTickets)

	_, err := f.handoff.Accept(ctx, liveAdmin, ticket.ID)
	require.NoError(t, err)

	seen := stream.until(t, sseTickets)
	seen = append(seen, stream.drain(t)...)
	assert.Zero(t, countNamed(seen, sseNavigate))
}

func TestSessionStreamLeavesWhenSessionDisappears(t *testing.T) {
	ctx := context.Background()
	f := newLiveFixture(t)
	ticket := f.seedTicket(t)

	result, err := f.handoff.Accept(ctx, liveAdmin, ticket.ID)
	require.NoError(t, err)
	sessionID := result.Session.ID
	_, err = f.handoff.OpenSession(ctx, liveAdmin, sessionID)
	require.NoError(t, err)

	stream := openStream(t, f.handler.sessionStream(liveCustomer, sessionID))
	seen := stream.until(t, sseSession)
	state := decodeData[map[string]any](t, seen[len(seen)-1])
	assert.Equal(t, string(handoff.StateSessionActive), state["state"])

	f.store.DeleteSession(sessionID)
	require.NoError(t, f.dispatcher.Publish(ctx, events.Event{
		Type:       events.EventSessionUpdated,
		SessionID:  sessionID,
		CustomerID: liveCustomer.ID,
	}))

	seen = stream.until(t, sseError)
	assert.Equal(t, "NOT_FOUND", decodeData[errorPayload](t, seen[len(seen)-1]).Code)

	nav, ok := stream.next(t)
	require.True(t, ok)
	assert.Equal(t, sseNavigate, nav.name)
	assert.Equal(t, "ticket-list", decodeData[navigatePayload](t, nav).To)

	_, ok = stream.next(t)
	assert.False(t, ok, "stream should end after leaving")
	assert.NoError(t, <-stream.done)
}

func TestSessionStreamDeniesNonParticipant(t *testing.T) {
	ctx := context.Background()
	f := newLiveFixture(t)
	ticket := f.seedTicket(t)

	result, err := f.handoff.Accept(ctx, liveAdmin, ticket.ID)
	require.NoError(t, err)

	stream := openStream(t, f.handler.sessionStream(liveOutsider, result.Session.ID))

	seen := stream.until(t, sseError)
	assert.Equal(t, "ACCESS_DENIED", decodeData[errorPayload](t, seen[len(seen)-1]).Code)
	assert.Zero(t, countNamed(seen, sseSession))

	nav, ok := stream.next(t)
	require.True(t, ok)
	assert.Equal(t, "ticket-list", decodeData[navigatePayload](t, nav).To)
	assert.NoError(t, <-stream.done)
}

func TestSessionStreamForwardsNavigation(t *testing.T) {
	ctx := context.Background()
	f := newLiveFixture(t)
	ticket := f.seedTicket(t)

	result, err := f.handoff.Accept(ctx, liveAdmin, ticket.ID)
	require.NoError(t, err)

	stream := openStream(t, f.handler.sessionStream(liveCustomer, result.Session.ID))
	stream.until(t, sseSession)

	f.handler.navigations.Navigate(ctx, liveCustomer.ID, handoff.TicketList())

	seen := stream.until(t, sseNavigate)
	assert.Equal(t, "ticket-list", decodeData[navigatePayload](t, seen[len(seen)-1]).To)
	stream.drain(t)
}
