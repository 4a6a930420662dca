// Package live turns the change feed into per-observer snapshot streams for
// ticket lists and live-chat sessions.
package live

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

// TicketFilter selects the tickets of a list view. An empty CustomerID lists every customer.
type TicketFilter struct {
	CustomerID string
	Statuses   []domain.TicketStatus
	Limit      int
}

// TicketSnapshot is the latest ticket list. Err reports a failed read; the
// stream stays open and retries on the next change.
type TicketSnapshot struct {
	Tickets []domain.Ticket
	Err     error
}

// SessionSnapshot is the latest state of one session and its owning ticket.
// Err wraps handoff.ErrNotFound when the session no longer exists, which is terminal.
type SessionSnapshot struct {
	Session *domain.LiveChatSession
	Ticket  *domain.Ticket
	State   handoff.State
	Err     error
}

// MessagesSnapshot is the ordered message log of a session.
type MessagesSnapshot struct {
	SessionID string
	Messages  []domain.ChatMessage
	Err       error
}

// HubDependencies lists collaborators of the Hub.
type HubDependencies struct {
	Dispatcher events.Dispatcher
	Tickets    repository.TicketRepository
	Sessions   repository.SessionRepository
	Messages   repository.ChatMessageRepository
	Logger     *zap.Logger
}

// Hub fans change events out to subscriptions.
type Hub struct {
	tickets  repository.TicketRepository
	sessions repository.SessionRepository
	messages repository.ChatMessageRepository
	logger   *zap.Logger

	mu       sync.Mutex
	nextID   uint64
	watchers map[uint64]*watcher
}

type watcher struct {
	matches func(events.Event) bool
	notify  chan struct{}
}

// NewHub builds a Hub and registers it on the dispatcher.
func NewHub(deps HubDependencies) *Hub {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		tickets:  deps.Tickets,
		sessions: deps.Sessions,
		messages: deps.Messages,
		logger:   logger,
		watchers: make(map[uint64]*watcher),
	}
	if deps.Dispatcher != nil {
		events.SubscribeAll(deps.Dispatcher, h.onEvent)
	}
	return h
}

// Active returns the number of open subscriptions.
func (h *Hub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

func (h *Hub) onEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.watchers {
		if !w.matches(event) {
			continue
		}
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
	return nil
}

func (h *Hub) register(matches func(events.Event) bool) (uint64, *watcher) {
	w := &watcher{matches: matches, notify: make(chan struct{}, 1)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.watchers[h.nextID] = w
	return h.nextID, w
}

func (h *Hub) unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers, id)
}

// subscribe runs load once up front and again after every matching event.
// load reports terminal snapshots, after which the stream closes.
func subscribe[T any](ctx context.Context, h *Hub, matches func(events.Event) bool, load func(context.Context) (T, bool)) *Subscription[T] {
	subCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription[T](cancel)
	id, w := h.register(matches)

	go func() {
		defer close(sub.out)
		defer h.unregister(id)
		defer cancel()
		for {
			snapshot, terminal := load(subCtx)
			if subCtx.Err() != nil {
				return
			}
			sub.deliver(snapshot)
			if terminal {
				return
			}
			select {
			case <-subCtx.Done():
				return
			case <-w.notify:
			}
		}
	}()
	return sub
}

// SubscribeTickets streams ticket list snapshots.
func (h *Hub) SubscribeTickets(ctx context.Context, filter TicketFilter) *Subscription[TicketSnapshot] {
	repoFilter := repository.TicketFilter{Statuses: filter.Statuses, Limit: filter.Limit}
	if filter.CustomerID != "" {
		customerID := filter.CustomerID
		repoFilter.CustomerID = &customerID
	}
	matches := func(e events.Event) bool {
		if e.Type != events.EventTicketCreated && e.Type != events.EventTicketStatusChanged {
			return false
		}
		return filter.CustomerID == "" || e.CustomerID == filter.CustomerID
	}
	return subscribe(ctx, h, matches, func(ctx context.Context) (TicketSnapshot, bool) {
		tickets, err := h.tickets.List(ctx, repoFilter)
		if err != nil && ctx.Err() == nil {
			h.logger.Warn("ticket snapshot failed", zap.Error(err))
		}
		return TicketSnapshot{Tickets: tickets, Err: err}, false
	})
}

// SubscribeSession streams a session together with its ticket.
func (h *Hub) SubscribeSession(ctx context.Context, sessionID string) *Subscription[SessionSnapshot] {
	matches := func(e events.Event) bool {
		switch e.Type {
		case events.EventSessionCreated, events.EventSessionUpdated, events.EventSessionClosed, events.EventTicketStatusChanged:
			return e.SessionID == sessionID
		}
		return false
	}
	return subscribe(ctx, h, matches, func(ctx context.Context) (SessionSnapshot, bool) {
		session, err := h.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return sessionFailure(err)
		}
		snapshot := SessionSnapshot{Session: session}
		if session.TicketID != "" {
			if ticket, err := h.tickets.GetByID(ctx, session.TicketID); err == nil {
				snapshot.Ticket = ticket
			}
		}
		snapshot.State = handoff.Derive(snapshot.Ticket, session)
		return snapshot, false
	})
}

// SubscribeMessages streams the ordered message log of a session.
func (h *Hub) SubscribeMessages(ctx context.Context, sessionID string) *Subscription[MessagesSnapshot] {
	matches := func(e events.Event) bool {
		switch e.Type {
		case events.EventChatMessageAppended, events.EventSessionUpdated, events.EventSessionClosed:
			return e.SessionID == sessionID
		}
		return false
	}
	return subscribe(ctx, h, matches, func(ctx context.Context) (MessagesSnapshot, bool) {
		if _, err := h.sessions.GetByID(ctx, sessionID); err != nil {
			snap, terminal := sessionFailure(err)
			return MessagesSnapshot{SessionID: sessionID, Err: snap.Err}, terminal
		}
		msgs, err := h.messages.ListBySession(ctx, sessionID)
		return MessagesSnapshot{SessionID: sessionID, Messages: msgs, Err: err}, false
	})
}

func sessionFailure(err error) (SessionSnapshot, bool) {
	if errors.Is(err, repository.ErrNotFound) {
		return SessionSnapshot{Err: handoff.ErrNotFound}, true
	}
	return SessionSnapshot{Err: err}, false
}
