package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/live"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/observability"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
)

// Server-sent event names.
const (
	sseTickets  = "tickets"
	sseSession  = "session"
	sseMessages = "messages"
	sseNavigate = "navigate"
	sseError    = "error"
)

const adminQueueLimit = 200

// LiveHandler streams live-query snapshots as server-sent events. Streams
// end when the client disconnects or the server context is cancelled.
type LiveHandler struct {
	base        context.Context
	hub         *live.Hub
	navigations *live.Navigations
	handoff     *service.HandoffService
	metrics     *observability.Metrics
	heartbeat   time.Duration
	logger      *zap.Logger
}

// LiveDependencies bundles collaborators of the live handler.
type LiveDependencies struct {
	Base        context.Context
	Hub         *live.Hub
	Navigations *live.Navigations
	Handoff     *service.HandoffService
	Metrics     *observability.Metrics
	Heartbeat   time.Duration
	Logger      *zap.Logger
}

// NewLiveHandler constructs handler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	base := deps.Base
	if base == nil {
		base = context.Background()
	}
	heartbeat := deps.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{
		base:        base,
		hub:         deps.Hub,
		navigations: deps.Navigations,
		handoff:     deps.Handoff,
		metrics:     deps.Metrics,
		heartbeat:   heartbeat,
		logger:      logger,
	}
}

type navigatePayload struct {
	To string `json:"to"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Tickets GET /live/tickets?view=. Customers see their own tickets and are
// redirected into a chat once one of them is accepted; admins see the queue.
func (h *LiveHandler) Tickets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	// Values read from c are only valid until the handler returns.
	current := handoff.ParseView(strings.Clone(c.Query("view")))

	filter := live.TicketFilter{Limit: adminQueueLimit}
	if !actor.IsAdmin() {
		filter.CustomerID = actor.ID
	}

	h.stream(c, h.ticketStream(actor, filter, current))
	return nil
}

// Session GET /live/sessions/:id streams the session state and its messages
// to a participant. Losing access or the session ends the stream with a
// navigate event back to the ticket list.
func (h *LiveHandler) Session(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	sessionID := strings.Clone(c.Params("id"))
	if _, err := h.handoff.Authorize(c.UserContext(), actor, sessionID); err != nil {
		return err
	}

	h.stream(c, h.sessionStream(actor, sessionID))
	return nil
}

// ticketStream lists tickets matching filter. Customers are sent into a live
// chat once per accepted ticket; current is the view their portal shows.
func (h *LiveHandler) ticketStream(actor domain.Actor, filter live.TicketFilter, current handoff.View) func(context.Context, *bufio.Writer) error {
	return func(ctx context.Context, w *bufio.Writer) error {
		tickets := h.hub.SubscribeTickets(ctx, filter)
		defer tickets.Close()
		navigations := h.navigations.Subscribe(ctx, actor.ID)
		defer navigations.Close()
		redirector := handoff.NewRedirector()

		return h.pump(ctx, w, streamSources{
			tickets: tickets.C(),
			onTickets: func(snap live.TicketSnapshot) (bool, error) {
				if snap.Err != nil {
					return false, writeEvent(w, sseError, storeErrorPayload())
				}
				if err := writeEvent(w, sseTickets, ticketList(snap.Tickets)); err != nil {
					return false, err
				}
				if actor.Role != domain.RoleCustomer {
					return false, nil
				}
				if nav := redirector.Observe(actor.ID, snap.Tickets, current); nav != nil {
					current = *nav
					return false, writeEvent(w, sseNavigate, navigatePayload{To: nav.String()})
				}
				return false, nil
			},
			navigations: navigations.C(),
		})
	}
}

// sessionStream follows one session for actor. A session that disappears or
// stops including actor ends the stream with an error and a navigate event.
func (h *LiveHandler) sessionStream(actor domain.Actor, sessionID string) func(context.Context, *bufio.Writer) error {
	return func(ctx context.Context, w *bufio.Writer) error {
		sessions := h.hub.SubscribeSession(ctx, sessionID)
		defer sessions.Close()
		messages := h.hub.SubscribeMessages(ctx, sessionID)
		defer messages.Close()
		navigations := h.navigations.Subscribe(ctx, actor.ID)
		defer navigations.Close()

		leave := func(code, message string) (bool, error) {
			if err := writeEvent(w, sseError, errorPayload{Code: code, Message: message}); err != nil {
				return true, err
			}
			return true, writeEvent(w, sseNavigate, navigatePayload{To: handoff.TicketList().String()})
		}

		return h.pump(ctx, w, streamSources{
			sessions: sessions.C(),
			onSession: func(snap live.SessionSnapshot) (bool, error) {
				switch {
				case errors.Is(snap.Err, handoff.ErrNotFound):
					return leave("NOT_FOUND", "chat session no longer exists")
				case snap.Err != nil:
					return false, writeEvent(w, sseError, storeErrorPayload())
				case !snap.Session.IsParticipant(actor.ID):
					return leave("ACCESS_DENIED", "you are not a participant of this chat")
				}
				return false, writeEvent(w, sseSession, fiber.Map{
					"session": sessionResponse(snap.Session),
					"ticket":  optionalTicket(snap.Ticket),
					"state":   string(snap.State),
				})
			},
			messages: messages.C(),
			onMessages: func(snap live.MessagesSnapshot) (bool, error) {
				if snap.Err != nil {
					// The session stream reports missing sessions.
					return false, nil
				}
				return false, writeEvent(w, sseMessages, messageList(snap.Messages))
			},
			navigations: navigations.C(),
		})
	}
}

// streamSources are the channels a stream multiplexes. Nil channels are never selected.
type streamSources struct {
	tickets     <-chan live.TicketSnapshot
	onTickets   func(live.TicketSnapshot) (bool, error)
	sessions    <-chan live.SessionSnapshot
	onSession   func(live.SessionSnapshot) (bool, error)
	messages    <-chan live.MessagesSnapshot
	onMessages  func(live.MessagesSnapshot) (bool, error)
	navigations <-chan handoff.View
}

// pump forwards snapshots until a handler reports the stream is done, a
// write fails, or ctx ends. A closed source is dropped; the stream ends once
// every source is closed.
func (h *LiveHandler) pump(ctx context.Context, w *bufio.Writer, src streamSources) error {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for src.open() {
		var (
			done bool
			err  error
		)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
			err = w.Flush()
		case snap, ok := <-src.tickets:
			if !ok {
				src.tickets = nil
				continue
			}
			done, err = src.onTickets(snap)
		case snap, ok := <-src.sessions:
			if !ok {
				src.sessions = nil
				continue
			}
			done, err = src.onSession(snap)
		case snap, ok := <-src.messages:
			if !ok {
				src.messages = nil
				continue
			}
			done, err = src.onMessages(snap)
		case view, ok := <-src.navigations:
			if !ok {
				src.navigations = nil
				continue
			}
			err = writeEvent(w, sseNavigate, navigatePayload{To: view.String()})
		}
		if err != nil || done {
			return err
		}
	}
	return nil
}

func (src *streamSources) open() bool {
	return src.tickets != nil || src.sessions != nil || src.messages != nil || src.navigations != nil
}

// stream switches the response to an event stream and runs fn on the
// connection once the handler returned.
func (h *LiveHandler) stream(c *fiber.Ctx, fn func(ctx context.Context, w *bufio.Writer) error) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	route := strings.Clone(c.Path())
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(h.base)
		defer cancel()
		closed := h.metrics.StreamOpened()
		defer closed()

		// An initial comment makes proxies and the client commit the stream.
		if _, err := w.WriteString(": connected\n\n"); err != nil || w.Flush() != nil {
			return
		}
		if err := fn(ctx, w); err != nil {
			h.logger.Debug("live stream ended", zap.String("route", route), zap.Error(err))
		}
	}))
}

func writeEvent(w *bufio.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	return w.Flush()
}

func storeErrorPayload() errorPayload {
	return errorPayload{Code: service.CodeStoreUnavailable, Message: "live data temporarily unavailable"}
}
