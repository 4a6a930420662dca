package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/observability"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// HandoffService runs the hand-off decisions against the stores. Every write
// is a guarded store operation, so concurrent callers never need a lock here.
type HandoffService struct {
	publisher
	tickets   repository.TicketRepository
	sessions  repository.SessionRepository
	messages  repository.ChatMessageRepository
	navigator handoff.Navigator
	metrics   *observability.Metrics
	now       func() time.Time
}

// HandoffDependencies bundles collaborators for the hand-off service.
type HandoffDependencies struct {
	TicketRepo  repository.TicketRepository
	SessionRepo repository.SessionRepository
	MessageRepo repository.ChatMessageRepository
	Dispatcher  events.Dispatcher
	Navigator   handoff.Navigator
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// AcceptResult is returned by Accept.
type AcceptResult struct {
	Ticket  *domain.Ticket
	Session *domain.LiveChatSession
	// Reused is set when an existing non-closed session was joined instead of created.
	Reused bool
	State  handoff.State
}

// SessionView is what a participant sees when opening a chat.
type SessionView struct {
	Session  *domain.LiveChatSession
	Ticket   *domain.Ticket
	Messages []domain.ChatMessage
	State    handoff.State
}

// EndChatResult is returned by EndChat.
type EndChatResult struct {
	Session *domain.LiveChatSession
	Ticket  *domain.Ticket
}

// NewHandoffService constructs the service.
func NewHandoffService(deps HandoffDependencies) *HandoffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	navigator := deps.Navigator
	if navigator == nil {
		navigator = handoff.NopNavigator{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = nowUTC
	}
	return &HandoffService{
		publisher: publisher{dispatcher: deps.Dispatcher, logger: logger},
		tickets:   deps.TicketRepo,
		sessions:  deps.SessionRepo,
		messages:  deps.MessageRepo,
		navigator: navigator,
		metrics:   deps.Metrics,
		now:       clock,
	}
}

// Accept moves a pending ticket into a live chat.
func (s *HandoffService) Accept(ctx context.Context, actor domain.Actor, ticketID string) (*AcceptResult, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, s.fail(handoff.EventAccept, err)
	}
	session, err := s.findActive(ctx, ticketID)
	if err != nil {
		return nil, s.fail(handoff.EventAccept, err)
	}

	plan, err := handoff.Decide(handoff.Snapshot{Actor: actor, Ticket: ticket, Session: session, Now: s.now()}, handoff.Event{Kind: handoff.EventAccept})
	if err != nil {
		return nil, s.fail(handoff.EventAccept, decisionError(err, "ticket"))
	}

	result := &AcceptResult{Ticket: ticket, Session: session, Reused: session != nil}
	if plan.Empty() {
		if result.Session == nil && ticket.HasSession() {
			result.Session, _ = s.sessions.GetByID(ctx, *ticket.SessionID)
		}
		result.State = handoff.Derive(result.Ticket, result.Session)
		s.metrics.RecordHandoff(string(handoff.EventAccept), "noop")
		return result, nil
	}

	for _, effect := range plan.Effects {
		switch effect.Kind {
		case handoff.EffectCreateSession:
			created, reused, err := s.createSession(ctx, actor, effect)
			if err != nil {
				return nil, s.fail(handoff.EventAccept, err)
			}
			result.Session, result.Reused = created, reused

		case handoff.EffectMarkTicketInProgress:
			sessionID := effect.SessionID
			if sessionID == "" && result.Session != nil {
				sessionID = result.Session.ID
			}
			updated, err := s.tickets.MarkInProgress(ctx, ticket.ID, sessionID)
			if err != nil {
				return nil, s.fail(handoff.EventAccept, s.acceptTicketWriteError(err, sessionID))
			}
			result.Ticket = updated
			s.publishEvent(ctx, events.Event{
				Type:       events.EventTicketStatusChanged,
				TicketID:   updated.ID,
				SessionID:  sessionID,
				CustomerID: updated.CustomerID,
				Actor:      eventActor(actor),
				Payload: events.TicketStatusChangedPayload{
					OldStatus: ticket.Status,
					NewStatus: updated.Status,
				},
			})
		}
	}

	result.State = handoff.Derive(result.Ticket, result.Session)
	s.metrics.RecordHandoff(string(handoff.EventAccept), "applied")
	return result, nil
}

// createSession inserts the session, or joins the one a concurrent Accept created first.
func (s *HandoffService) createSession(ctx context.Context, actor domain.Actor, effect handoff.Effect) (*domain.LiveChatSession, bool, error) {
	session := &domain.LiveChatSession{TicketID: effect.TicketID, CustomerID: effect.CustomerID}
	err := s.sessions.Create(ctx, session)
	if errors.Is(err, repository.ErrActiveSessionExists) {
		existing, findErr := s.sessions.FindActiveByTicket(ctx, effect.TicketID)
		if findErr != nil {
			return nil, false, apperrors.NewWriteFailed("create chat session", findErr)
		}
		s.logger.Info("accept joined concurrent session",
			zap.String("ticket_id", effect.TicketID),
			zap.String("session_id", existing.ID))
		return existing, true, nil
	}
	if err != nil {
		return nil, false, apperrors.NewWriteFailed("create chat session", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventSessionCreated,
		TicketID:   session.TicketID,
		SessionID:  session.ID,
		CustomerID: session.CustomerID,
		Actor:      eventActor(actor),
		Payload:    events.SessionChangedPayload{Status: session.Status},
	})
	return session, false, nil
}

func (s *HandoffService) acceptTicketWriteError(err error, sessionID string) error {
	if errors.Is(err, repository.ErrTransitionRejected) {
		return decisionError(handoff.ErrInvalidTransition, "ticket")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", nil)
	}
	// The session stays; the next Accept reuses it and repeats this write.
	s.logger.Warn("ticket update failed after session create",
		zap.String("session_id", sessionID),
		zap.Error(err))
	return apperrors.WithDetail(apperrors.NewWriteFailed("update ticket", err), "session_id", sessionID)
}

// OpenSession returns a participant's view of a chat. The first admin to
// open an unstaffed session becomes its consultant.
func (s *HandoffService) OpenSession(ctx context.Context, actor domain.Actor, sessionID string) (*SessionView, error) {
	session, ticket, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, s.fail(handoff.EventOpen, err)
	}

	plan, err := handoff.Decide(handoff.Snapshot{Actor: actor, Ticket: ticket, Session: session, Now: s.now()}, handoff.Event{Kind: handoff.EventOpen})
	if err != nil {
		return nil, s.reject(ctx, actor, handoff.EventOpen, err, "chat session")
	}

	outcome := "noop"
	if plan.Has(handoff.EffectAssignConsultant) {
		effect := plan.Effects[0]
		updated, err := s.sessions.AssignConsultant(ctx, session.ID, effect.ConsultantID, effect.At)
		switch {
		case errors.Is(err, repository.ErrTransitionRejected):
			// Another admin joined first; decide again on the fresh document.
			session, ticket, err = s.loadSession(ctx, sessionID)
			if err != nil {
				return nil, s.fail(handoff.EventOpen, err)
			}
			replan, err := handoff.Decide(handoff.Snapshot{Actor: actor, Ticket: ticket, Session: session, Now: s.now()}, handoff.Event{Kind: handoff.EventOpen})
			if err != nil {
				return nil, s.reject(ctx, actor, handoff.EventOpen, err, "chat session")
			}
			if !replan.Empty() {
				return nil, s.fail(handoff.EventOpen, decisionError(handoff.ErrInvalidTransition, "chat session"))
			}
		case errors.Is(err, repository.ErrNotFound):
			return nil, s.reject(ctx, actor, handoff.EventOpen, &handoff.Rejection{Err: handoff.ErrNotFound, Navigate: handoff.TicketList()}, "chat session")
		case err != nil:
			return nil, s.fail(handoff.EventOpen, apperrors.NewWriteFailed("join chat session", err))
		default:
			session = updated
			outcome = "applied"
			s.publishEvent(ctx, events.Event{
				Type:       events.EventSessionUpdated,
				TicketID:   session.TicketID,
				SessionID:  session.ID,
				CustomerID: session.CustomerID,
				Actor:      eventActor(actor),
				Payload:    events.SessionChangedPayload{Status: session.Status, ConsultantID: session.ConsultantID},
			})
		}
	}

	msgs, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, s.fail(handoff.EventOpen, storeUnavailable("load messages", err))
	}
	s.metrics.RecordHandoff(string(handoff.EventOpen), outcome)
	return &SessionView{
		Session:  session,
		Ticket:   ticket,
		Messages: msgs,
		State:    handoff.Derive(ticket, session),
	}, nil
}

// Messages returns the ordered message log to a participant.
func (s *HandoffService) Messages(ctx context.Context, actor domain.Actor, sessionID string) ([]domain.ChatMessage, error) {
	if _, err := s.Authorize(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, storeUnavailable("load messages", err)
	}
	return msgs, nil
}

// Authorize verifies that actor participates in the session, issuing the
// forced navigation when not. Used by live streams before subscribing.
func (s *HandoffService) Authorize(ctx context.Context, actor domain.Actor, sessionID string) (*domain.LiveChatSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeUnavailable("load chat session", err)
	}
	if session == nil {
		return nil, s.reject(ctx, actor, handoff.EventOpen, &handoff.Rejection{Err: handoff.ErrNotFound, Navigate: handoff.TicketList()}, "chat session")
	}
	if !session.IsParticipant(actor.ID) {
		return nil, s.reject(ctx, actor, handoff.EventOpen, &handoff.Rejection{Err: handoff.ErrAccessDenied, Navigate: handoff.TicketList()}, "chat session")
	}
	return session, nil
}

// SendMessage appends a message to an open session.
func (s *HandoffService) SendMessage(ctx context.Context, actor domain.Actor, sessionID, text string) (*domain.ChatMessage, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, s.fail(handoff.EventSendMessage, storeUnavailable("load chat session", err))
	}

	plan, err := handoff.Decide(handoff.Snapshot{Actor: actor, Session: session, Now: s.now()}, handoff.Event{Kind: handoff.EventSendMessage, Text: text})
	if err != nil {
		return nil, s.reject(ctx, actor, handoff.EventSendMessage, err, "chat session")
	}

	msg := plan.Effects[0].Message
	if err := s.messages.Append(ctx, msg); err != nil {
		switch {
		case errors.Is(err, repository.ErrTransitionRejected):
			return nil, s.fail(handoff.EventSendMessage, decisionError(handoff.ErrSessionClosed, "chat session"))
		case errors.Is(err, repository.ErrNotFound):
			return nil, s.reject(ctx, actor, handoff.EventSendMessage, &handoff.Rejection{Err: handoff.ErrNotFound, Navigate: handoff.TicketList()}, "chat session")
		default:
			return nil, s.fail(handoff.EventSendMessage, apperrors.NewWriteFailed("send message", err))
		}
	}
	if err := s.sessions.TouchLastMessage(ctx, session.ID, msg.Timestamp); err != nil {
		s.logger.Warn("update last message time failed", zap.String("session_id", session.ID), zap.Error(err))
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventChatMessageAppended,
		TicketID:   session.TicketID,
		SessionID:  session.ID,
		CustomerID: session.CustomerID,
		Actor:      eventActor(actor),
		Timestamp:  msg.Timestamp,
		Payload: events.ChatMessageAppendedPayload{
			MessageID:   msg.ID,
			SenderRole:  msg.SenderRole,
			TextPreview: events.Preview(msg.Text, 80),
		},
	})
	s.metrics.RecordHandoff(string(handoff.EventSendMessage), "applied")
	return msg, nil
}

// EndChat closes the session, then resolves its ticket. A failure of the
// second write leaves the session closed and reports PARTIAL_CASCADE; calling
// EndChat again finishes the ticket.
func (s *HandoffService) EndChat(ctx context.Context, actor domain.Actor, sessionID string) (*EndChatResult, error) {
	session, ticket, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, s.fail(handoff.EventEndChat, err)
	}

	plan, err := handoff.Decide(handoff.Snapshot{Actor: actor, Ticket: ticket, Session: session, Now: s.now()}, handoff.Event{Kind: handoff.EventEndChat})
	if err != nil {
		return nil, s.reject(ctx, actor, handoff.EventEndChat, err, "chat session")
	}

	result := &EndChatResult{Session: session, Ticket: ticket}
	for _, effect := range plan.Effects {
		switch effect.Kind {
		case handoff.EffectCloseSession:
			closed, err := s.sessions.Close(ctx, session.ID, effect.At)
			if err != nil {
				return nil, s.fail(handoff.EventEndChat, apperrors.NewWriteFailed("close chat session", err))
			}
			result.Session = closed
			s.publishEvent(ctx, events.Event{
				Type:       events.EventSessionClosed,
				TicketID:   closed.TicketID,
				SessionID:  closed.ID,
				CustomerID: closed.CustomerID,
				Actor:      eventActor(actor),
				Payload:    events.SessionChangedPayload{Status: closed.Status, ConsultantID: closed.ConsultantID},
			})

		case handoff.EffectResolveTicket:
			resolved, err := s.tickets.MarkResolved(ctx, effect.TicketID)
			if err != nil {
				s.logger.Warn("ticket resolve failed after session close",
					zap.String("session_id", session.ID),
					zap.String("ticket_id", effect.TicketID),
					zap.Error(err))
				return nil, s.fail(handoff.EventEndChat, apperrors.NewPartialCascade(
					"chat closed but the ticket could not be resolved; retry to finish",
					map[string]any{
						"session_closed":  true,
						"ticket_resolved": false,
						"session_id":      session.ID,
						"ticket_id":       effect.TicketID,
					}, err))
			}
			var oldStatus domain.TicketStatus
			if ticket != nil {
				oldStatus = ticket.Status
			}
			result.Ticket = resolved
			s.publishEvent(ctx, events.Event{
				Type:       events.EventTicketStatusChanged,
				TicketID:   resolved.ID,
				SessionID:  session.ID,
				CustomerID: resolved.CustomerID,
				Actor:      eventActor(actor),
				Payload:    events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: resolved.Status},
			})
		}
	}
	s.metrics.RecordHandoff(string(handoff.EventEndChat), "applied")
	return result, nil
}

func (s *HandoffService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return nil, storeUnavailable("load ticket", err)
	}
	return ticket, nil
}

func (s *HandoffService) findActive(ctx context.Context, ticketID string) (*domain.LiveChatSession, error) {
	session, err := s.sessions.FindActiveByTicket(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeUnavailable("find chat session", err)
	}
	return session, nil
}

// loadSession returns a nil session when it does not exist, leaving the
// not-found decision to handoff.Decide. The ticket is nil when missing.
func (s *HandoffService) loadSession(ctx context.Context, sessionID string) (*domain.LiveChatSession, *domain.Ticket, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, storeUnavailable("load chat session", err)
	}
	if session.TicketID == "" {
		return session, nil, nil
	}
	ticket, err := s.tickets.GetByID(ctx, session.TicketID)
	if errors.Is(err, repository.ErrNotFound) {
		return session, nil, nil
	}
	if err != nil {
		return nil, nil, storeUnavailable("load ticket", err)
	}
	return session, ticket, nil
}

// reject issues the forced navigation attached to err, if any, and maps it.
func (s *HandoffService) reject(ctx context.Context, actor domain.Actor, event handoff.EventKind, err error, resource string) error {
	if view, ok := handoff.NavigationFor(err); ok {
		s.navigator.Navigate(ctx, actor.ID, view)
	}
	return s.fail(event, decisionError(err, resource))
}

func (s *HandoffService) fail(event handoff.EventKind, err error) error {
	outcome := "error"
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		outcome = domainErr.Code
	}
	s.metrics.RecordHandoff(string(event), outcome)
	return err
}

func eventActor(actor domain.Actor) events.Actor {
	return events.Actor{UserID: actor.ID, Role: actor.Role}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
