package handoff

import (
	"fmt"
	"strings"
	"time"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

// EventKind enumerates the actions that drive the hand-off.
type EventKind string

const (
	EventAccept      EventKind = "accept"
	EventOpen        EventKind = "open"
	EventSendMessage EventKind = "send_message"
	EventEndChat     EventKind = "end_chat"
)

// Event is a requested action. Text is only read for EventSendMessage.
type Event struct {
	Kind EventKind
	Text string
}

// Snapshot is the latest state known to the acting user.
//
// For EventAccept, Session is the non-closed session found for Ticket, if any.
// For the session events, Ticket is the session's owning ticket when it could be loaded.
type Snapshot struct {
	Actor   domain.Actor
	Ticket  *domain.Ticket
	Session *domain.LiveChatSession
	Now     time.Time
}

// EffectKind enumerates the writes a plan may contain.
type EffectKind string

const (
	EffectCreateSession        EffectKind = "create_session"
	EffectMarkTicketInProgress EffectKind = "mark_ticket_in_progress"
	EffectAssignConsultant     EffectKind = "assign_consultant"
	EffectAppendMessage        EffectKind = "append_message"
	EffectCloseSession         EffectKind = "close_session"
	EffectResolveTicket        EffectKind = "resolve_ticket"
)

// Effect is one store write. An empty SessionID on EffectMarkTicketInProgress
// refers to the session produced by the preceding EffectCreateSession.
type Effect struct {
	Kind         EffectKind
	TicketID     string
	SessionID    string
	CustomerID   string
	ConsultantID string
	Message      *domain.ChatMessage
	At           time.Time
}

// Plan lists writes in the order they must be issued.
type Plan struct {
	Effects []Effect
	// Next is the state observers converge on once every effect has landed.
	Next State
}

// Empty reports whether the plan issues no writes.
func (p Plan) Empty() bool {
	return len(p.Effects) == 0
}

// Has reports whether the plan contains an effect of kind.
func (p Plan) Has(kind EffectKind) bool {
	for _, effect := range p.Effects {
		if effect.Kind == kind {
			return true
		}
	}
	return false
}

// Decide is the hand-off transition function.
func Decide(snapshot Snapshot, event Event) (Plan, error) {
	if snapshot.Now.IsZero() {
		snapshot.Now = time.Now().UTC()
	}

	var (
		plan Plan
		err  error
	)
	switch event.Kind {
	case EventAccept:
		plan, err = decideAccept(snapshot)
	case EventOpen:
		plan, err = decideOpen(snapshot)
	case EventSendMessage:
		plan, err = decideSendMessage(snapshot, event.Text)
	case EventEndChat:
		plan, err = decideEndChat(snapshot)
	default:
		return Plan{}, fmt.Errorf("handoff: unknown event %q", event.Kind)
	}
	if err != nil {
		return Plan{}, err
	}
	if err := checkForward(snapshot, plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func decideAccept(s Snapshot) (Plan, error) {
	if !s.Actor.IsAdmin() {
		return Plan{}, ErrAdminOnly
	}
	ticket := s.Ticket
	if ticket == nil {
		return Plan{}, ErrNotFound
	}

	switch ticket.Status {
	case domain.TicketStatusResolved:
		return Plan{}, ErrInvalidTransition
	case domain.TicketStatusInProgress:
		if ticket.HasSession() {
			// Already accepted: a repeated Accept writes nothing.
			return Plan{Next: Derive(ticket, s.Session)}, nil
		}
	}

	if session := s.Session; session != nil && !session.Closed() && session.TicketID == ticket.ID {
		// Reuse path. The ticket write is repeated so a prior partial accept heals.
		return Plan{
			Effects: []Effect{{
				Kind:      EffectMarkTicketInProgress,
				TicketID:  ticket.ID,
				SessionID: session.ID,
				At:        s.Now,
			}},
			Next: nextAfterAccept(session),
		}, nil
	}

	return Plan{
		Effects: []Effect{
			{
				Kind:       EffectCreateSession,
				TicketID:   ticket.ID,
				CustomerID: ticket.CustomerID,
				At:         s.Now,
			},
			{
				Kind:     EffectMarkTicketInProgress,
				TicketID: ticket.ID,
				At:       s.Now,
			},
		},
		Next: StateSessionOpenUnstaffed,
	}, nil
}

func nextAfterAccept(session *domain.LiveChatSession) State {
	if session.Staffed() {
		return StateSessionActive
	}
	return StateSessionOpenUnstaffed
}

func decideOpen(s Snapshot) (Plan, error) {
	session := s.Session
	if session == nil {
		return Plan{}, reject(ErrNotFound)
	}
	if s.Actor.IsAdmin() && session.Status == domain.SessionStatusOpen && !session.Staffed() {
		return Plan{
			Effects: []Effect{{
				Kind:         EffectAssignConsultant,
				SessionID:    session.ID,
				TicketID:     session.TicketID,
				ConsultantID: s.Actor.ID,
				At:           s.Now,
			}},
			Next: StateSessionActive,
		}, nil
	}
	if !session.IsParticipant(s.Actor.ID) {
		return Plan{}, reject(ErrAccessDenied)
	}
	return Plan{Next: Derive(s.Ticket, session)}, nil
}

func decideSendMessage(s Snapshot, text string) (Plan, error) {
	session := s.Session
	if session == nil {
		return Plan{}, reject(ErrNotFound)
	}
	if !session.IsParticipant(s.Actor.ID) {
		return Plan{}, reject(ErrAccessDenied)
	}
	if session.Closed() {
		return Plan{}, ErrSessionClosed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Plan{}, ErrEmptyMessage
	}
	return Plan{
		Effects: []Effect{{
			Kind:      EffectAppendMessage,
			SessionID: session.ID,
			Message: &domain.ChatMessage{
				SessionID:  session.ID,
				SenderID:   s.Actor.ID,
				SenderRole: s.Actor.Role.SenderRole(),
				Text:       text,
				Timestamp:  s.Now,
			},
			At: s.Now,
		}},
		Next: Derive(s.Ticket, session),
	}, nil
}

func decideEndChat(s Snapshot) (Plan, error) {
	session := s.Session
	if session == nil {
		return Plan{}, reject(ErrNotFound)
	}
	if !session.IsParticipant(s.Actor.ID) {
		return Plan{}, reject(ErrAccessDenied)
	}
	if !s.Actor.IsAdmin() {
		return Plan{}, ErrAdminOnly
	}

	resolve := Effect{Kind: EffectResolveTicket, TicketID: session.TicketID, SessionID: session.ID, At: s.Now}
	if session.Closed() {
		// A retried End chat after a partial cascade only finishes the ticket side.
		if session.TicketID != "" && s.Ticket != nil && s.Ticket.Status != domain.TicketStatusResolved {
			return Plan{Effects: []Effect{resolve}, Next: StateResolved}, nil
		}
		return Plan{}, ErrSessionClosed
	}

	plan := Plan{
		Effects: []Effect{{Kind: EffectCloseSession, SessionID: session.ID, TicketID: session.TicketID, At: s.Now}},
		Next:    StateResolved,
	}
	if session.TicketID != "" {
		plan.Effects = append(plan.Effects, resolve)
	}
	return plan, nil
}

// checkForward refuses any plan that would move a monotonic field backwards.
func checkForward(s Snapshot, plan Plan) error {
	for _, effect := range plan.Effects {
		switch effect.Kind {
		case EffectMarkTicketInProgress:
			if s.Ticket != nil && !CanAdvanceTicket(s.Ticket.Status, domain.TicketStatusInProgress) {
				return ErrInvalidTransition
			}
		case EffectResolveTicket:
			if s.Ticket != nil && !CanAdvanceTicket(s.Ticket.Status, domain.TicketStatusResolved) {
				return ErrInvalidTransition
			}
		case EffectAssignConsultant:
			if s.Session == nil || s.Session.Staffed() ||
				!CanAdvanceSession(s.Session.Status, domain.SessionStatusInProgress) {
				return ErrInvalidTransition
			}
		case EffectCloseSession:
			if s.Session == nil || !CanAdvanceSession(s.Session.Status, domain.SessionStatusClosed) {
				return ErrInvalidTransition
			}
		}
	}
	return nil
}
