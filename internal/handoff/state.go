// Package handoff decides how a support request moves from a pending ticket
// to a staffed live chat and finally to resolution.
//
// Everything here is pure: Decide maps the latest ticket and session snapshots
// plus a requested event to the writes that must be issued. It holds no state
// and can be evaluated again on every snapshot an observer receives.
package handoff

import "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"

// State is the combined ticket × session view relevant to the hand-off.
type State string

const (
	StateAwaitingAcceptance   State = "AWAITING_ACCEPTANCE"
	StateSessionOpenUnstaffed State = "SESSION_OPEN_UNSTAFFED"
	StateSessionActive        State = "SESSION_ACTIVE"
	StateResolved             State = "RESOLVED"
	// StateTransient covers views where the two documents have not converged yet,
	// e.g. a session already exists while the ticket still reads pending.
	StateTransient State = "TRANSIENT"
)

// Derive collapses a ticket and its session into a hand-off state. Either may be nil.
func Derive(ticket *domain.Ticket, session *domain.LiveChatSession) State {
	if session == nil {
		if ticket == nil {
			return StateTransient
		}
		switch ticket.Status {
		case domain.TicketStatusPending:
			return StateAwaitingAcceptance
		case domain.TicketStatusResolved:
			return StateResolved
		default:
			return StateTransient
		}
	}

	switch session.Status {
	case domain.SessionStatusClosed:
		if ticket == nil || ticket.Status == domain.TicketStatusResolved {
			return StateResolved
		}
		return StateTransient
	case domain.SessionStatusOpen:
		if !session.Staffed() {
			return StateSessionOpenUnstaffed
		}
		return StateTransient
	case domain.SessionStatusInProgress:
		if session.Staffed() && (ticket == nil || ticket.Status == domain.TicketStatusInProgress) {
			return StateSessionActive
		}
		return StateTransient
	}
	return StateTransient
}

// CanAdvanceTicket reports whether writing to over from keeps the status monotonic.
// Rewriting the current status is allowed so that repairs stay idempotent.
func CanAdvanceTicket(from, to domain.TicketStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return to.Rank() >= from.Rank()
}

// CanAdvanceSession reports whether writing to over from keeps the status monotonic.
func CanAdvanceSession(from, to domain.SessionStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return to.Rank() >= from.Rank()
}
