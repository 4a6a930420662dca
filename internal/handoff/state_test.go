package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

func TestDerive(t *testing.T) {
	inProgress := pendingTicket()
	inProgress.Status = domain.TicketStatusInProgress
	inProgress.SessionID = strPtr("s1")

	resolved := pendingTicket()
	resolved.Status = domain.TicketStatusResolved

	closed := activeSession(admin.ID)
	closed.Status = domain.SessionStatusClosed

	cases := []struct {
		name    string
		ticket  *domain.Ticket
		session *domain.LiveChatSession
		want    State
	}{
		{"pending without session", pendingTicket(), nil, StateAwaitingAcceptance},
		{"session created before ticket write", pendingTicket(), openSession(), StateSessionOpenUnstaffed},
		{"accepted, nobody joined", inProgress, openSession(), StateSessionOpenUnstaffed},
		{"consultant joined", inProgress, activeSession(admin.ID), StateSessionActive},
		{"ticket lagging behind staffed session", pendingTicket(), activeSession(admin.ID), StateTransient},
		{"ended", resolved, closed, StateResolved},
		{"session closed, ticket not yet resolved", inProgress, closed, StateTransient},
		{"in-progress ticket without session", inProgress, nil, StateTransient},
		{"nothing loaded", nil, nil, StateTransient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Derive(tc.ticket, tc.session))
		})
	}
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, CanAdvanceTicket(domain.TicketStatusPending, domain.TicketStatusInProgress))
	assert.True(t, CanAdvanceTicket(domain.TicketStatusInProgress, domain.TicketStatusInProgress))
	assert.False(t, CanAdvanceTicket(domain.TicketStatusResolved, domain.TicketStatusPending))
	assert.False(t, CanAdvanceTicket("archived", domain.TicketStatusResolved))

	assert.True(t, CanAdvanceSession(domain.SessionStatusOpen, domain.SessionStatusClosed))
	assert.False(t, CanAdvanceSession(domain.SessionStatusClosed, domain.SessionStatusInProgress))
}
