package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

func TestRedirectTarget(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "t0", CustomerID: customer.ID, Status: domain.TicketStatusPending},
		{ID: "t9", CustomerID: stranger.ID, Status: domain.TicketStatusInProgress, SessionID: strPtr("s9")},
		{ID: "t1", CustomerID: customer.ID, Status: domain.TicketStatusInProgress},
		{ID: "t2", CustomerID: customer.ID, Status: domain.TicketStatusInProgress, SessionID: strPtr("s2")},
		{ID: "t3", CustomerID: customer.ID, Status: domain.TicketStatusInProgress, SessionID: strPtr("s3")},
	}

	view, ok := RedirectTarget(customer.ID, tickets)
	require.True(t, ok)
	assert.Equal(t, LiveChat("s2"), view)

	_, ok = RedirectTarget(customer.ID, tickets[:3])
	assert.False(t, ok)
}

func TestRedirectorFiresOncePerSession(t *testing.T) {
	r := NewRedirector()
	pending := []domain.Ticket{{ID: "t1", CustomerID: customer.ID, Status: domain.TicketStatusPending}}
	accepted := []domain.Ticket{{ID: "t1", CustomerID: customer.ID, Status: domain.TicketStatusInProgress, SessionID: strPtr("s1")}}

	assert.Nil(t, r.Observe(customer.ID, pending, TicketList()))

	nav := r.Observe(customer.ID, accepted, TicketList())
	require.NotNil(t, nav)
	assert.Equal(t, "live-chat/s1", nav.String())

	// The customer navigated back to the list; the same snapshot must not pull them in again.
	assert.Nil(t, r.Observe(customer.ID, accepted, TicketList()))
}

func TestRedirectorSkipsCurrentView(t *testing.T) {
	r := NewRedirector()
	accepted := []domain.Ticket{{ID: "t1", CustomerID: customer.ID, Status: domain.TicketStatusInProgress, SessionID: strPtr("s1")}}

	assert.Nil(t, r.Observe(customer.ID, accepted, LiveChat("s1")))
	assert.Nil(t, r.Observe(customer.ID, accepted, TicketList()))

	second := append(accepted, domain.Ticket{ID: "t2", CustomerID: customer.ID, Status: domain.TicketStatusResolved})
	assert.Nil(t, r.Observe(customer.ID, second, TicketList()))
}

func TestRedirectorNewSessionFires(t *testing.T) {
	r := NewRedirector()
	first := []domain.Ticket{{ID: "t1", CustomerID: customer.ID, Status: domain.TicketStatusInProgress, SessionID: strPtr("s1")}}
	require.NotNil(t, r.Observe(customer.ID, first, TicketList()))

	next := []domain.Ticket{
		{ID: "t1", CustomerID: customer.ID, Status: domain.TicketStatusResolved, SessionID: strPtr("s1")},
		{ID: "t2", CustomerID: customer.ID, Status: domain.TicketStatusInProgress, SessionID: strPtr("s2")},
	}
	nav := r.Observe(customer.ID, next, TicketList())
	require.NotNil(t, nav)
	assert.Equal(t, LiveChat("s2"), *nav)
}

func TestParseView(t *testing.T) {
	assert.Equal(t, TicketList(), ParseView("ticket-list"))
	assert.Equal(t, LiveChat("abc"), ParseView("/live-chat/abc/"))
	assert.Equal(t, ViewOther, ParseView("live-chat").Kind)
	assert.Equal(t, ViewOther, ParseView("settings").Kind)
	assert.Equal(t, LiveChat("x"), ParseView(LiveChat("x").String()))
}
