package handoff

import (
	"sync"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

// RedirectTarget picks the live chat a customer should be looking at, given
// their latest ticket list snapshot. Tickets are scanned in the order given.
func RedirectTarget(customerID string, tickets []domain.Ticket) (View, bool) {
	for i := range tickets {
		ticket := &tickets[i]
		if ticket.CustomerID != customerID {
			continue
		}
		if ticket.Status == domain.TicketStatusInProgress && ticket.HasSession() {
			return LiveChat(*ticket.SessionID), true
		}
	}
	return View{}, false
}

// Redirector applies the auto-redirect policy for a single observer. Each
// target fires at most once, and never while the customer already views it.
type Redirector struct {
	mu     sync.Mutex
	issued map[View]struct{}
}

// NewRedirector returns a Redirector with no history.
func NewRedirector() *Redirector {
	return &Redirector{issued: make(map[View]struct{})}
}

// Observe evaluates a ticket list snapshot and returns the navigation to issue, if any.
func (r *Redirector) Observe(customerID string, tickets []domain.Ticket, current View) *View {
	target, ok := RedirectTarget(customerID, tickets)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.issued[target]; done {
		return nil
	}
	r.issued[target] = struct{}{}
	if current == target {
		return nil
	}
	return &target
}
