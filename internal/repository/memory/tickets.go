package memory

import (
	"context"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	ticket.ID = newID()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.s.tickets[ticket.ID] = &ticketRecord{ticket: *cloneTicket(*ticket), seq: r.s.nextSeq()}
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTicket(rec.ticket), nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]*ticketRecord, 0, len(r.s.tickets))
	for _, rec := range r.s.tickets {
		if matchesTicket(&rec.ticket, filter) {
			matched = append(matched, rec)
		}
	}
	sortTickets(matched)

	limit, offset := repository.NormalizePage(filter.Limit, filter.Offset)
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	result := make([]domain.Ticket, 0, len(matched))
	for _, rec := range matched {
		result = append(result, *cloneTicket(rec.ticket))
	}
	return result, nil
}

func (r *ticketRepo) MarkInProgress(_ context.Context, id, sessionID string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := &rec.ticket
	if t.Status != domain.TicketStatusPending && t.Status != domain.TicketStatusInProgress {
		return nil, repository.ErrTransitionRejected
	}
	t.Status = domain.TicketStatusInProgress
	if !t.HasSession() && sessionID != "" {
		t.SessionID = &sessionID
	}
	t.UpdatedAt = r.s.now()
	return cloneTicket(*t), nil
}

func (r *ticketRepo) MarkResolved(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.ticket.Status = domain.TicketStatusResolved
	rec.ticket.UpdatedAt = r.s.now()
	return cloneTicket(rec.ticket), nil
}
