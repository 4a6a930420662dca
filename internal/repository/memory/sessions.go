package memory

import (
	"context"
	"time"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(_ context.Context, session *domain.LiveChatSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.activeFor(session.TicketID) != nil {
		return repository.ErrActiveSessionExists
	}
	session.ID = newID()
	session.Status = domain.SessionStatusOpen
	session.CreatedAt = r.s.now()
	r.s.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (r *sessionRepo) activeFor(ticketID string) *domain.LiveChatSession {
	var found *domain.LiveChatSession
	for _, session := range r.s.sessions {
		if session.TicketID != ticketID || session.Closed() {
			continue
		}
		if found == nil || session.CreatedAt.Before(found.CreatedAt) {
			found = session
		}
	}
	return found
}

func (r *sessionRepo) GetByID(_ context.Context, id string) (*domain.LiveChatSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSession(*session), nil
}

func (r *sessionRepo) FindActiveByTicket(_ context.Context, ticketID string) (*domain.LiveChatSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session := r.activeFor(ticketID)
	if session == nil {
		return nil, repository.ErrNotFound
	}
	return cloneSession(*session), nil
}

func (r *sessionRepo) AssignConsultant(_ context.Context, id, consultantID string, at time.Time) (*domain.LiveChatSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if session.Staffed() || session.Status != domain.SessionStatusOpen {
		return nil, repository.ErrTransitionRejected
	}
	session.ConsultantID = &consultantID
	session.Status = domain.SessionStatusInProgress
	session.StartedAt = &at
	return cloneSession(*session), nil
}

func (r *sessionRepo) Close(_ context.Context, id string, at time.Time) (*domain.LiveChatSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	session.Status = domain.SessionStatusClosed
	if session.ClosedAt == nil {
		session.ClosedAt = &at
	}
	return cloneSession(*session), nil
}

func (r *sessionRepo) TouchLastMessage(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if session.LastMessageAt == nil || at.After(*session.LastMessageAt) {
		session.LastMessageAt = &at
	}
	return nil
}
