package memory

import (
	"context"
	"strings"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.byEmail(user.Email) != nil {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	user.ID = newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *userRepo) byEmail(email string) *domain.User {
	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			return user
		}
	}
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = user.Name
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = r.s.now()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user := r.byEmail(email)
	if user == nil {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}
