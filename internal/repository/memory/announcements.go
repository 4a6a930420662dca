package memory

import (
	"context"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

type announcementRepo struct{ s *Store }

func (r *announcementRepo) Create(_ context.Context, a *domain.Announcement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a.ID = newID()
	a.CreatedAt = r.s.now()
	r.s.announcements = append(r.s.announcements, *a)
	return nil
}

// ListRecent returns newest first.
func (r *announcementRepo) ListRecent(_ context.Context, limit int) ([]domain.Announcement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	limit, _ = repository.NormalizePage(limit, 0)
	result := make([]domain.Announcement, 0, limit)
	for i := len(r.s.announcements) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, r.s.announcements[i])
	}
	return result, nil
}

func (r *announcementRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, a := range r.s.announcements {
		if a.ID == id {
			r.s.announcements = append(r.s.announcements[:i], r.s.announcements[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
