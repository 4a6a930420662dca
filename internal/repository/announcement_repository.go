package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

// AnnouncementRepository stores admin notices.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *domain.Announcement) error
	ListRecent(ctx context.Context, limit int) ([]domain.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type announcementRepository struct {
	pool *pgxpool.Pool
}

// NewAnnouncementRepository builds the repository.
func NewAnnouncementRepository(pool *pgxpool.Pool) AnnouncementRepository {
	return &announcementRepository{pool: pool}
}

func (r *announcementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	const query = `
        INSERT INTO announcements (author_id, title, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, a.AuthorID, a.Title, a.Body).Scan(&a.ID, &a.CreatedAt)
}

func (r *announcementRepository) ListRecent(ctx context.Context, limit int) ([]domain.Announcement, error) {
	limit, _ = NormalizePage(limit, 0)
	const query = `
        SELECT id, author_id, title, body, created_at
        FROM announcements ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.AuthorID, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *announcementRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
