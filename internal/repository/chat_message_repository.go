package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

// ChatMessageRepository manages the append-only message log of a session.
type ChatMessageRepository interface {
	// Append stores msg unless the session is closed, in which case ErrTransitionRejected.
	Append(ctx context.Context, msg *domain.ChatMessage) error
	// ListBySession returns messages by timestamp, insertion order breaking ties.
	ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

type chatMessageRepository struct {
	pool *pgxpool.Pool
}

// NewChatMessageRepository builds repository.
func NewChatMessageRepository(pool *pgxpool.Pool) ChatMessageRepository {
	return &chatMessageRepository{pool: pool}
}

func (r *chatMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (session_id, sender_id, sender_role, text, sent_at)
        SELECT s.id, $2::uuid, $3::text, $4::text, $5::timestamptz FROM live_chat_sessions s
        WHERE s.id=$1 AND s.status <> 'closed'
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		msg.SessionID,
		msg.SenderID,
		msg.SenderRole,
		msg.Text,
		msg.Timestamp,
	).Scan(&msg.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM live_chat_sessions WHERE id=$1)`, msg.SessionID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrTransitionRejected
	}
	return err
}

func (r *chatMessageRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, session_id, sender_id, sender_role, text, sent_at
        FROM chat_messages WHERE session_id=$1 ORDER BY sent_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.SenderID,
			&msg.SenderRole,
			&msg.Text,
			&msg.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
