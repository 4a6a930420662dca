package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

// activeSessionIndex guards "at most one non-closed session per ticket".
const activeSessionIndex = "live_chat_sessions_one_active_per_ticket"

// SessionRepository persists live-chat sessions.
type SessionRepository interface {
	// Create inserts an open session. ErrActiveSessionExists when the ticket already owns one.
	Create(ctx context.Context, session *domain.LiveChatSession) error
	GetByID(ctx context.Context, id string) (*domain.LiveChatSession, error)
	// FindActiveByTicket returns the non-closed session of a ticket or ErrNotFound.
	FindActiveByTicket(ctx context.Context, ticketID string) (*domain.LiveChatSession, error)
	// AssignConsultant sets the consultant once. ErrTransitionRejected when already staffed or closed.
	AssignConsultant(ctx context.Context, id, consultantID string, at time.Time) (*domain.LiveChatSession, error)
	Close(ctx context.Context, id string, at time.Time) (*domain.LiveChatSession, error)
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository builds a Postgres-backed session store.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionColumns = `id, ticket_id, customer_id, consultant_id, status, created_at, started_at, closed_at, last_message_at`

func (r *sessionRepository) Create(ctx context.Context, session *domain.LiveChatSession) error {
	const query = `
        INSERT INTO live_chat_sessions (ticket_id, customer_id, status)
        VALUES ($1,$2,'open')
        RETURNING id, status, created_at`
	err := r.pool.QueryRow(ctx, query, session.TicketID, session.CustomerID).
		Scan(&session.ID, &session.Status, &session.CreatedAt)
	if isUniqueViolation(err, activeSessionIndex) {
		return ErrActiveSessionExists
	}
	return err
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.LiveChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_chat_sessions WHERE id=$1`
	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return session, nil
}

func (r *sessionRepository) FindActiveByTicket(ctx context.Context, ticketID string) (*domain.LiveChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_chat_sessions
        WHERE ticket_id=$1 AND status <> 'closed'
        ORDER BY created_at ASC LIMIT 1`
	session, err := scanSession(r.pool.QueryRow(ctx, query, ticketID))
	if err != nil {
		return nil, notFound(err)
	}
	return session, nil
}

func (r *sessionRepository) AssignConsultant(ctx context.Context, id, consultantID string, at time.Time) (*domain.LiveChatSession, error) {
	query := `
        UPDATE live_chat_sessions SET consultant_id=$2, status='in-progress', started_at=$3
        WHERE id=$1 AND consultant_id IS NULL AND status='open'
        RETURNING ` + sessionColumns
	session, err := scanSession(r.pool.QueryRow(ctx, query, id, consultantID, at))
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrTransitionRejected
}

func (r *sessionRepository) Close(ctx context.Context, id string, at time.Time) (*domain.LiveChatSession, error) {
	query := `
        UPDATE live_chat_sessions SET status='closed', closed_at=COALESCE(closed_at, $2)
        WHERE id=$1
        RETURNING ` + sessionColumns
	session, err := scanSession(r.pool.QueryRow(ctx, query, id, at))
	if err != nil {
		return nil, notFound(err)
	}
	return session, nil
}

func (r *sessionRepository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE live_chat_sessions SET last_message_at=GREATEST(COALESCE(last_message_at, $2), $2)
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSession(row pgx.Row) (*domain.LiveChatSession, error) {
	var session domain.LiveChatSession
	if err := row.Scan(
		&session.ID,
		&session.TicketID,
		&session.CustomerID,
		&session.ConsultantID,
		&session.Status,
		&session.CreatedAt,
		&session.StartedAt,
		&session.ClosedAt,
		&session.LastMessageAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}
