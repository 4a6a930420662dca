package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/persistence"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

// These tests run against the database named by POSTGRES_DSN and are
// skipped without one. Every test works on freshly created rows.

type pgFixture struct {
	users    repository.UserRepository
	tickets  repository.TicketRepository
	sessions repository.SessionRepository
	messages repository.ChatMessageRepository
	customer *domain.User
	admins   []*domain.User
}

func newPgFixture(t *testing.T) *pgFixture {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop())
	require.NoError(t, err)

	f := &pgFixture{
		users:    repository.NewUserRepository(pool),
		tickets:  repository.NewTicketRepository(pool),
		sessions: repository.NewSessionRepository(pool),
		messages: repository.NewChatMessageRepository(pool),
	}
	f.customer = f.seedUser(t, domain.RoleCustomer)
	f.admins = []*domain.User{f.seedUser(t, domain.RoleAdmin), f.seedUser(t, domain.RoleAdmin)}
	return f
}

func (f *pgFixture) seedUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "user",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *pgFixture) seedTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		CustomerID: f.customer.ID,
		Title:      "printer",
		Status:     domain.TicketStatusPending,
		Priority:   domain.TicketPriorityMedium,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func TestPostgresSessionsAtMostOneActivePerTicket(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()
	ticket := f.seedTicket(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.sessions.Create(ctx, &domain.LiveChatSession{TicketID: ticket.ID, CustomerID: f.customer.ID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, repository.ErrActiveSessionExists) {
				dupes++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
	assert.Equal(t, 7, dupes)

	active, err := f.sessions.FindActiveByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	_, err = f.sessions.Close(ctx, active.ID, time.Now())
	require.NoError(t, err)

	_, err = f.sessions.FindActiveByTicket(ctx, ticket.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, f.sessions.Create(ctx, &domain.LiveChatSession{TicketID: ticket.ID, CustomerID: f.customer.ID}))
}

func TestPostgresAssignConsultantOnce(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()
	ticket := f.seedTicket(t)
	session := &domain.LiveChatSession{TicketID: ticket.ID, CustomerID: f.customer.ID}
	require.NoError(t, f.sessions.Create(ctx, session))

	got, err := f.sessions.AssignConsultant(ctx, session.ID, f.admins[0].ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusInProgress, got.Status)
	require.NotNil(t, got.StartedAt)

	_, err = f.sessions.AssignConsultant(ctx, session.ID, f.admins[1].ID, time.Now())
	assert.ErrorIs(t, err, repository.ErrTransitionRejected)

	stored, err := f.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ConsultantID)
	assert.Equal(t, f.admins[0].ID, *stored.ConsultantID)

	_, err = f.sessions.AssignConsultant(ctx, uuid.NewString(), f.admins[0].ID, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgresTicketGuards(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()
	ticket := f.seedTicket(t)
	first, second := uuid.NewString(), uuid.NewString()

	updated, err := f.tickets.MarkInProgress(ctx, ticket.ID, first)
	require.NoError(t, err)
	require.NotNil(t, updated.SessionID)
	assert.Equal(t, first, *updated.SessionID)

	updated, err = f.tickets.MarkInProgress(ctx, ticket.ID, second)
	require.NoError(t, err)
	assert.Equal(t, first, *updated.SessionID)

	_, err = f.tickets.MarkResolved(ctx, ticket.ID)
	require.NoError(t, err)
	_, err = f.tickets.MarkInProgress(ctx, ticket.ID, first)
	assert.ErrorIs(t, err, repository.ErrTransitionRejected)

	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)

	_, err = f.tickets.MarkInProgress(ctx, uuid.NewString(), first)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgresMessagesOrderedByTimestampThenInsertion(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()
	ticket := f.seedTicket(t)
	session := &domain.LiveChatSession{TicketID: ticket.ID, CustomerID: f.customer.ID}
	require.NoError(t, f.sessions.Create(ctx, session))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, m := range []struct {
		text string
		at   time.Time
	}{
		{"second", base.Add(time.Second)},
		{"first-a", base},
		{"first-b", base},
		{"third", base.Add(2 * time.Second)},
	} {
		require.NoError(t, f.messages.Append(ctx, &domain.ChatMessage{
			SessionID: session.ID, SenderID: f.customer.ID, SenderRole: domain.SenderRoleCustomer, Text: m.text, Timestamp: m.at,
		}))
	}

	msgs, err := f.messages.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	texts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"first-a", "first-b", "second", "third"}, texts)

	_, err = f.sessions.Close(ctx, session.ID, base)
	require.NoError(t, err)
	err = f.messages.Append(ctx, &domain.ChatMessage{
		SessionID: session.ID, SenderID: f.customer.ID, SenderRole: domain.SenderRoleCustomer, Text: "late", Timestamp: base,
	})
	assert.ErrorIs(t, err, repository.ErrTransitionRejected)

	err = f.messages.Append(ctx, &domain.ChatMessage{
		SessionID: uuid.NewString(), SenderID: f.customer.ID, SenderRole: domain.SenderRoleCustomer, Text: "lost", Timestamp: base,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
