package persistence

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository/memory"
)

// Repositories is the full set of stores the services run on.
type Repositories struct {
	Backend       string
	Tickets       repository.TicketRepository
	Sessions      repository.SessionRepository
	Messages      repository.ChatMessageRepository
	Users         repository.UserRepository
	Announcements repository.AnnouncementRepository
}

// NewRepositories returns Postgres repositories for pool, or an in-memory
// store when pool is nil.
func NewRepositories(pool *pgxpool.Pool) Repositories {
	if pool == nil {
		store := memory.NewStore()
		return Repositories{
			Backend:       "memory",
			Tickets:       store.Tickets(),
			Sessions:      store.Sessions(),
			Messages:      store.Messages(),
			Users:         store.Users(),
			Announcements: store.Announcements(),
		}
	}
	return Repositories{
		Backend:       "postgres",
		Tickets:       repository.NewTicketRepository(pool),
		Sessions:      repository.NewSessionRepository(pool),
		Messages:      repository.NewChatMessageRepository(pool),
		Users:         repository.NewUserRepository(pool),
		Announcements: repository.NewAnnouncementRepository(pool),
	}
}
