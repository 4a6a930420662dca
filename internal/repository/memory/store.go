// Package memory implements the repository interfaces on process memory.
// It backs development runs without POSTGRES_DSN and the service tests, and
// applies the same guards as the SQL statements under one mutex.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
)

type ticketRecord struct {
	ticket domain.Ticket
	seq    uint64
}

type messageRecord struct {
	msg domain.ChatMessage
	seq uint64
}

// Store holds every collection. Returned values are copies.
type Store struct {
	mu            sync.Mutex
	seq           uint64
	now           func() time.Time
	tickets       map[string]*ticketRecord
	sessions      map[string]*domain.LiveChatSession
	messages      map[string][]messageRecord
	users         map[string]*domain.User
	announcements []domain.Announcement
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		tickets:  make(map[string]*ticketRecord),
		sessions: make(map[string]*domain.LiveChatSession),
		messages: make(map[string][]messageRecord),
		users:    make(map[string]*domain.User),
	}
}

// SetClock overrides the time source used for store-assigned timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// DeleteSession drops a session and its messages. Used to exercise the
// deleted-session paths of live subscriptions.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.messages, id)
}

// Tickets exposes the ticket collection.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s} }

// Sessions exposes the session collection.
func (s *Store) Sessions() repository.SessionRepository { return &sessionRepo{s} }

// Messages exposes the chat message collection.
func (s *Store) Messages() repository.ChatMessageRepository { return &messageRepo{s} }

// Users exposes the account collection.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Announcements exposes the announcement collection.
func (s *Store) Announcements() repository.AnnouncementRepository { return &announcementRepo{s} }

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func newID() string {
	return uuid.NewString()
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTicket(t domain.Ticket) *domain.Ticket {
	t.SessionID = copyString(t.SessionID)
	return &t
}

func cloneSession(s domain.LiveChatSession) *domain.LiveChatSession {
	s.ConsultantID = copyString(s.ConsultantID)
	s.StartedAt = copyTime(s.StartedAt)
	s.ClosedAt = copyTime(s.ClosedAt)
	s.LastMessageAt = copyTime(s.LastMessageAt)
	return &s
}

func containsStatus(list []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func matchesTicket(t *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.CustomerID != nil && t.CustomerID != *filter.CustomerID {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, t.Priority) {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}

func sortTickets(records []*ticketRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.ticket.UpdatedAt.Equal(b.ticket.UpdatedAt) {
			return a.ticket.UpdatedAt.After(b.ticket.UpdatedAt)
		}
		return a.seq > b.seq
	})
}
