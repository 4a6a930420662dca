package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionStatus enumerates live-chat session states.
type SessionStatus string

const (
	SessionStatusOpen       SessionStatus = "open"
	SessionStatusInProgress SessionStatus = "in-progress"
	SessionStatusClosed     SessionStatus = "closed"
)

// Rank orders statuses along the only allowed direction of travel.
func (s SessionStatus) Rank() int {
	switch s {
	case SessionStatusOpen:
		return 0
	case SessionStatusInProgress:
		return 1
	case SessionStatusClosed:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	return s.Rank() >= 0
}

// ParseSessionStatus validates a wire value.
func ParseSessionStatus(raw string) (SessionStatus, error) {
	status := SessionStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown session status %q", raw)
	}
	return status, nil
}

// LiveChatSession is the real-time channel opened once an admin accepts a ticket.
type LiveChatSession struct {
	ID            string
	TicketID      string
	CustomerID    string
	ConsultantID  *string
	Status        SessionStatus
	CreatedAt     time.Time
	StartedAt     *time.Time
	ClosedAt      *time.Time
	LastMessageAt *time.Time
}

// Closed reports whether the session accepts no further messages.
func (s *LiveChatSession) Closed() bool {
	return s.Status == SessionStatusClosed
}

// Staffed reports whether a consultant has joined.
func (s *LiveChatSession) Staffed() bool {
	return s.ConsultantID != nil && *s.ConsultantID != ""
}

// IsParticipant reports whether userID is the session's customer or consultant.
func (s *LiveChatSession) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	if s.CustomerID == userID {
		return true
	}
	return s.Staffed() && *s.ConsultantID == userID
}

// SenderRole records which portal a message came from.
type SenderRole string

const (
	SenderRoleCustomer SenderRole = "customer"
	SenderRoleAdmin    SenderRole = "admin"
)

// ChatMessage is an append-only entry of a live-chat session.
type ChatMessage struct {
	ID         string
	SessionID  string
	SenderID   string
	SenderRole SenderRole
	Text       string
	Timestamp  time.Time
}
