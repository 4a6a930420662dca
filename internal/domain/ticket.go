package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// TicketPriority enumerates customer-declared urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	CustomerID  string
	SessionID   *string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasSession reports whether the ticket references a live-chat session.
func (t *Ticket) HasSession() bool {
	return t != nil && t.SessionID != nil && *t.SessionID != ""
}

// Rank orders statuses along the only allowed direction of travel.
func (s TicketStatus) Rank() int {
	switch s {
	case TicketStatusPending:
		return 0
	case TicketStatusInProgress:
		return 1
	case TicketStatusResolved:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	return s.Rank() >= 0
}

// ParseTicketStatus validates a wire value.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	status := TicketStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
	return status, nil
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// ParseTicketPriority validates a wire value. Empty input maps to medium.
func ParseTicketPriority(raw string) (TicketPriority, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return TicketPriorityMedium, nil
	}
	priority := TicketPriority(raw)
	if !priority.Valid() {
		return "", fmt.Errorf("unknown ticket priority %q", raw)
	}
	return priority, nil
}
