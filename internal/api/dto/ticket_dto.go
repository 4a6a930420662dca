package dto

import (
	"time"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	CustomerID  string                `json:"customer_id"`
	SessionID   *string               `json:"session_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// SessionResponse is the wire form of a live-chat session.
type SessionResponse struct {
	ID            string               `json:"id"`
	TicketID      string               `json:"ticket_id"`
	CustomerID    string               `json:"customer_id"`
	ConsultantID  *string              `json:"consultant_id"`
	Status        domain.SessionStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	StartedAt     *time.Time           `json:"started_at"`
	ClosedAt      *time.Time           `json:"closed_at"`
	LastMessageAt *time.Time           `json:"last_message_at"`
}

// ChatMessageResponse is one entry of the message log.
type ChatMessageResponse struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"session_id"`
	SenderID   string            `json:"sender_id"`
	SenderRole domain.SenderRole `json:"sender_role"`
	Text       string            `json:"text"`
	Timestamp  time.Time         `json:"timestamp"`
}

// AcceptResponse is returned by the accept endpoint.
type AcceptResponse struct {
	Ticket  TicketResponse   `json:"ticket"`
	Session *SessionResponse `json:"session"`
	Reused  bool             `json:"reused"`
	State   string           `json:"state"`
	// NavigateTo is the view the accepting admin should switch to.
	NavigateTo string `json:"navigate_to,omitempty"`
}

// SessionViewResponse is a participant's view of a chat.
type SessionViewResponse struct {
	Session  SessionResponse       `json:"session"`
	Ticket   *TicketResponse       `json:"ticket"`
	Messages []ChatMessageResponse `json:"messages"`
	State    string                `json:"state"`
}

// SendMessageRequest payload.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// EndChatResponse is returned once a chat ended.
type EndChatResponse struct {
	Session SessionResponse `json:"session"`
	Ticket  *TicketResponse `json:"ticket"`
}
