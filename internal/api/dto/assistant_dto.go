package dto

import (
	"time"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/assistant"
)

// AssistantChatRequest carries the conversation kept by the portal.
type AssistantChatRequest struct {
	History []assistant.Turn `json:"history"`
	Message string           `json:"message"`
}

// ConfirmSuggestionRequest turns an accepted suggestion into a ticket.
type ConfirmSuggestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// AnnouncementRequest payload.
type AnnouncementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// AnnouncementResponse is the wire form of a notice.
type AnnouncementResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
