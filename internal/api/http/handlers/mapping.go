package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/dto"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/auth"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

func currentActor(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("sign in required")
	}
	return principal.Actor(), nil
}

func parseTicketFilter(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status, err := domain.ParseTicketStatus(part)
			if err != nil {
				return filter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			priority, err := domain.ParseTicketPriority(part)
			if err != nil {
				return filter, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": part})
			}
			filter.Priorities = append(filter.Priorities, priority)
		}
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.SearchTerm = &q
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		CustomerID:  ticket.CustomerID,
		SessionID:   ticket.SessionID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func ticketList(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func optionalTicket(ticket *domain.Ticket) *dto.TicketResponse {
	if ticket == nil {
		return nil
	}
	resp := ticketResponse(ticket)
	return &resp
}

func sessionResponse(session *domain.LiveChatSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:            session.ID,
		TicketID:      session.TicketID,
		CustomerID:    session.CustomerID,
		ConsultantID:  session.ConsultantID,
		Status:        session.Status,
		CreatedAt:     session.CreatedAt,
		StartedAt:     session.StartedAt,
		ClosedAt:      session.ClosedAt,
		LastMessageAt: session.LastMessageAt,
	}
}

func messageResponse(msg *domain.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:         msg.ID,
		SessionID:  msg.SessionID,
		SenderID:   msg.SenderID,
		SenderRole: msg.SenderRole,
		Text:       msg.Text,
		Timestamp:  msg.Timestamp,
	}
}

func messageList(msgs []domain.ChatMessage) []dto.ChatMessageResponse {
	items := make([]dto.ChatMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return items
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}
