package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/dto"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/assistant"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// AssistantHandler fronts the AI assistant of the customer portal.
type AssistantHandler struct {
	assistant *service.AssistantService
	tickets   *service.TicketService
}

// NewAssistantHandler constructs handler.
func NewAssistantHandler(assistantService *service.AssistantService, ticketService *service.TicketService) *AssistantHandler {
	return &AssistantHandler{assistant: assistantService, tickets: ticketService}
}

// Chat POST /assistant/chat.
func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AssistantChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reply, err := h.assistant.Chat(c.UserContext(), actor, req.History, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reply})
}

// ConfirmSuggestion POST /assistant/tickets.
func (h *AssistantHandler) ConfirmSuggestion(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.ConfirmSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority, err := domain.ParseTicketPriority(req.Priority)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket", map[string]any{"priority": "must be low, medium or high"})
	}
	ticket, err := h.tickets.CreateFromSuggestion(c.UserContext(), actor, assistant.TicketSuggestion{
		Title:       req.Title,
		Description: req.Description,
	}, priority)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}
