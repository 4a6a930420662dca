package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/dto"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// SessionsHandler serves live-chat sessions to their participants.
type SessionsHandler struct {
	handoff *service.HandoffService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(handoffService *service.HandoffService) *SessionsHandler {
	return &SessionsHandler{handoff: handoffService}
}

// Open GET /sessions/:id. An admin opening an unstaffed session joins it.
func (h *SessionsHandler) Open(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	view, err := h.handoff.OpenSession(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SessionViewResponse{
		Session:  sessionResponse(view.Session),
		Ticket:   optionalTicket(view.Ticket),
		Messages: messageList(view.Messages),
		State:    string(view.State),
	}})
}

// Messages GET /sessions/:id/messages.
func (h *SessionsHandler) Messages(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	msgs, err := h.handoff.Messages(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messageList(msgs)})
}

// SendMessage POST /sessions/:id/messages.
func (h *SessionsHandler) SendMessage(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.handoff.SendMessage(c.UserContext(), actor, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// EndChat POST /sessions/:id/end.
func (h *SessionsHandler) EndChat(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	result, err := h.handoff.EndChat(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EndChatResponse{
		Session: sessionResponse(result.Session),
		Ticket:  optionalTicket(result.Ticket),
	}})
}
