package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/dto"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
)

// AdminTicketsHandler serves the consultant queue.
type AdminTicketsHandler struct {
	tickets *service.TicketService
	handoff *service.HandoffService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService, handoffService *service.HandoffService) *AdminTicketsHandler {
	return &AdminTicketsHandler{tickets: ticketService, handoff: handoffService}
}

// ListTickets GET /admin/tickets.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketList(tickets)})
}

// GetTicket GET /admin/tickets/:id.
func (h *AdminTicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Accept POST /admin/tickets/:id/accept.
func (h *AdminTicketsHandler) Accept(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	result, err := h.handoff.Accept(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}

	resp := dto.AcceptResponse{
		Ticket: ticketResponse(result.Ticket),
		Reused: result.Reused,
		State:  string(result.State),
	}
	if result.Session != nil {
		session := sessionResponse(result.Session)
		resp.Session = &session
		resp.NavigateTo = handoff.LiveChat(result.Session.ID).String()
	}
	return c.JSON(fiber.Map{"data": resp})
}
