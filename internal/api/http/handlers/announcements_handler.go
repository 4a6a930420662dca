package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/api/dto"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// AnnouncementsHandler serves admin notices.
type AnnouncementsHandler struct {
	service *service.AnnouncementService
}

// NewAnnouncementsHandler constructs handler.
func NewAnnouncementsHandler(announcementService *service.AnnouncementService) *AnnouncementsHandler {
	return &AnnouncementsHandler{service: announcementService}
}

// List GET /announcements.
func (h *AnnouncementsHandler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), parseInt(c.Query("limit"), 20))
	if err != nil {
		return err
	}
	items := make([]dto.AnnouncementResponse, 0, len(list))
	for i := range list {
		items = append(items, announcementResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /announcements.
func (h *AnnouncementsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	a, err := h.service.Create(c.UserContext(), actor, req.Title, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": announcementResponse(a)})
}

// Delete DELETE /announcements/:id.
func (h *AnnouncementsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func announcementResponse(a *domain.Announcement) dto.AnnouncementResponse {
	return dto.AnnouncementResponse{
		ID:        a.ID,
		AuthorID:  a.AuthorID,
		Title:     a.Title,
		Body:      a.Body,
		CreatedAt: a.CreatedAt,
	}
}
