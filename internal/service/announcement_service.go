package service

import (
	"context"
	"errors"
	"strings"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// AnnouncementService manages admin notices.
type AnnouncementService struct {
	announcements repository.AnnouncementRepository
}

// NewAnnouncementService builds the service.
func NewAnnouncementService(repo repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{announcements: repo}
}

// Create publishes a notice.
func (s *AnnouncementService) Create(ctx context.Context, actor domain.Actor, title, body string) (*domain.Announcement, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	a := &domain.Announcement{
		AuthorID: actor.ID,
		Title:    strings.TrimSpace(title),
		Body:     strings.TrimSpace(body),
	}
	if a.Title == "" {
		return nil, apperrors.NewValidationError("invalid announcement", map[string]any{"title": "required"})
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, apperrors.NewWriteFailed("create announcement", err)
	}
	return a, nil
}

// List returns the newest notices first.
func (s *AnnouncementService) List(ctx context.Context, limit int) ([]domain.Announcement, error) {
	list, err := s.announcements.ListRecent(ctx, limit)
	if err != nil {
		return nil, storeUnavailable("list announcements", err)
	}
	if list == nil {
		list = []domain.Announcement{}
	}
	return list, nil
}

// Delete removes a notice.
func (s *AnnouncementService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	err := s.announcements.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("announcement", nil)
	}
	if err != nil {
		return apperrors.NewWriteFailed("delete announcement", err)
	}
	return nil
}
