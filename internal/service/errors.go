package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/handoff"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// Codes the HTTP layer and the portals switch on.
const (
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeAssistantUnavailable = "ASSISTANT_UNAVAILABLE"
	CodeSessionClosed        = "SESSION_CLOSED"
	CodeInvalidTransition    = "INVALID_TRANSITION"
)

func storeUnavailable(operation string, err error) error {
	return &apperrors.DomainError{
		Code:       CodeStoreUnavailable,
		Message:    operation + " failed",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"operation": operation},
		Err:        err,
	}
}

// decisionError converts a handoff decision error. Rejections keep their
// forced navigation in the navigate_to detail.
func decisionError(err error, resource string) error {
	var mapped error
	switch {
	case errors.Is(err, handoff.ErrNotFound):
		mapped = apperrors.NewNotFound(resource, nil)
	case errors.Is(err, handoff.ErrAccessDenied):
		mapped = apperrors.NewAccessDenied("you are not a participant of this chat", nil)
	case errors.Is(err, handoff.ErrAdminOnly):
		mapped = apperrors.NewForbidden("admin role required")
	case errors.Is(err, handoff.ErrSessionClosed):
		mapped = apperrors.NewDomainError(CodeSessionClosed, "chat session is closed", http.StatusConflict, nil)
	case errors.Is(err, handoff.ErrInvalidTransition):
		mapped = apperrors.NewDomainError(CodeInvalidTransition, "action not allowed in the current state", http.StatusConflict, nil)
	case errors.Is(err, handoff.ErrEmptyMessage):
		mapped = apperrors.NewValidationError("message text is required", nil)
	default:
		return apperrors.NewInternalError(err)
	}
	if view, ok := handoff.NavigationFor(err); ok {
		mapped = apperrors.WithDetail(mapped, "navigate_to", view.String())
	}
	return mapped
}

// publisher is embedded by services that emit change events.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = nowUTC()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("publish event failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.String("session_id", event.SessionID),
			zap.Error(err))
	}
}
