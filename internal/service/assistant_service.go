package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/assistant"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

// AssistantService fronts the LLM for the customer portal.
type AssistantService struct {
	client assistant.Client
	logger *zap.Logger
}

// NewAssistantService builds the service. A nil client disables the assistant.
func NewAssistantService(client assistant.Client, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{client: client, logger: logger}
}

// Chat sends the customer's message with the conversation so far.
func (s *AssistantService) Chat(ctx context.Context, actor domain.Actor, history []assistant.Turn, message string) (assistant.Reply, error) {
	if actor.Role != domain.RoleCustomer {
		return assistant.Reply{}, apperrors.NewForbidden("the assistant serves customers")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return assistant.Reply{}, apperrors.NewValidationError("message is required", nil)
	}
	if s.client == nil {
		return assistant.Reply{}, apperrors.NewUnavailable(CodeAssistantUnavailable, "assistant is not configured")
	}

	reply, err := s.client.Reply(ctx, history, message)
	if errors.Is(err, assistant.ErrAssistantDisabled) {
		return assistant.Reply{}, apperrors.NewUnavailable(CodeAssistantUnavailable, "assistant is not configured")
	}
	if err != nil {
		s.logger.Warn("assistant call failed", zap.String("user_id", actor.ID), zap.Error(err))
		return assistant.Reply{}, &apperrors.DomainError{
			Code:       CodeAssistantUnavailable,
			Message:    "assistant is unavailable, try again or file a ticket",
			HTTPStatus: 503,
			Err:        err,
		}
	}
	return reply, nil
}
