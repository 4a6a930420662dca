package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/config"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// Handlers returns the notification handler of every event type that notifies someone.
func (n *NotificationService) Handlers() map[events.EventType]events.EventHandler {
	return map[events.EventType]events.EventHandler{
		events.EventTicketCreated:       n.handleTicketCreated,
		events.EventTicketStatusChanged: n.handleTicketStatusChanged,
		events.EventSessionUpdated:      n.handleConsultantJoined,
		events.EventSessionClosed:       n.handleSessionClosed,
	}
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if ok && payload.OldStatus == payload.NewStatus {
		return nil
	}
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleConsultantJoined(ctx context.Context, event events.Event) error {
	n.logger.Info("ConsultantJoined",
		zap.String("session_id", event.SessionID),
		zap.String("consultant_id", event.Actor.UserID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionClosed(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionClosed", zap.String("session_id", event.SessionID), zap.String("ticket_id", event.TicketID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || event.CustomerID == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("customer_id", event.CustomerID),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
