package worker

import (
	"context"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to dispatcher.
// Events relayed from other instances are skipped, so each change notifies
// once no matter how many instances run.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService) {
	if dispatcher == nil || notifications == nil {
		return
	}
	for eventType, handler := range notifications.Handlers() {
		dispatcher.Subscribe(eventType, localOnly(handler))
	}
}

func localOnly(handler events.EventHandler) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		if event.Remote {
			return nil
		}
		return handler(ctx, event)
	}
}
