package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/config"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/events"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/service"
)

func newNotifiedDispatcher(t *testing.T) (events.Dispatcher, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	notifications := service.NewNotificationService(zap.New(core), config.NotificationConfig{
		EmailFrom:  "desk@example.com",
		WebhookURL: "https://hooks.example.com/desk",
	})
	dispatcher := events.NewInMemoryDispatcher()
	StartNotificationWorker(dispatcher, notifications)
	return dispatcher, logs
}

func statusChanged(from, to domain.TicketStatus) events.Event {
	return events.Event{
		Type:       events.EventTicketStatusChanged,
		TicketID:   "t1",
		SessionID:  "s1",
		CustomerID: "c1",
		Payload:    events.TicketStatusChangedPayload{OldStatus: from, NewStatus: to},
	}
}

// overTheWire returns event as a peer instance receives it from the relay.
func overTheWire(t *testing.T, event events.Event) events.Event {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	decoded, err := events.DecodeEvent(data)
	require.NoError(t, err)
	decoded.Remote = true
	return decoded
}

func TestNotificationWorkerNotifiesLocalStatusChange(t *testing.T) {
	dispatcher, logs := newNotifiedDispatcher(t)

	require.NoError(t, dispatcher.Publish(context.Background(),
		statusChanged(domain.TicketStatusPending, domain.TicketStatusInProgress)))

	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationWorkerSkipsRelayedEvents(t *testing.T) {
	dispatcher, logs := newNotifiedDispatcher(t)

	relayed := overTheWire(t, statusChanged(domain.TicketStatusPending, domain.TicketStatusInProgress))
	require.NoError(t, dispatcher.Publish(context.Background(), relayed))
	closed := overTheWire(t, events.Event{Type: events.EventSessionClosed, SessionID: "s1", TicketID: "t1"})
	require.NoError(t, dispatcher.Publish(context.Background(), closed))

	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationWorkerIgnoresRepeatedAccept(t *testing.T) {
	dispatcher, logs := newNotifiedDispatcher(t)
	repeated := statusChanged(domain.TicketStatusInProgress, domain.TicketStatusInProgress)

	require.NoError(t, dispatcher.Publish(context.Background(), repeated))

	decoded := overTheWire(t, repeated)
	decoded.Remote = false
	require.NoError(t, dispatcher.Publish(context.Background(), decoded))

	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestStartNotificationWorkerNil(t *testing.T) {
	assert.NotPanics(t, func() {
		StartNotificationWorker(nil, nil)
		StartNotificationWorker(events.NewInMemoryDispatcher(), nil)
	})
}
