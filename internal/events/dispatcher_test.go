package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

func TestInMemoryDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventSessionClosed, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventSessionClosed, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventSessionClosed})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSubscribeAll(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := map[EventType]int{}
	SubscribeAll(d, func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})
	for _, typ := range AllEventTypes {
		require.NoError(t, d.Publish(context.Background(), Event{Type: typ}))
	}
	assert.Len(t, seen, len(AllEventTypes))
}

func TestRedisRelaySkipsOwnOrigin(t *testing.T) {
	d := NewRedisDispatcher(nil, "supportdesk:test:changes", zap.NewNop())
	var got []Event
	d.Subscribe(EventChatMessageAppended, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	own, err := encodeEnvelope(d.origin, Event{Type: EventChatMessageAppended, SessionID: "s1"})
	require.NoError(t, err)
	peer, err := encodeEnvelope("peer", Event{Type: EventChatMessageAppended, SessionID: "s2"})
	require.NoError(t, err)

	d.relay(context.Background(), own)
	d.relay(context.Background(), peer)
	d.relay(context.Background(), []byte("not json"))

	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].SessionID)
	assert.True(t, got[0].Remote)
}

func TestRedisRelayRestoresTypedPayload(t *testing.T) {
	d := NewRedisDispatcher(nil, "supportdesk:test:changes", zap.NewNop())
	var got []Event
	d.Subscribe(EventTicketStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	peer, err := encodeEnvelope("peer", Event{
		Type:     EventTicketStatusChanged,
		TicketID: "t1",
		Payload: TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusInProgress,
			NewStatus: domain.TicketStatusInProgress,
		},
	})
	require.NoError(t, err)
	d.relay(context.Background(), peer)

	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(TicketStatusChangedPayload)
	require.True(t, ok, "payload type %T", got[0].Payload)
	assert.Equal(t, domain.TicketStatusInProgress, payload.OldStatus)
	assert.Equal(t, payload.OldStatus, payload.NewStatus)
}

func TestDecodeEvent(t *testing.T) {
	consultant := "admin-1"
	in := Event{
		ID:        "e1",
		Type:      EventSessionUpdated,
		SessionID: "s1",
		Actor:     Actor{UserID: consultant, Role: domain.RoleAdmin},
		Payload:   SessionChangedPayload{Status: domain.SessionStatusInProgress, ConsultantID: &consultant},
		Remote:    true,
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.False(t, out.Remote)
	assert.Equal(t, "s1", out.SessionID)
	assert.Equal(t, domain.RoleAdmin, out.Actor.Role)
	assert.Equal(t, SessionChangedPayload{Status: domain.SessionStatusInProgress, ConsultantID: &consultant}, out.Payload)

	bare, err := DecodeEvent([]byte(`{"type":"session_closed","session_id":"s2"}`))
	require.NoError(t, err)
	assert.Nil(t, bare.Payload)

	_, err = DecodeEvent([]byte(`{"type":"ticket_created","payload":"oops"}`))
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 10))
	assert.Equal(t, "héllo…", Preview("héllo world", 5))
}
