package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventSessionCreated      EventType = "session_created"
	EventSessionUpdated      EventType = "session_updated"
	EventSessionClosed       EventType = "session_closed"
	EventChatMessageAppended EventType = "chat_message_appended"
)

// AllEventTypes lists every type a change-feed observer may care about.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventSessionCreated,
	EventSessionUpdated,
	EventSessionClosed,
	EventChatMessageAppended,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a change emitted by services. TicketID, SessionID and
// CustomerID are routing keys for observers; Payload is informational.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	TicketID   string    `json:"ticket_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	Actor      Actor     `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
	// Remote is set on events relayed from another instance. Handlers with
	// external side effects skip them; the publishing instance already ran.
	Remote bool `json:"-"`
}

// DecodeEvent parses the JSON form of an event and restores Payload to the
// struct published for its type.
func DecodeEvent(data []byte) (Event, error) {
	var wire struct {
		Event
		Payload json.RawMessage `json:"payload,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Event{}, err
	}
	event := wire.Event
	event.Payload = nil
	if len(wire.Payload) == 0 || string(wire.Payload) == "null" {
		return event, nil
	}

	var err error
	switch event.Type {
	case EventTicketCreated:
		event.Payload, err = decodePayload[TicketCreatedPayload](wire.Payload)
	case EventTicketStatusChanged:
		event.Payload, err = decodePayload[TicketStatusChangedPayload](wire.Payload)
	case EventSessionCreated, EventSessionUpdated, EventSessionClosed:
		event.Payload, err = decodePayload[SessionChangedPayload](wire.Payload)
	case EventChatMessageAppended:
		event.Payload, err = decodePayload[ChatMessageAppendedPayload](wire.Payload)
	default:
		event.Payload, err = decodePayload[map[string]any](wire.Payload)
	}
	if err != nil {
		return Event{}, fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return event, nil
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority      domain.TicketPriority `json:"priority"`
	Title         string                `json:"title"`
	FromAssistant bool                  `json:"from_assistant,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// SessionChangedPayload is shared by the session events.
type SessionChangedPayload struct {
	Status       domain.SessionStatus `json:"status"`
	ConsultantID *string              `json:"consultant_id,omitempty"`
}

// ChatMessageAppendedPayload payload.
type ChatMessageAppendedPayload struct {
	MessageID   string            `json:"message_id"`
	SenderRole  domain.SenderRole `json:"sender_role"`
	TextPreview string            `json:"text_preview"`
}

// Preview shortens text for event payloads and logs.
func Preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
