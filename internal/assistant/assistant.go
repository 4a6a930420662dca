// Package assistant talks to the LLM that answers customers before a human
// takes over. A reply is either plain text or a suggestion to open a ticket.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrAssistantDisabled is returned when no API key is configured.
var ErrAssistantDisabled = errors.New("assistant: not configured")

// Speaker identifies who produced a turn of the assistant conversation.
type Speaker string

const (
	SpeakerCustomer  Speaker = "customer"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one entry of the conversation so far.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// TicketSuggestion is the structured "create ticket" proposal. It only
// becomes a ticket after the customer confirms it.
type TicketSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Reply is either Text or Suggestion.
type Reply struct {
	Text       string            `json:"text,omitempty"`
	Suggestion *TicketSuggestion `json:"suggestion,omitempty"`
}

// Client produces replies.
type Client interface {
	Reply(ctx context.Context, history []Turn, message string) (Reply, error)
}

const createTicketAction = "create_ticket"

type action struct {
	Action      string `json:"action"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ParseReply interprets model output. A JSON object with action
// "create_ticket" and a title becomes a suggestion, optionally wrapped in a
// code fence; anything else is returned as text.
func ParseReply(content string) Reply {
	trimmed := strings.TrimSpace(content)
	candidate := stripFence(trimmed)
	if start, end := strings.Index(candidate, "{"), strings.LastIndex(candidate, "}"); start >= 0 && end > start {
		var a action
		if err := json.Unmarshal([]byte(candidate[start:end+1]), &a); err == nil &&
			a.Action == createTicketAction && strings.TrimSpace(a.Title) != "" {
			return Reply{Suggestion: &TicketSuggestion{
				Title:       strings.TrimSpace(a.Title),
				Description: strings.TrimSpace(a.Description),
			}}
		}
	}
	return Reply{Text: trimmed}
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}
