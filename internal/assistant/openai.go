package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/config"
)

const systemPrompt = `You are the first-line support assistant of a help desk.
Answer the customer's question briefly. When the problem needs a human,
reply with only this JSON object and nothing else:
{"action":"create_ticket","title":"<short summary>","description":"<details gathered so far>"}`

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxHistory int
}

// NewOpenAIClient builds a client from configuration. A nil httpClient uses
// one with the configured timeout.
func NewOpenAIClient(cfg config.AssistantConfig, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	return &OpenAIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxHistory: cfg.MaxHistory,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Reply sends the conversation and parses the first choice.
func (c *OpenAIClient) Reply(ctx context.Context, history []Turn, message string) (Reply, error) {
	if c.apiKey == "" {
		return Reply{}, ErrAssistantDisabled
	}

	body, err := json.Marshal(c.buildRequest(history, message))
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Reply{}, fmt.Errorf("assistant: read response: %w", err)
	}

	var decoded chatResponse
	decodeErr := json.Unmarshal(raw, &decoded)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && decoded.Error != nil {
			return Reply{}, fmt.Errorf("assistant: HTTP %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return Reply{}, fmt.Errorf("assistant: HTTP %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return Reply{}, fmt.Errorf("assistant: decode response: %w", decodeErr)
	}
	if len(decoded.Choices) == 0 {
		return Reply{}, fmt.Errorf("assistant: empty response")
	}
	return ParseReply(decoded.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) buildRequest(history []Turn, message string) chatRequest {
	if c.maxHistory > 0 && len(history) > c.maxHistory {
		history = history[len(history)-c.maxHistory:]
	}
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		role := "user"
		if turn.Speaker == SpeakerAssistant {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})
	return chatRequest{Model: c.model, Messages: messages}
}
