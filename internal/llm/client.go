// Package llm talks to the OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"bankbot/internal/domain"
)

var (
	// ErrNoChoices is returned when the endpoint answers without any completion choice.
	ErrNoChoices = errors.New("completion response has no choices")
	// ErrNoMessage is returned when the first choice carries no message content field.
	ErrNoMessage = errors.New("completion choice has no message")
)

// Config configures the completion client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client issues one blocking, non-streaming completion request per call.
type Client struct {
	api *goopenai.Client
}

// NewClient creates a completion client. A zero Timeout leaves requests bounded only by ctx.
func NewClient(cfg Config) *Client {
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{api: goopenai.NewClientWithConfig(apiCfg)}
}

// Complete sends the full ordered transcript and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(messages),
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	msg := resp.Choices[0].Message
	if msg.Role == "" && msg.Content == "" {
		return "", ErrNoMessage
	}
	return msg.Content, nil
}

func toChatMessages(messages []domain.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = goopenai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

var _ domain.Completer = (*Client)(nil)
