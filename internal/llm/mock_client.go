package llm

import (
	"context"
	"fmt"
	"strings"

	"bankbot/internal/domain"
)

// MockClient answers without any network access. Used for offline demos and tests.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

// Complete echoes the latest user message and how much document context it saw.
func (m *MockClient) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var lastUser string
	contextBlocks := 0
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role == domain.RoleUser {
			lastUser = msg.Content
			break
		}
		if msg.Role == domain.RoleSystem && strings.HasPrefix(msg.Content, "Relevant Documents:") {
			contextBlocks++
		}
	}
	if lastUser == "" {
		return "[MOCK] How may I assist you?", nil
	}
	return fmt.Sprintf("[MOCK %s] Received %q with %d context block(s).", model, truncate(lastUser, 100), contextBlocks), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ domain.Completer = (*MockClient)(nil)
