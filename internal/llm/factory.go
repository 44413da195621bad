package llm

import (
	"os"
	"strings"

	"bankbot/internal/domain"
)

const (
	// EnvMode selects the completion backend.
	EnvMode = "BANKBOT_LLM_MODE"
	// ModeMock selects MockClient.
	ModeMock = "mock"
)

// MockRequested reports whether EnvMode asks for the mock backend.
func MockRequested() bool {
	return strings.EqualFold(os.Getenv(EnvMode), ModeMock)
}

// NewCompleter returns a MockClient when MockRequested, otherwise a real Client.
func NewCompleter(cfg Config) domain.Completer {
	if MockRequested() {
		return NewMockClient()
	}
	return NewClient(cfg)
}
