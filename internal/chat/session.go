// Package chat holds per-session conversation state and runs chat turns
// against the retriever and the completion endpoint.
package chat

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bankbot/internal/domain"
	"bankbot/internal/logger"
)

// Prompt is the fixed opening of every session.
type Prompt struct {
	System  string
	Welcome string
}

// Sink delivers outgoing text to the user.
type Sink interface {
	Deliver(text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string)

func (f SinkFunc) Deliver(text string) { f(text) }

// Session is the explicit per-session context passed to each turn. A
// Session must only be used by one turn at a time; distinct sessions share
// nothing mutable.
type Session struct {
	ID string

	prompt     Prompt
	retriever  domain.Retriever
	completer  domain.Completer
	sink       Sink
	log        *logger.Logger
	transcript []domain.Message
	started    bool
}

// NewSession creates a session in the NotStarted state.
func NewSession(prompt Prompt, retriever domain.Retriever, completer domain.Completer, sink Sink, log *logger.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:        id,
		prompt:    prompt,
		retriever: retriever,
		completer: completer,
		sink:      sink,
		log:       log.With(logrus.Fields{"session_id": id}),
	}
}

// Start seeds the transcript with the system instruction and the welcome
// message, then delivers the welcome to the user.
func (s *Session) Start() {
	s.transcript = []domain.Message{
		domain.SystemMessage(s.prompt.System),
		domain.AssistantMessage(s.prompt.Welcome),
	}
	s.started = true
	s.log.Info("Session started")
	s.sink.Deliver(s.prompt.Welcome)
}

// ReceiveUserMessage appends text as a user message. Content is not validated.
func (s *Session) ReceiveUserMessage(text string) {
	s.append(domain.UserMessage(text))
}

// Stop empties the transcript, including the system instruction. The session
// stays usable; Start must be called again to restore the instruction.
func (s *Session) Stop() {
	s.transcript = nil
	s.log.Info("Session stopped")
}

// Started reports whether Start has been called at least once.
func (s *Session) Started() bool { return s.started }

// Transcript returns a copy of the current transcript.
func (s *Session) Transcript() []domain.Message {
	out := make([]domain.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len returns the number of transcript messages.
func (s *Session) Len() int { return len(s.transcript) }

// Truncate drops every message after the first n.
func (s *Session) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.transcript) {
		s.transcript = s.transcript[:n:n]
	}
}

func (s *Session) append(m domain.Message) {
	s.transcript = append(s.transcript, m)
}
