package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankbot/internal/domain"
	"bankbot/internal/logger"
)

var testPrompt = Prompt{
	System:  "You are a virtual assistant for the bank app.",
	Welcome: "Welcome to the support center. How may I assist you?",
}

type recordingSink struct {
	delivered []string
}

func (r *recordingSink) Deliver(text string) { r.delivered = append(r.delivered, text) }

type stubRetriever struct {
	segments []string
	err      error
	queries  []string
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	s.queries = append(s.queries, query)
	return s.segments, s.err
}

type completion struct {
	reply string
	err   error
}

type stubCompleter struct {
	script []completion
	calls  [][]domain.Message
	models []string
}

func (s *stubCompleter) Complete(ctx context.Context, model string, messages []domain.Message) (string, error) {
	s.calls = append(s.calls, messages)
	s.models = append(s.models, model)
	if len(s.script) == 0 {
		return "ok", nil
	}
	next := s.script[0]
	s.script = s.script[1:]
	return next.reply, next.err
}

func newTestSession(r domain.Retriever, c domain.Completer) (*Session, *recordingSink) {
	sink := &recordingSink{}
	return NewSession(testPrompt, r, c, sink, logger.Discard()), sink
}

func TestStartSeedsTranscriptAndDeliversWelcomeOnce(t *testing.T) {
	s, sink := newTestSession(&stubRetriever{}, &stubCompleter{})
	assert.False(t, s.Started())
	assert.NotEmpty(t, s.ID)

	s.Start()

	assert.True(t, s.Started())
	assert.Equal(t, []domain.Message{
		{Role: domain.RoleSystem, Content: testPrompt.System},
		{Role: domain.RoleAssistant, Content: testPrompt.Welcome},
	}, s.Transcript())
	assert.Equal(t, []string{testPrompt.Welcome}, sink.delivered)
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	a, _ := newTestSession(&stubRetriever{}, &stubCompleter{})
	b, _ := newTestSession(&stubRetriever{}, &stubCompleter{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestReceiveUserMessageAppendsUnvalidated(t *testing.T) {
	s, _ := newTestSession(&stubRetriever{}, &stubCompleter{})
	s.Start()
	s.ReceiveUserMessage("")

	got := s.Transcript()
	require.Len(t, got, 3)
	assert.Equal(t, domain.UserMessage(""), got[2])
}

func TestStopIsIdempotent(t *testing.T) {
	s, _ := newTestSession(&stubRetriever{}, &stubCompleter{})
	s.Start()
	s.ReceiveUserMessage("hello")

	s.Stop()
	assert.Empty(t, s.Transcript())
	s.Stop()
	assert.Empty(t, s.Transcript())
	assert.True(t, s.Started())
}

func TestStartAfterStopReseeds(t *testing.T) {
	s, sink := newTestSession(&stubRetriever{}, &stubCompleter{})
	s.Start()
	s.Stop()
	s.Start()

	assert.Len(t, s.Transcript(), 2)
	assert.Len(t, sink.delivered, 2)
}

func TestTranscriptIsACopy(t *testing.T) {
	s, _ := newTestSession(&stubRetriever{}, &stubCompleter{})
	s.Start()
	got := s.Transcript()
	got[0].Content = "mutated"

	assert.Equal(t, testPrompt.System, s.Transcript()[0].Content)
}

func TestTruncate(t *testing.T) {
	s, _ := newTestSession(&stubRetriever{}, &stubCompleter{})
	s.Start()
	s.ReceiveUserMessage("a")
	s.ReceiveUserMessage("b")

	s.Truncate(3)
	assert.Equal(t, 3, s.Len())
	s.Truncate(10)
	assert.Equal(t, 3, s.Len())
	s.Truncate(-1)
	assert.Zero(t, s.Len())
}
