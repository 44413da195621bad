package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankbot/internal/domain"
)

type stubSearcher struct {
	results []domain.SearchResult
	err     error
	calls   int
	topK    int
}

func (s *stubSearcher) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	s.calls++
	s.topK = topK
	return s.results, s.err
}

func TestRetrieveReturnsTextsInOrder(t *testing.T) {
	s := &stubSearcher{results: []domain.SearchResult{
		{Chunk: domain.Chunk{Text: "first"}, Score: 0.9},
		{Chunk: domain.Chunk{Text: ""}, Score: 0.5},
		{Chunk: domain.Chunk{Text: "second"}, Score: 0.4},
	}}
	r := NewRetriever(s, 0)

	got, err := r.Retrieve(context.Background(), "reset password")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, 4, s.topK)
}

func TestRetrieveBlankQuery(t *testing.T) {
	s := &stubSearcher{}
	got, err := NewRetriever(s, 2).Retrieve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, s.calls)
}

func TestRetrievePropagatesUnavailable(t *testing.T) {
	r := NewRetriever(newTestIndex(), 4)
	_, err := r.Retrieve(context.Background(), "password")
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}
