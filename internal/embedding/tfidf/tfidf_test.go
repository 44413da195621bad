package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBeforePrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "password")
	assert.ErrorIs(t, err, ErrNotPrepared)
}

func TestPrepareEmptyCorpus(t *testing.T) {
	assert.ErrorIs(t, NewEmbedder().Prepare(nil), ErrEmptyCorpus)
	assert.Error(t, NewEmbedder().Prepare([]string{"the and of"}))
}

func TestEmbedNormalisedAndComparable(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"To reset your password, go to Settings > Security",
		"Interest on savings accounts is credited quarterly",
		"Debit cards can be blocked from the Cards menu",
	}))
	assert.Positive(t, e.Dimension())

	q, err := e.Embed(ctx, "How do I reset my password?")
	require.NoError(t, err)
	require.Len(t, q, e.Dimension())

	norm := 0.0
	for _, v := range q {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	pw, _ := e.Embed(ctx, "To reset your password, go to Settings > Security")
	cards, _ := e.Embed(ctx, "Debit cards can be blocked from the Cards menu")
	assert.Greater(t, dot(q, pw), dot(q, cards))
}

func TestEmbedUnknownTermsZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"savings account interest"}))

	v, err := e.Embed(context.Background(), "xylophone")
	require.NoError(t, err)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
