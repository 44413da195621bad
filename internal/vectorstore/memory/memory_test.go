package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankbot/internal/domain"
)

func seeded(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	require.NoError(t, s.Upsert(ctx,
		[]domain.Chunk{{ChunkID: "a", Text: "a"}, {ChunkID: "b", Text: "b"}, {ChunkID: "c", Text: "c"}},
		[][]float64{{1, 0}, {0, 1}, {0.6, 0.8}},
	))
	return s
}

func TestSearchOrdersByScore(t *testing.T) {
	s := seeded(t)
	res, err := s.Search(context.Background(), []float64{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Chunk.ChunkID)
	assert.Equal(t, "c", res[1].Chunk.ChunkID)
	assert.InDelta(t, 0.8, res[1].Score, 1e-9)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := seeded(t)
	res, err := s.Search(context.Background(), []float64{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{res[0].Chunk.ChunkID, res[1].Chunk.ChunkID, res[2].Chunk.ChunkID})
}

func TestUpsertValidation(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	assert.ErrorIs(t, s.Init(ctx, 0), ErrInvalidDimension)
	require.NoError(t, s.Init(ctx, 2))
	assert.ErrorIs(t, s.Upsert(ctx, []domain.Chunk{{}}, nil), ErrLengthMismatch)
	assert.ErrorIs(t, s.Upsert(ctx, []domain.Chunk{{}}, [][]float64{{1, 2, 3}}), ErrDimensionMismatch)
}

func TestClear(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.Clear(context.Background()))
	assert.Zero(t, s.Len())
	res, err := s.Search(context.Background(), []float64{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestConcurrentSearch(t *testing.T) {
	s := seeded(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Search(context.Background(), []float64{1, 0}, 1)
			assert.NoError(t, err)
			assert.Equal(t, "a", res[0].Chunk.ChunkID)
		}()
	}
	wg.Wait()
}
