package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankbot/internal/domain"
)

type fakeAPI struct {
	exists   bool
	created  []*qdrant.CreateCollection
	deleted  []string
	upserts  []*qdrant.UpsertPoints
	queries  []*qdrant.QueryPoints
	points   []*qdrant.ScoredPoint
	queryErr error
	closed   bool
}

func (f *fakeAPI) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func (f *fakeAPI) CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error {
	f.created = append(f.created, req)
	return nil
}

func (f *fakeAPI) DeleteCollection(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeAPI) Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeAPI) Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queries = append(f.queries, req)
	return f.points, f.queryErr
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}

func TestNewStorageValidation(t *testing.T) {
	_, err := NewStorage(Config{Collection: "c"})
	assert.Error(t, err)
	_, err = NewStorage(Config{URL: "localhost:6334"})
	assert.Error(t, err)
}

func TestInitCreatesMissingCollection(t *testing.T) {
	api := &fakeAPI{}
	s := newStorage(api, "policies")

	require.NoError(t, s.Init(context.Background(), 3))
	require.Len(t, api.created, 1)
	assert.Equal(t, "policies", api.created[0].CollectionName)
	params := api.created[0].GetVectorsConfig().GetParams()
	assert.EqualValues(t, 3, params.GetSize())
	assert.Equal(t, qdrant.Distance_Cosine, params.GetDistance())
}

func TestInitKeepsExistingCollection(t *testing.T) {
	api := &fakeAPI{exists: true}
	require.NoError(t, newStorage(api, "policies").Init(context.Background(), 3))
	assert.Empty(t, api.created)
}

func TestUpsertBuildsPoints(t *testing.T) {
	api := &fakeAPI{}
	s := newStorage(api, "policies")
	chunks := []domain.Chunk{{DocumentID: "d", ChunkID: "d:0", Text: "reset password", Index: 0}}

	require.NoError(t, s.Upsert(context.Background(), chunks, [][]float64{{0.1, 0.2}}))
	require.Len(t, api.upserts, 1)
	req := api.upserts[0]
	assert.True(t, req.GetWait())
	require.Len(t, req.Points, 1)
	assert.Equal(t, pointID("d:0"), req.Points[0].GetId().GetUuid())
	assert.Equal(t, "reset password", req.Points[0].Payload["text"].GetStringValue())

	assert.Error(t, s.Upsert(context.Background(), chunks, nil))
}

func TestSearchMapsPayload(t *testing.T) {
	api := &fakeAPI{points: []*qdrant.ScoredPoint{{
		Score: 0.75,
		Payload: qdrant.NewValueMap(map[string]any{
			"document_id": "d",
			"chunk_id":    "d:3",
			"index":       int64(3),
			"text":        "To reset your password, go to Settings > Security",
		}),
	}}}
	s := newStorage(api, "policies")

	res, err := s.Search(context.Background(), []float64{1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "d:3", res[0].Chunk.ChunkID)
	assert.Equal(t, 3, res[0].Chunk.Index)
	assert.InDelta(t, 0.75, res[0].Score, 1e-6)
	assert.EqualValues(t, 4, api.queries[0].GetLimit())
}

func TestSearchError(t *testing.T) {
	api := &fakeAPI{queryErr: errors.New("unavailable")}
	_, err := newStorage(api, "policies").Search(context.Background(), []float64{1}, 1)
	assert.ErrorContains(t, err, "qdrant search failed")
}

func TestClearRecreatesCollection(t *testing.T) {
	api := &fakeAPI{}
	s := newStorage(api, "policies")
	require.NoError(t, s.Init(context.Background(), 2))
	require.NoError(t, s.Clear(context.Background()))

	assert.Equal(t, []string{"policies"}, api.deleted)
	assert.Len(t, api.created, 2)
	require.NoError(t, s.Close())
	assert.True(t, api.closed)
}

func TestPointIDDeterministic(t *testing.T) {
	assert.Equal(t, pointID("d:1"), pointID("d:1"))
	assert.NotEqual(t, pointID("d:1"), pointID("d:2"))
}
