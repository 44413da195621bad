// Package qdrant stores segment vectors in a Qdrant collection over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"bankbot/internal/domain"
)

// pointsAPI is the subset of *qdrant.Client used by Storage.
type pointsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the Qdrant gRPC address, e.g. "http://localhost:6334".
	URL        string
	APIKey     string
	Collection string
}

// Storage implements domain.VectorStore on a cosine-distance collection.
type Storage struct {
	client     pointsAPI
	collection string
	dimension  int
}

// NewStorage dials Qdrant. The collection is created lazily by Init.
func NewStorage(cfg Config) (*Storage, error) {
	if cfg.URL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}
	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}
	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return newStorage(client, cfg.Collection), nil
}

func newStorage(client pointsAPI, collection string) *Storage {
	return &Storage{client: client, collection: collection}
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if exists {
		return nil
	}
	return s.create(ctx)
}

func (s *Storage) create(ctx context.Context) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection failed: %w", err)
	}
	return nil
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, ch := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(ch.ChunkID)),
			Vectors: qdrant.NewVectors(toFloat32(vectors[i])...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id": ch.DocumentID,
				"chunk_id":    ch.ChunkID,
				"index":       int64(ch.Index),
				"text":        ch.Text,
			}),
		}
	}
	wait := true
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 4
	}
	limit := uint64(topK)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}
	results := make([]domain.SearchResult, 0, len(points))
	for _, p := range points {
		var chunk domain.Chunk
		if v, ok := p.Payload["document_id"]; ok {
			chunk.DocumentID = v.GetStringValue()
		}
		if v, ok := p.Payload["chunk_id"]; ok {
			chunk.ChunkID = v.GetStringValue()
		}
		if v, ok := p.Payload["index"]; ok {
			chunk.Index = int(v.GetIntegerValue())
		}
		if v, ok := p.Payload["text"]; ok {
			chunk.Text = v.GetStringValue()
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: float64(p.Score)})
	}
	return results, nil
}

// Clear drops and recreates the collection so a rebuild starts empty.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("qdrant delete collection failed: %w", err)
	}
	if s.dimension == 0 {
		return nil
	}
	return s.create(ctx)
}

// Close releases the gRPC connection.
func (s *Storage) Close() error {
	return s.client.Close()
}

// pointID maps a chunk id onto the UUID space Qdrant accepts for point ids.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

var _ domain.VectorStore = (*Storage)(nil)
