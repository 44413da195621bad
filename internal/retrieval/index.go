// Package retrieval builds the process-wide document index and answers
// similarity lookups against it.
package retrieval

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"bankbot/internal/domain"
	"bankbot/internal/logger"
)

var (
	// ErrIndexUnavailable is returned by lookups before a successful Build.
	ErrIndexUnavailable = errors.New("document index unavailable")
	// ErrAlreadyBuilt is returned when Build is called on a ready index.
	ErrAlreadyBuilt = errors.New("document index already built")
	// ErrNoChunks is returned when the documents produced nothing to index.
	ErrNoChunks = errors.New("no chunks produced from documents")

	wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
)

// BuildStats describes a completed index build.
type BuildStats struct {
	Documents int
	Chunks    int
	Embedder  string
	Dimension int
	Elapsed   time.Duration
}

// Index is built once and then shared read-only by every session.
type Index struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
	log      *logger.Logger

	buildMu sync.Mutex
	ready   atomic.Bool
	chunks  []domain.Chunk
}

func NewIndex(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, log *logger.Logger) *Index {
	return &Index{chunker: chunker, embedder: embedder, store: store, log: log}
}

// Ready reports whether Build has completed successfully.
func (x *Index) Ready() bool { return x.ready.Load() }

// Build splits, embeds and stores docs. It may succeed at most once.
func (x *Index) Build(ctx context.Context, docs []domain.Document) (BuildStats, error) {
	x.buildMu.Lock()
	defer x.buildMu.Unlock()
	if x.ready.Load() {
		return BuildStats{}, ErrAlreadyBuilt
	}
	start := time.Now()

	var chunks []domain.Chunk
	var texts []string
	for _, d := range docs {
		cs, err := x.chunker.Chunk(d)
		if err != nil {
			return BuildStats{}, fmt.Errorf("chunk %s page %d: %w", d.Path, d.Page, err)
		}
		for _, ch := range cs {
			chunks = append(chunks, ch)
			texts = append(texts, ch.Text)
		}
	}
	if len(chunks) == 0 {
		return BuildStats{}, ErrNoChunks
	}
	x.log.Info("Indexing documents", logrus.Fields{"documents": len(docs), "chunks": len(chunks), "embedder": x.embedder.Name()})

	if err := x.embedder.Prepare(texts); err != nil {
		return BuildStats{}, fmt.Errorf("prepare embedder: %w", err)
	}
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := x.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return BuildStats{}, fmt.Errorf("embed chunk %s: %w", chunks[i].ChunkID, err)
		}
		vectors[i] = vec
	}
	dim := x.embedder.Dimension()
	if err := x.store.Init(ctx, dim); err != nil {
		return BuildStats{}, fmt.Errorf("init vector store: %w", err)
	}
	if err := x.store.Clear(ctx); err != nil {
		return BuildStats{}, fmt.Errorf("clear vector store: %w", err)
	}
	if err := x.store.Upsert(ctx, chunks, vectors); err != nil {
		return BuildStats{}, fmt.Errorf("upsert vectors: %w", err)
	}

	x.chunks = chunks
	x.ready.Store(true)
	stats := BuildStats{
		Documents: len(docs),
		Chunks:    len(chunks),
		Embedder:  x.embedder.Name(),
		Dimension: dim,
		Elapsed:   time.Since(start),
	}
	x.log.Info("Index ready", logrus.Fields{"chunks": stats.Chunks, "dimension": stats.Dimension, "elapsed": stats.Elapsed.String()})
	return stats, nil
}

// Search returns up to topK chunks by descending similarity. When the query
// shares no vocabulary with the index it falls back to lexical overlap and
// drops chunks with no overlap at all.
func (x *Index) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if !x.ready.Load() {
		return nil, ErrIndexUnavailable
	}
	vec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if isZero(vec) {
		return x.lexicalSearch(query, topK), nil
	}
	res, err := x.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return x.lexicalSearch(query, topK), nil
	}
	return res, nil
}

func (x *Index) lexicalSearch(query string, topK int) []domain.SearchResult {
	qset := toTokenSet(query)
	var out []domain.SearchResult
	for _, ch := range x.chunks {
		if score := overlapOchiai(qset, ch.Text); score > 0 {
			out = append(out, domain.SearchResult{Chunk: ch, Score: score})
		}
	}
	slices.SortStableFunc(out, func(a, b domain.SearchResult) int { return cmp.Compare(b.Score, a.Score) })
	if topK <= 0 {
		topK = 4
	}
	if topK < len(out) {
		out = out[:topK]
	}
	return out
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai is |A∩B| / sqrt(|A||B|) over the distinct tokens of both sides.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := toTokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
