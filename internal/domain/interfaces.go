package domain

import "context"

// Document represents a single loaded unit of the source policy document.
// PDF sources produce one Document per page.
type Document struct {
	ID      string
	Path    string
	Page    int
	Content string
}

// Chunk is a segment of a document used as a retrieval unit.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Retriever returns the text of the segments most relevant to a query,
// ordered by descending similarity.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// Completer produces a single assistant reply for an ordered conversation.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}
