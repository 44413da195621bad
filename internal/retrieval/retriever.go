package retrieval

import (
	"context"
	"strings"

	"bankbot/internal/domain"
)

// Searcher is the lookup side of an Index.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

// Retriever adapts a Searcher to domain.Retriever with a fixed top-K.
type Retriever struct {
	index Searcher
	topK  int
}

func NewRetriever(index Searcher, topK int) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{index: index, topK: topK}
}

// Retrieve returns the text of up to top-K segments, most similar first.
// A blank query retrieves nothing.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	res, err := r.index.Search(ctx, query, r.topK)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(res))
	for _, sr := range res {
		if sr.Chunk.Text == "" {
			continue
		}
		out = append(out, sr.Chunk.Text)
	}
	return out, nil
}

var _ domain.Retriever = (*Retriever)(nil)
