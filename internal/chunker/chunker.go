// Package chunker splits loaded documents into overlapping retrieval segments.
package chunker

import (
	"strconv"

	"bankbot/internal/domain"
)

func toChunks(document domain.Document, texts []string) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(texts))
	for _, text := range texts {
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       text,
			Index:      idx,
		})
	}
	return chunks
}
