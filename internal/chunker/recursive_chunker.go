package chunker

import (
	"strings"
	"unicode/utf8"

	"bankbot/internal/domain"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveChunker splits text on the coarsest separator that occurs in it,
// recursing into pieces that are still too long, then merges neighbouring
// pieces back together up to chunkSize runes. Consecutive chunks share up to
// chunkOverlap runes of trailing pieces.
type RecursiveChunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewRecursiveChunker(chunkSize, chunkOverlap int) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &RecursiveChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap, separators: defaultSeparators}
}

func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	if strings.TrimSpace(document.Content) == "" {
		return nil, nil
	}
	return toChunks(document, c.split(document.Content, c.separators)), nil
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var next []string
	for i, s := range separators {
		if s == "" {
			sep = s
			break
		}
		if strings.Contains(text, s) {
			sep = s
			next = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, pending []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) < c.chunkSize {
			pending = append(pending, p)
			continue
		}
		if len(pending) > 0 {
			out = append(out, c.merge(pending, sep)...)
			pending = nil
		}
		if len(next) == 0 {
			out = append(out, p)
		} else {
			out = append(out, c.split(p, next)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, c.merge(pending, sep)...)
	}
	return out
}

func (c *RecursiveChunker) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	joinCost := func(window []string) int {
		if len(window) > 0 {
			return sepLen
		}
		return 0
	}

	var docs, window []string
	total := 0
	for _, p := range pieces {
		l := runeLen(p)
		if total+l+joinCost(window) > c.chunkSize && len(window) > 0 {
			if doc := strings.TrimSpace(strings.Join(window, sep)); doc != "" {
				docs = append(docs, doc)
			}
			// drop leading pieces until only the overlap remains and p fits
			for total > c.chunkOverlap || (total+l+joinCost(window) > c.chunkSize && total > 0) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		total += l + joinCost(window)
		window = append(window, p)
	}
	if doc := strings.TrimSpace(strings.Join(window, sep)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
