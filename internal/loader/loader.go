// Package loader reads the source policy document into domain documents.
package loader

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"bankbot/internal/domain"
)

var (
	// ErrDocumentMissing is returned when the source document does not exist.
	ErrDocumentMissing = errors.New("document not found")
	// ErrUnsupportedFormat is returned for files that are neither PDF nor plain text.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyDocument is returned when no text could be extracted.
	ErrEmptyDocument = errors.New("document has no extractable text")
)

// Load reads path. PDFs yield one Document per non-empty page, text files a single Document.
func Load(path string) ([]domain.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentMissing, path)
		}
		return nil, err
	}

	var docs []domain.Document
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		docs, err = loadPDF(path)
	case ".txt", ".md":
		docs, err = loadText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}
	return docs, nil
}

func loadText(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []domain.Document{{ID: hashString(path), Path: path, Page: 1, Content: string(data)}}, nil
}

func loadPDF(path string) ([]domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var docs []domain.Document
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d of %s: %w", i, path, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.Document{
			ID:      hashString(path + "#" + strconv.Itoa(i)),
			Path:    path,
			Page:    i,
			Content: text,
		})
	}
	return docs, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
