// Package indexer provides chunking and the ingestion pipeline that builds a vector index from a PDF.
package indexer

import (
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
)

// Chunker splits page text into overlapping character windows.
type Chunker struct {
	maxSize int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap (in characters).
// Requires maxSize > 0 and 0 <= overlap < maxSize.
func NewChunker(maxSize, overlap int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, models.InvalidArgument("maxSize", "must be positive, got %d", maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, models.InvalidArgument("overlap", "must be in [0, %d), got %d", maxSize, overlap)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}, nil
}

// MaxSize returns the window size.
func (c *Chunker) MaxSize() int { return c.maxSize }

// Overlap returns the overlap between consecutive windows of a page.
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks every page in order. Each window after the first on a page starts
// maxSize-overlap characters after the previous one; windows never span pages.
// Ordinal is assigned document-wide. Whitespace-only windows are dropped.
// Returns a *models.ChunkError when pages is empty or yields no usable text.
func (c *Chunker) Split(pages []models.PageRecord) ([]models.Chunk, error) {
	if len(pages) == 0 {
		return nil, &models.ChunkError{Reason: models.ReasonEmptyDocument}
	}
	chunks := make([]models.Chunk, 0)
	for _, p := range pages {
		for _, w := range c.windows(p.Text) {
			if utils.IsBlank(w) {
				continue
			}
			chunks = append(chunks, models.Chunk{
				SourcePageIndex: p.PageIndex,
				Ordinal:         len(chunks),
				Text:            w,
			})
		}
	}
	if len(chunks) == 0 {
		return nil, &models.ChunkError{Reason: models.ReasonEmptyDocument}
	}
	return chunks, nil
}

// windows returns the raw windows of text, ceil((L-overlap)/(maxSize-overlap)) of them
// for a text of L > overlap runes, and one window for shorter non-empty text.
func (c *Chunker) windows(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	step := c.maxSize - c.overlap
	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.maxSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end >= len(runes) {
			break
		}
	}
	return out
}
