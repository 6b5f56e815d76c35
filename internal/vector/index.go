// Package vector provides the read-only vector index built over a document's chunks.
package vector

import (
	"context"

	"github.com/hyperjump/docqa/internal/models"
)

// Index is an immutable set of (chunk, vector) entries supporting top-k similarity search.
type Index interface {
	// Search returns at most k chunks ordered by descending cosine similarity to query,
	// ties broken by ascending chunk ordinal. k <= 0 is an *models.InvalidArgumentError.
	Search(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error)
	// Chunks returns the indexed chunks in ordinal order.
	Chunks() []models.Chunk
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// Entry is one chunk and its embedding. Entries are created at build time and never mutated.
type Entry struct {
	Chunk  models.Chunk
	Vector []float32
}

func validateSearch(dimensions int, query []float32, k int) error {
	if k <= 0 {
		return models.InvalidArgument("k", "must be positive, got %d", k)
	}
	if len(query) != dimensions {
		return models.InvalidArgument("query", "dimension mismatch: got %d, expected %d", len(query), dimensions)
	}
	return nil
}

func chunksOf(entries []Entry) []models.Chunk {
	out := make([]models.Chunk, len(entries))
	for i, e := range entries {
		out[i] = e.Chunk
	}
	return out
}
