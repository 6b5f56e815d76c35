package vector

import (
	"context"

	"github.com/hyperjump/docqa/internal/models"
)

// MemoryIndex is an in-memory vector index using brute-force cosine similarity.
// Vector norms are computed once at construction.
type MemoryIndex struct {
	dimensions int
	entries    []Entry
	norms      []float64
}

// NewMemoryIndex creates an index over entries. All vectors must share one dimension.
func NewMemoryIndex(entries []Entry) (*MemoryIndex, error) {
	if len(entries) == 0 {
		return nil, &models.IndexBuildError{Reason: models.ReasonNoChunks}
	}
	dims := len(entries[0].Vector)
	m := &MemoryIndex{
		dimensions: dims,
		entries:    make([]Entry, len(entries)),
		norms:      make([]float64, len(entries)),
	}
	for i, e := range entries {
		if len(e.Vector) != dims || dims == 0 {
			return nil, &models.IndexBuildError{Reason: models.ReasonDimensionMismatch}
		}
		vec := make([]float32, dims)
		copy(vec, e.Vector)
		m.entries[i] = Entry{Chunk: e.Chunk, Vector: vec}
		m.norms[i] = L2Norm(vec)
	}
	return m, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Search returns the top-k chunks by cosine similarity to query.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error) {
	if err := validateSearch(m.dimensions, query, k); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qn := L2Norm(query)
	hits := make([]models.ScoredChunk, len(m.entries))
	for i, e := range m.entries {
		var score float64
		if qn > 0 && m.norms[i] > 0 {
			score = InnerProduct(query, e.Vector) / (qn * m.norms[i])
		}
		hits[i] = models.ScoredChunk{Chunk: e.Chunk, Score: score}
	}
	return rank(hits, k), nil
}

// Chunks returns the indexed chunks in ordinal order.
func (m *MemoryIndex) Chunks() []models.Chunk {
	return chunksOf(m.entries)
}

// Size returns the number of entries.
func (m *MemoryIndex) Size() int {
	return len(m.entries)
}

// Dimensions returns the vector dimension.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
