package vector

import (
	"context"

	"github.com/hyperjump/docqa/internal/models"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory uses in-memory brute-force search. Good for single documents.
	IndexTypeMemory IndexType = "memory"
	// IndexTypeChromem stores entries in a non-persistent chromem-go collection.
	IndexTypeChromem IndexType = "chromem"
)

// NewVectorIndex creates an index of the specified type over entries.
// Supported types: "memory" (default), "chromem". An unknown type is a
// *models.InvalidArgumentError.
func NewVectorIndex(ctx context.Context, indexType string, entries []Entry, concurrency int) (Index, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(entries)
	case IndexTypeChromem:
		return NewChromemIndex(ctx, entries, concurrency)
	default:
		return nil, models.InvalidArgument("index_type", "unknown index type %q (supported: memory, chromem)", indexType)
	}
}
