package vector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/philippgille/chromem-go"
)

const (
	metaPage    = "page"
	metaOrdinal = "ordinal"
)

var errNoEmbeddingFunc = errors.New("chromem index only accepts precomputed embeddings")

// ChromemIndex stores entries in a non-persistent chromem-go collection.
// Each index owns its own DB, so no collection is shared between sessions.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimensions int
	chunks     []models.Chunk
	byID       map[string]models.Chunk
}

// NewChromemIndex adds entries to a fresh in-memory chromem collection.
// concurrency bounds chromem's own insert workers.
func NewChromemIndex(ctx context.Context, entries []Entry, concurrency int) (*ChromemIndex, error) {
	if len(entries) == 0 {
		return nil, &models.IndexBuildError{Reason: models.ReasonNoChunks}
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	dims := len(entries[0].Vector)
	db := chromem.NewDB()
	// Embedding is always done by the caller; the collection must never call out on its own.
	refuse := func(context.Context, string) ([]float32, error) { return nil, errNoEmbeddingFunc }
	collection, err := db.CreateCollection("docqa-"+uuid.New().String(), nil, refuse)
	if err != nil {
		return nil, &models.IndexBuildError{Reason: models.ReasonEmbeddingFailed, Err: fmt.Errorf("create collection: %w", err)}
	}
	idx := &ChromemIndex{
		db:         db,
		collection: collection,
		dimensions: dims,
		chunks:     make([]models.Chunk, len(entries)),
		byID:       make(map[string]models.Chunk, len(entries)),
	}
	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		if len(e.Vector) != dims || dims == 0 {
			return nil, &models.IndexBuildError{Reason: models.ReasonDimensionMismatch}
		}
		id := strconv.Itoa(e.Chunk.Ordinal)
		vec := make([]float32, dims)
		copy(vec, e.Vector)
		docs[i] = chromem.Document{
			ID:      id,
			Content: e.Chunk.Text,
			Metadata: map[string]string{
				metaPage:    strconv.Itoa(e.Chunk.SourcePageIndex),
				metaOrdinal: id,
			},
			Embedding: nonZero(vec),
		}
		idx.chunks[i] = e.Chunk
		idx.byID[id] = e.Chunk
	}
	if err := collection.AddDocuments(ctx, docs, concurrency); err != nil {
		return nil, &models.IndexBuildError{Reason: models.ReasonEmbeddingFailed, Err: fmt.Errorf("add documents: %w", err)}
	}
	return idx, nil
}

// nonZero returns v, or a tiny uniform vector when v is all zeros. chromem normalizes
// stored vectors and would otherwise produce NaN scores.
func nonZero(v []float32) []float32 {
	if L2Norm(v) > 0 {
		return v
	}
	for i := range v {
		v[i] = 1e-6
	}
	return v
}

// Type returns the index type identifier.
func (c *ChromemIndex) Type() string {
	return string(IndexTypeChromem)
}

// Search queries every document and re-ranks locally so that equal scores are ordered by
// ordinal. Collections hold one document's chunks, so a full scan is cheap.
func (c *ChromemIndex) Search(ctx context.Context, query []float32, k int) ([]models.ScoredChunk, error) {
	if err := validateSearch(c.dimensions, query, k); err != nil {
		return nil, err
	}
	q := make([]float32, len(query))
	copy(q, query)
	results, err := c.collection.QueryEmbedding(ctx, nonZero(q), c.collection.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}
	hits := make([]models.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk, ok := c.byID[r.ID]
		if !ok {
			continue
		}
		score := float64(r.Similarity)
		if math.IsNaN(score) {
			score = 0
		}
		hits = append(hits, models.ScoredChunk{Chunk: chunk, Score: score})
	}
	return rank(hits, k), nil
}

// Chunks returns the indexed chunks in ordinal order.
func (c *ChromemIndex) Chunks() []models.Chunk {
	out := make([]models.Chunk, len(c.chunks))
	copy(out, c.chunks)
	return out
}

// Size returns the number of documents in the collection.
func (c *ChromemIndex) Size() int {
	return c.collection.Count()
}

// Dimensions returns the vector dimension.
func (c *ChromemIndex) Dimensions() int {
	return c.dimensions
}

// Close drops the collection.
func (c *ChromemIndex) Close() error {
	return c.db.DeleteCollection(c.collection.Name)
}
