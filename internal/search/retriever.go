// Package search provides query-time retrieval over a document's vector index.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/vector"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// Retriever embeds a question and returns the most similar chunks of an index.
type Retriever struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewRetriever creates a retriever using embedder for queries. logger may be nil.
func NewRetriever(embedder embedding.Embedder, logger *zap.Logger) *Retriever {
	return &Retriever{embedder: embedder, logger: utils.LoggerOrNop(logger)}
}

// RetrieveScored embeds query and searches idx for the top k chunks, keeping scores.
func (r *Retriever) RetrieveScored(ctx context.Context, query string, idx vector.Index, k int) ([]models.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.InvalidArgument("question", "must not be empty")
	}
	start := time.Now()
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := idx.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	r.logger.Debug("retrieved context",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Duration("duration", time.Since(start)))
	return hits, nil
}

// Retrieve is RetrieveScored without scores, returning chunks in search order.
func (r *Retriever) Retrieve(ctx context.Context, query string, idx vector.Index, k int) ([]models.Chunk, error) {
	hits, err := r.RetrieveScored(ctx, query, idx, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]models.Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	return chunks, nil
}
