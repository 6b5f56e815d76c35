package indexer

import (
	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/extract"
	"github.com/hyperjump/docqa/internal/vector"
	"go.uber.org/zap"
)

// New builds an Indexer from the chunking, retrieval and embedding sections of cfg.
func New(cfg *config.Config, embedder embedding.Embedder, logger *zap.Logger) (*Indexer, error) {
	chunker, err := NewChunker(cfg.Chunking.MaxSize, cfg.Chunking.OverlapChars())
	if err != nil {
		return nil, err
	}
	builder, err := vector.NewBuilder(cfg.Retrieval.IndexType,
		vector.WithConcurrency(cfg.Embedding.Concurrency),
		vector.WithBatchSize(cfg.Embedding.BatchSize),
		vector.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return NewIndexer(extract.NewLoader(extract.WithLogger(logger)), chunker, embedder, builder, WithLogger(logger)), nil
}
