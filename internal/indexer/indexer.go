package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/extract"
	"github.com/hyperjump/docqa/internal/fileid"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/vector"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// IngestResult summarizes one successful ingestion.
type IngestResult struct {
	DocumentID string        `json:"document_id"`
	Pages      int           `json:"pages"`
	EmptyPages int           `json:"empty_pages"`
	Chunks     int           `json:"chunks"`
	Duration   time.Duration `json:"duration"`
}

// Indexer runs the ingestion pipeline: load PDF pages, chunk them, embed and build an index.
// It holds no per-document state and may be shared by sessions.
type Indexer struct {
	loader   *extract.Loader
	chunker  *Chunker
	embedder embedding.Embedder
	builder  *vector.Builder
	logger   *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for ingestion progress.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(
	loader *extract.Loader,
	chunker *Chunker,
	embedder embedding.Embedder,
	builder *vector.Builder,
	opts ...IndexerOption,
) *Indexer {
	idx := &Indexer{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		builder:  builder,
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = utils.LoggerOrNop(idx.logger)
	return idx
}

// Embedder returns the embedder used for chunks; queries must use the same one.
func (idx *Indexer) Embedder() embedding.Embedder {
	return idx.embedder
}

// Ingest builds a new index from PDF content. Nothing is returned on failure: the error is
// a *models.LoadError, *models.ChunkError or *models.IndexBuildError.
func (idx *Indexer) Ingest(ctx context.Context, content []byte) (vector.Index, *IngestResult, error) {
	start := time.Now()
	pages, err := idx.loader.Load(content)
	if err != nil {
		return nil, nil, err
	}
	res := &IngestResult{DocumentID: fileid.DocumentID(content), Pages: len(pages)}
	normalized := make([]models.PageRecord, len(pages))
	for i, p := range pages {
		normalized[i] = models.PageRecord{PageIndex: p.PageIndex, Text: Preprocess(p.Text)}
		if normalized[i].Text == "" {
			res.EmptyPages++
		}
	}
	chunks, err := idx.chunker.Split(normalized)
	if err != nil {
		return nil, nil, err
	}
	res.Chunks = len(chunks)
	vi, err := idx.builder.Build(ctx, chunks, idx.embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("index %d chunks: %w", len(chunks), err)
	}
	res.Duration = time.Since(start)
	idx.logger.Info("document ingested",
		zap.String("document_id", res.DocumentID),
		zap.Int("pages", res.Pages),
		zap.Int("empty_pages", res.EmptyPages),
		zap.Int("chunks", res.Chunks),
		zap.Int("chunk_size", idx.chunker.MaxSize()),
		zap.Int("chunk_overlap", idx.chunker.Overlap()),
		zap.Duration("duration", res.Duration))
	return vi, res, nil
}
