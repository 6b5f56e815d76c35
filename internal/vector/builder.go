package vector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder embeds chunks and builds an Index. It is safe for concurrent use.
type Builder struct {
	indexType   string
	concurrency int
	batchSize   int
	logger      *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a logger for build progress.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithConcurrency bounds the number of embedding calls in flight during a build.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) { b.concurrency = n }
}

// WithBatchSize sets how many chunks go into one embedding request.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) { b.batchSize = n }
}

// NewBuilder returns a Builder for the given index type ("memory" or "chromem").
func NewBuilder(indexType string, opts ...BuilderOption) (*Builder, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, IndexTypeChromem, "":
	default:
		return nil, models.InvalidArgument("index_type", "unknown index type %q (supported: memory, chromem)", indexType)
	}
	b := &Builder{indexType: indexType, concurrency: 4, batchSize: 16}
	for _, opt := range opts {
		opt(b)
	}
	if b.concurrency <= 0 {
		b.concurrency = 1
	}
	if b.batchSize <= 0 {
		b.batchSize = 1
	}
	b.logger = utils.LoggerOrNop(b.logger)
	return b, nil
}

// Build embeds the chunks in batches, one EmbedBatch call per batch with at most the
// configured number in flight, and stores the results. The first embedding failure
// cancels the remaining batches and no index is returned. Failures are
// *models.IndexBuildError.
func (b *Builder) Build(ctx context.Context, chunks []models.Chunk, embedder embedding.Embedder) (Index, error) {
	if len(chunks) == 0 {
		return nil, &models.IndexBuildError{Reason: models.ReasonNoChunks}
	}
	for _, c := range chunks {
		if utils.IsBlank(c.Text) {
			return nil, &models.IndexBuildError{
				Reason: models.ReasonEmptyChunk,
				Err:    fmt.Errorf("chunk %d on page %d has no text", c.Ordinal, c.SourcePageIndex),
			}
		}
	}
	start := time.Now()
	entries := make([]Entry, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	batches := 0
	for lo := 0; lo < len(chunks); lo += b.batchSize {
		hi := min(lo+b.batchSize, len(chunks))
		batches++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts := make([]string, hi-lo)
			for i, c := range chunks[lo:hi] {
				texts[i] = c.Text
			}
			vecs, err := embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", chunks[lo].Ordinal, chunks[hi-1].Ordinal, err)
			}
			if len(vecs) != len(texts) {
				return &models.ProviderError{
					Reason: models.ReasonBadResponse,
					Err:    fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts", chunks[lo].Ordinal, chunks[hi-1].Ordinal, len(vecs), len(texts)),
				}
			}
			for i, c := range chunks[lo:hi] {
				entries[lo+i] = Entry{Chunk: c, Vector: vecs[i]}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, &models.IndexBuildError{Reason: models.ReasonCanceled, Err: err}
		}
		return nil, &models.IndexBuildError{Reason: models.ReasonEmbeddingFailed, Err: err}
	}
	dims := len(entries[0].Vector)
	for _, e := range entries {
		if len(e.Vector) != dims {
			return nil, &models.IndexBuildError{
				Reason: models.ReasonDimensionMismatch,
				Err:    fmt.Errorf("chunk %d: got %d dimensions, expected %d", e.Chunk.Ordinal, len(e.Vector), dims),
			}
		}
	}
	idx, err := NewVectorIndex(ctx, b.indexType, entries, b.concurrency)
	if err != nil {
		var be *models.IndexBuildError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, &models.IndexBuildError{Reason: models.ReasonEmbeddingFailed, Err: err}
	}
	b.logger.Debug("vector index built",
		zap.String("type", idx.Type()),
		zap.Int("entries", idx.Size()),
		zap.Int("batches", batches),
		zap.Int("dimensions", dims),
		zap.Duration("duration", time.Since(start)))
	return idx, nil
}
