package embedding

import (
	"context"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// RetryingEmbedder retries retryable *models.ProviderError failures with exponential backoff.
// Non-retryable errors are returned on the first attempt.
type RetryingEmbedder struct {
	inner  Embedder
	policy utils.RetryPolicy
	logger *zap.Logger
}

// NewRetryingEmbedder wraps inner. logger may be nil.
func NewRetryingEmbedder(inner Embedder, policy utils.RetryPolicy, logger *zap.Logger) *RetryingEmbedder {
	return &RetryingEmbedder{inner: inner, policy: policy, logger: utils.LoggerOrNop(logger)}
}

func (e *RetryingEmbedder) onRetry(op string) func(int, error) {
	return func(attempt int, err error) {
		e.logger.Warn("embedding call failed, retrying",
			zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
	}
}

// Embed calls the inner Embed with retries.
func (e *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := utils.Retry(ctx, e.policy, models.IsRetryable, e.onRetry("embed"), func(ctx context.Context) error {
		v, err := e.inner.Embed(ctx, text)
		out = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EmbedBatch calls the inner EmbedBatch with retries.
func (e *RetryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := utils.Retry(ctx, e.policy, models.IsRetryable, e.onRetry("embed_batch"), func(ctx context.Context) error {
		v, err := e.inner.EmbedBatch(ctx, texts)
		out = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dimensions returns the inner embedder's dimension.
func (e *RetryingEmbedder) Dimensions() int { return e.inner.Dimensions() }

// Close closes the inner embedder.
func (e *RetryingEmbedder) Close() error { return e.inner.Close() }
