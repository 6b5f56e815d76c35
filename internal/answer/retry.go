package answer

import (
	"context"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
	"go.uber.org/zap"
)

// RetryingSynthesizer retries retryable *models.SynthesisError failures with exponential
// backoff. Non-retryable errors are returned on the first attempt.
type RetryingSynthesizer struct {
	inner  Synthesizer
	policy utils.RetryPolicy
	logger *zap.Logger
}

// NewRetryingSynthesizer wraps inner. logger may be nil.
func NewRetryingSynthesizer(inner Synthesizer, policy utils.RetryPolicy, logger *zap.Logger) *RetryingSynthesizer {
	return &RetryingSynthesizer{inner: inner, policy: policy, logger: utils.LoggerOrNop(logger)}
}

// Answer calls the inner synthesizer with retries.
func (s *RetryingSynthesizer) Answer(ctx context.Context, question string, contextChunks []models.Chunk, history []models.ChatTurn) (*models.AnswerResult, error) {
	var out *models.AnswerResult
	onRetry := func(attempt int, err error) {
		s.logger.Warn("answer synthesis failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	err := utils.Retry(ctx, s.policy, models.IsRetryable, onRetry, func(ctx context.Context) error {
		res, err := s.inner.Answer(ctx, question, contextChunks, history)
		out = res
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
