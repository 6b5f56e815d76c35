package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds retries of a failing call.
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first; <= 1 disables retries
	BaseDelay   time.Duration // delay before the second attempt, doubled each time
	MaxDelay    time.Duration
}

// DefaultRetryPolicy is 3 attempts with 200ms exponential backoff capped at 5s.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}

// BackOff returns the exponential schedule for p. Jitter is off so delays are
// predictable in tests and logs.
func (p RetryPolicy) BackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = DefaultRetryPolicy.BaseDelay
	}
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = DefaultRetryPolicy.MaxDelay
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// Retry calls fn until it succeeds, returns an error for which retryable is false,
// MaxAttempts is reached, or ctx is done. onRetry, when non-nil, is called before each wait.
// The last error from fn is returned.
func Retry(ctx context.Context, p RetryPolicy, retryable func(error) bool, onRetry func(attempt int, err error), fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	retries := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		lastErr = fn(ctx)
		if lastErr != nil && !retryable(lastErr) {
			return struct{}{}, backoff.Permanent(lastErr)
		}
		return struct{}{}, lastErr
	},
		backoff.WithBackOff(p.BackOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(error, time.Duration) {
			retries++
			if onRetry != nil {
				onRetry(retries, lastErr)
			}
		}),
	)
	if err == nil {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return err
}
