package cascade

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/upb/llm-cascade/providers"
	"go.uber.org/zap"
)

// RetryConfig holds the tuning parameters for per-provider retries. Zero
// values are replaced with the defaults below.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first call.
	// A value of 3 means 1 original call plus up to 2 retries.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry. Successive retries
	// double it (backoff = InitialBackoff * 2^attempt).
	// Default: 2s.
	InitialBackoff time.Duration

	// MaxJitter bounds the random offset added to each backoff, drawn
	// uniformly from [0, MaxJitter). Jitter avoids synchronized retry storms.
	// Default: 1s.
	MaxJitter time.Duration
}

// DefaultRetryConfig returns the standard retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxJitter:      time.Second,
	}
}

func applyRetryDefaults(config *RetryConfig) {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = 2 * time.Second
	}
	if config.MaxJitter == 0 {
		config.MaxJitter = time.Second
	}
}

// backoffDuration returns the delay before the retry following the given
// attempt (0-indexed): InitialBackoff * 2^attempt + jitter.
func backoffDuration(config RetryConfig, attempt int) time.Duration {
	backoff := config.InitialBackoff << attempt
	jitter := time.Duration(rand.Int64N(int64(config.MaxJitter))) //nolint:gosec // non-cryptographic jitter
	return backoff + jitter
}

// callFunc is one provider attempt. It either returns the normalized text or
// an error classified by providers.IsRetryable.
type callFunc func(ctx context.Context) (string, error)

// executeWithRetry runs fn up to config.MaxAttempts times, sleeping with
// exponential backoff and jitter between attempts. Only retryable errors
// (HTTP 429 and 5xx) trigger another attempt; anything else fails fast.
// The backoff sleep respects context cancellation.
func executeWithRetry(ctx context.Context, config RetryConfig, logger *zap.Logger, provider string, fn callFunc) (string, error) {
	applyRetryDefaults(&config)

	var lastErr error
	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := backoffDuration(config, attempt-1)
			logger.Debug("backing off before retry",
				zap.String("provider", provider),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}

		content, err := fn(ctx)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !providers.IsRetryable(err) {
			logger.Warn("non-retryable provider error",
				zap.String("provider", provider),
				zap.Error(err))
			return "", err
		}

		logger.Warn("retryable provider error",
			zap.String("provider", provider),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", config.MaxAttempts),
			zap.Error(err))
	}

	return "", lastErr
}
