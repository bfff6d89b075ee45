package service

import (
	"context"
	"log/slog"
	"time"

	"home-valuation/internal/config"
	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/logger"
)

// maxBackoff caps a single wait between attempts
const maxBackoff = 2 * time.Minute

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy retries rate-limited oracle calls with exponential backoff
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
	Sleep          SleepFunc
}

// DefaultRetryPolicy returns 3 attempts starting at 1s and doubling
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		Multiplier:     2,
	}
}

// RetryPolicyFromConfig builds the policy from configuration
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoff > 0 {
		p.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.Multiplier >= 1 {
		p.Multiplier = cfg.Multiplier
	}
	return p
}

// Backoff returns the wait after the given failed attempt (1-based), capped at maxBackoff
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := float64(p.InitialBackoff)
	for i := 1; i < attempt; i++ {
		d *= p.Multiplier
		if d >= float64(maxBackoff) {
			return maxBackoff
		}
	}
	if d >= float64(maxBackoff) {
		return maxBackoff
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// attempts run out. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	log := logger.FromContext(ctx)
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info("oracle call succeeded after retry", slog.Int("attempt", attempt))
			}
			return body, nil
		}
		lastErr = err

		if !apperrors.IsRetryable(err) {
			return nil, err
		}
		if attempt == maxAttempts {
			break
		}

		wait := p.Backoff(attempt)
		log.Warn("oracle rate limited, backing off",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("backoff", wait),
		)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	log.Error("oracle retries exhausted", slog.Int("attempts", maxAttempts), slog.Any("error", lastErr))
	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
