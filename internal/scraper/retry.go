package scraper

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

const (
	defaultFetchAttempts  = 3
	defaultFetchBaseDelay = 2 * time.Second
	defaultFetchMaxDelay  = 30 * time.Second
)

// RetryAdapter wraps a source adapter with bounded retry: exponential
// backoff with jitter between attempts. Attempts stop as soon as the
// context is done, keeping the wrapper inside the per-adapter fetch
// timeout.
type RetryAdapter struct {
	next        ports.SourceAdapter
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      *slog.Logger

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ ports.SourceAdapter = (*RetryAdapter)(nil)

// NewRetryAdapter bounds the wrapped adapter's attempts; zero values pick
// the defaults (3 attempts, 2s base, 30s cap).
func NewRetryAdapter(next ports.SourceAdapter, maxAttempts int, baseDelay, maxDelay time.Duration, logger *slog.Logger) *RetryAdapter {
	if maxAttempts <= 0 {
		maxAttempts = defaultFetchAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultFetchBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultFetchMaxDelay
	}
	return &RetryAdapter{
		next:        next,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// ID returns the wrapped adapter's identifier.
func (r *RetryAdapter) ID() string { return r.next.ID() }

// Fetch attempts the wrapped call up to maxAttempts times.
func (r *RetryAdapter) Fetch(ctx context.Context) ([]domain.Stub, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		stubs, err := r.next.Fetch(ctx)
		if err == nil {
			return stubs, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.maxAttempts {
			break
		}

		delay := r.backoff(attempt)
		if r.logger != nil {
			r.logger.Warn("fetch failed, retrying",
				"source", r.next.ID(), "attempt", attempt, "delay", delay, "error", err)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return nil, &domain.FetchError{Source: r.next.ID(), Err: err}
		}
	}
	return nil, lastErr
}

// backoff returns base*2^(attempt-1) capped at maxDelay, plus up to 50%
// jitter.
func (r *RetryAdapter) backoff(attempt int) time.Duration {
	delay := r.baseDelay << (attempt - 1)
	if delay > r.maxDelay || delay <= 0 {
		delay = r.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	return delay + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
