package llm

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 8 * time.Second
)

// Retrier wraps an oracle with bounded retry for transient failures:
// exponential backoff with jitter so concurrent workers don't hammer the
// API in lockstep. Permanent errors pass straight through.
type Retrier struct {
	oracle      ports.ScoringOracle
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      *slog.Logger

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ ports.ScoringOracle = (*Retrier)(nil)

// NewRetrier bounds the wrapped oracle's attempts; zero values pick the
// defaults (3 attempts, 500ms base, 8s cap).
func NewRetrier(oracle ports.ScoringOracle, maxAttempts int, baseDelay, maxDelay time.Duration, logger *slog.Logger) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	return &Retrier{
		oracle:      oracle,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Score attempts the wrapped call up to maxAttempts times.
func (r *Retrier) Score(ctx context.Context, article domain.Article) (domain.Verdict, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		verdict, err := r.oracle.Score(ctx, article)
		if err == nil {
			return verdict, nil
		}
		lastErr = err

		if !domain.IsTransientScoring(err) {
			return domain.Verdict{}, err
		}
		if attempt == r.maxAttempts {
			break
		}

		delay := r.backoff(attempt)
		if r.logger != nil {
			r.logger.Warn("transient scoring failure, retrying",
				"fingerprint", article.Fingerprint, "attempt", attempt, "delay", delay, "error", err)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return domain.Verdict{}, &domain.ScoringError{Transient: true, Err: err}
		}
	}
	return domain.Verdict{}, lastErr
}

// backoff returns base*2^(attempt-1) capped at maxDelay, plus up to 50%
// jitter.
func (r *Retrier) backoff(attempt int) time.Duration {
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
