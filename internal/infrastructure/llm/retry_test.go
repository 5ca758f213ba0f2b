package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

type stubOracle struct {
	calls    int
	failWith func(call int) error
	verdict  domain.Verdict
}

func (s *stubOracle) Score(ctx context.Context, article domain.Article) (domain.Verdict, error) {
	s.calls++
	if err := s.failWith(s.calls); err != nil {
		return domain.Verdict{}, err
	}
	return s.verdict, nil
}

func newTestRetrier(oracle *stubOracle, attempts int) *Retrier {
	r := NewRetrier(oracle, attempts, time.Millisecond, time.Millisecond, nil)
	r.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return r
}

func TestRetrierBoundedAttempts(t *testing.T) {
	t.Parallel()

	transient := &domain.ScoringError{Transient: true, Err: errors.New("rate limited")}
	oracle := &stubOracle{failWith: func(int) error { return transient }}

	_, err := newTestRetrier(oracle, 3).Score(context.Background(), domain.Article{Fingerprint: "fp"})
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if oracle.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", oracle.calls)
	}
}

func TestRetrierRecoversAfterTransient(t *testing.T) {
	t.Parallel()

	oracle := &stubOracle{
		verdict: domain.Verdict{Sentiment: domain.SentimentPositive, Importance: 7},
		failWith: func(call int) error {
			if call < 3 {
				return &domain.ScoringError{Transient: true, Err: errors.New("503")}
			}
			return nil
		},
	}

	verdict, err := newTestRetrier(oracle, 3).Score(context.Background(), domain.Article{})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if verdict.Importance != 7 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
	if oracle.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", oracle.calls)
	}
}

func TestRetrierDoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()

	permanent := &domain.ScoringError{Err: errors.New("malformed verdict")}
	oracle := &stubOracle{failWith: func(int) error { return permanent }}

	_, err := newTestRetrier(oracle, 5).Score(context.Background(), domain.Article{})
	if err == nil {
		t.Fatal("expected error")
	}
	if oracle.calls != 1 {
		t.Fatalf("permanent error retried: %d calls", oracle.calls)
	}
	if domain.IsTransientScoring(err) {
		t.Fatal("error misclassified as transient")
	}
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	transient := &domain.ScoringError{Transient: true, Err: errors.New("timeout")}
	oracle := &stubOracle{failWith: func(int) error { return transient }}

	r := NewRetrier(oracle, 5, time.Millisecond, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	r.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := r.Score(ctx, domain.Article{})
	if err == nil {
		t.Fatal("expected error")
	}
	if oracle.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", oracle.calls)
	}
}

func TestTransientStatusClassification(t *testing.T) {
	t.Parallel()

	for status, want := range map[int]bool{408: true, 429: true, 500: true, 503: true, 400: false, 401: false, 404: false} {
		if got := transientStatus(status); got != want {
			t.Fatalf("status %d: got %v, want %v", status, got, want)
		}
	}
}
