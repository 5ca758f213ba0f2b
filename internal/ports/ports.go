package ports

import (
	"context"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

// SourceAdapter fetches one configured site's listing into raw stubs.
// Implementations never retain state across invocations.
type SourceAdapter interface {
	ID() string
	Fetch(ctx context.Context) ([]domain.Stub, error)
}

// ScoringOracle rates one article's sentiment and importance via an
// external AI service.
type ScoringOracle interface {
	Score(ctx context.Context, article domain.Article) (domain.Verdict, error)
}

// ReportRenderer turns a finished run into a deliverable document. The
// pipeline has no opinion on the format.
type ReportRenderer interface {
	Render(summary domain.RunSummary) ([]byte, error)
}

// NotificationSink delivers the rendered report. Delivery failure is logged
// only; it never affects pipeline state.
type NotificationSink interface {
	Send(ctx context.Context, subject string, document []byte) error
}

// HistoryStore is the optional run-to-run suppression extension: articles
// already reported on a previous run are skipped before scoring.
type HistoryStore interface {
	Seen(ctx context.Context, fingerprints []string) (map[string]bool, error)
	MarkSeen(ctx context.Context, fingerprints []string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
