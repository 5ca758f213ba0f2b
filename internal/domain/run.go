package domain

import "time"

// Phase enumerates pipeline milestones for one run.
type Phase string

const (
	PhaseInit      Phase = "init"
	PhaseFetching  Phase = "fetching"
	PhaseFiltering Phase = "filtering"
	PhaseDeduping  Phase = "deduping"
	PhaseScoring   Phase = "scoring"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
)

// RunSummary is the outcome of one pipeline run: the ranked articles plus
// per-phase counters. A completed run always carries a summary, even when
// every article was dropped; the counters make partial failure visible.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Phase      Phase

	Fetched       int // stubs collected across all sources
	Matched       int // stubs surviving keyword filtering
	Deduped       int // distinct fingerprints
	Suppressed    int // dropped by the run-to-run history store
	Scored        int
	Unscored      int // budget-skipped plus scoring failures
	FailedSources int
	EmptySources  int

	Articles []ScoredArticle // ranked: importance desc, recency desc, fingerprint asc
}
