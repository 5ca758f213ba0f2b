package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyResult marks a source that answered with zero items. Informational
// rather than a failure.
var ErrEmptyResult = errors.New("source returned no items")

// ErrBudgetExhausted is returned when the run-scoped oracle call budget is
// spent; remaining articles are counted as unscored.
var ErrBudgetExhausted = errors.New("scoring call budget exhausted")

// FetchError wraps a per-source fetch or parse failure. Never fatal to the
// run; the orchestrator logs it and counts the source as failed.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ScoringError wraps an oracle call failure. Transient errors (timeouts,
// rate limiting, 5xx) are retried; permanent ones (malformed verdict) are
// not.
type ScoringError struct {
	Transient bool
	Err       error
}

func (e *ScoringError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("scoring (%s): %v", kind, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// IsTransientScoring reports whether err is a retryable oracle failure.
func IsTransientScoring(err error) bool {
	var serr *ScoringError
	return errors.As(err, &serr) && serr.Transient
}

// ConfigurationError aborts a run before any fetching happens.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}
