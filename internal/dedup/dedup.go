// Package dedup collapses articles sharing a fingerprint across sources.
package dedup

import "github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"

// Collapse removes duplicate fingerprints, keeping the most complete
// record. Tie-break: a non-empty snippet wins over an empty one; otherwise
// the earliest-seen record wins (sources run in configured order, so
// iteration order is deterministic). Output keeps the first-seen order of
// distinct fingerprints; final ranking happens after scoring.
func Collapse(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	index := make(map[string]int, len(articles))

	for _, art := range articles {
		pos, ok := index[art.Fingerprint]
		if !ok {
			index[art.Fingerprint] = len(out)
			out = append(out, art)
			continue
		}

		kept := out[pos]
		if kept.Snippet == "" && art.Snippet != "" {
			// Later record is more complete; it replaces the kept one but
			// inherits its first-seen position.
			if art.PublishedAt.IsZero() {
				art.PublishedAt = kept.PublishedAt
			}
			out[pos] = art
			continue
		}

		// Backfill a missing timestamp from the loser.
		if kept.PublishedAt.IsZero() && !art.PublishedAt.IsZero() {
			kept.PublishedAt = art.PublishedAt
			out[pos] = kept
		}
	}

	return out
}
