package domain

import "time"

// Sentiment is the three-way market tone verdict returned by the oracle.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment maps a raw oracle label onto the enum.
func ParseSentiment(raw string) (Sentiment, bool) {
	switch Sentiment(raw) {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return Sentiment(raw), true
	}
	return "", false
}

// ImportanceMin and ImportanceMax bound the oracle's importance scale.
const (
	ImportanceMin = 0
	ImportanceMax = 10
)

// Stub is a raw article reference as scraped from one source, prior to
// normalization. Immutable once produced by an adapter.
type Stub struct {
	SourceID    string
	Title       string
	URL         string
	Snippet     string
	PublishedAt time.Time // zero when the source exposes no date
}

// Article is a normalized stub carrying a dedup fingerprint. The fingerprint
// is a pure function of title and URL; original title casing is preserved
// for display.
type Article struct {
	Fingerprint string
	SourceID    string
	Title       string
	URL         string
	Snippet     string
	PublishedAt time.Time
	Keywords    []string // topic keywords that matched during filtering
}

// Verdict is the structured oracle response for one article.
type Verdict struct {
	Sentiment  Sentiment
	Importance int // ImportanceMin..ImportanceMax
	Summary    string
}

// ScoredArticle is an article that passed scoring. Articles that exhaust
// retries or the call budget never become ScoredArticles.
type ScoredArticle struct {
	Article
	Verdict
}
