// Package filter retains articles matching configured topic keywords.
package filter

import (
	"strings"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

// Matches reports whether the article mentions any of the keywords as a
// case-insensitive substring of title or snippet, and returns the keywords
// that hit. An empty keyword set matches everything: running without
// keywords means "digest it all", not "digest nothing".
func Matches(article domain.Article, keywords []string) ([]string, bool) {
	if len(keywords) == 0 {
		return nil, true
	}

	haystack := strings.ToLower(article.Title + " " + article.Snippet)

	var hits []string
	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			hits = append(hits, kw)
		}
	}

	return hits, len(hits) > 0
}
