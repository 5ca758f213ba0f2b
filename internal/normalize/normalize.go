// Package normalize canonicalizes raw stubs and derives the dedup
// fingerprint. Everything here is pure: same stub in, same article out.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

// Article canonicalizes a stub: trimmed title, cleaned URL, and a
// fingerprint that is case- and whitespace-insensitive. Original title
// casing survives for display. A missing timestamp stays zero and sorts
// last in the final ranking.
func Article(stub domain.Stub) domain.Article {
	title := strings.TrimSpace(stub.Title)
	rawURL := strings.TrimSpace(stub.URL)

	return domain.Article{
		Fingerprint: Fingerprint(title, rawURL),
		SourceID:    stub.SourceID,
		Title:       title,
		URL:         rawURL,
		Snippet:     strings.TrimSpace(stub.Snippet),
		PublishedAt: stub.PublishedAt,
	}
}

// Fingerprint derives the dedup key: collapsed lowercase title plus URL
// host, or the URL alone when the title is empty. Two stubs describing the
// same underlying article always share a fingerprint.
func Fingerprint(title, rawURL string) string {
	key := collapse(strings.ToLower(title))
	host := hostOf(rawURL)

	if key == "" {
		key = strings.ToLower(strings.TrimSpace(rawURL))
		host = ""
	}

	sum := sha1.Sum([]byte(key + "|" + host))
	return hex.EncodeToString(sum[:])
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// collapse squeezes any run of whitespace into a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
