package normalize

import (
	"testing"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

func TestFingerprintIgnoresCaseAndWhitespace(t *testing.T) {
	t.Parallel()

	a := Fingerprint("The Fed Raises Rates", "https://www.example.com/fed")
	b := Fingerprint("  the fed   raises\trates ", "https://example.com/fed?utm=x")

	if a != b {
		t.Fatalf("fingerprints differ: %s vs %s", a, b)
	}
}

func TestFingerprintDistinguishesHosts(t *testing.T) {
	t.Parallel()

	a := Fingerprint("Rates on hold", "https://cnbc.com/a")
	b := Fingerprint("Rates on hold", "https://pymnts.com/a")

	if a == b {
		t.Fatalf("same fingerprint for different hosts: %s", a)
	}
}

func TestFingerprintFallsBackToURL(t *testing.T) {
	t.Parallel()

	a := Fingerprint("", "https://example.com/untitled-1")
	b := Fingerprint("", "https://example.com/untitled-2")
	c := Fingerprint("", " https://example.com/untitled-1 ")

	if a == b {
		t.Fatalf("empty-title fingerprints should follow the URL")
	}
	if a != c {
		t.Fatalf("URL whitespace should not change the fingerprint")
	}
}

func TestArticlePreservesDisplayCasing(t *testing.T) {
	t.Parallel()

	published := time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC)
	stub := domain.Stub{
		SourceID:    "finextra",
		Title:       "  BNPL Firms Under Scrutiny  ",
		URL:         " https://finextra.com/bnpl ",
		Snippet:     " Regulators circle. ",
		PublishedAt: published,
	}

	art := Article(stub)

	if art.Title != "BNPL Firms Under Scrutiny" {
		t.Fatalf("title not trimmed, got %q", art.Title)
	}
	if art.URL != "https://finextra.com/bnpl" {
		t.Fatalf("url not trimmed, got %q", art.URL)
	}
	if art.Snippet != "Regulators circle." {
		t.Fatalf("snippet not trimmed, got %q", art.Snippet)
	}
	if !art.PublishedAt.Equal(published) {
		t.Fatalf("published_at changed: %v", art.PublishedAt)
	}
	if art.Fingerprint == "" {
		t.Fatal("fingerprint is empty")
	}
	if art.Fingerprint != Fingerprint("bnpl firms under scrutiny", art.URL) {
		t.Fatal("fingerprint not case-insensitive")
	}
}

func TestArticleIsDeterministic(t *testing.T) {
	t.Parallel()

	stub := domain.Stub{Title: "Same", URL: "https://example.com/same"}
	if Article(stub).Fingerprint != Article(stub).Fingerprint {
		t.Fatal("normalize is not a pure function")
	}
}
