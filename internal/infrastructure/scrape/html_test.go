package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/scraper"
)

const listingHTML = `
<html><body>
  <div class="news-item">
    <h3><a class="news-title" href="/news/fed-rates">Fed raises rates again</a></h3>
    <div class="news-summary">The central bank moved by 25bps.</div>
    <time datetime="2024-01-02T08:00:00Z">Jan 2</time>
  </div>
  <div class="news-item">
    <h3><a class="news-title" href="https://other.example.com/bnpl">BNPL under scrutiny</a></h3>
    <div class="news-summary">Regulators circle.</div>
  </div>
  <div class="news-item">
    <h3><a class="news-title" href="/news/fed-rates">Fed raises rates again</a></h3>
    <div class="news-summary">Duplicate row.</div>
  </div>
  <div class="news-item">
    <div class="news-summary">No headline here.</div>
  </div>
</body></html>`

func TestHTMLStrategyScrape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	strategy := NewHTMLStrategy(server.Client(), nil, nil)
	site := scraper.Site{
		Name: "finextra",
		URL:  server.URL + "/latest",
		Selectors: scraper.Selectors{
			Article: []string{"div.news-item"},
			Title:   []string{"h3 a.news-title"},
			Summary: []string{"div.news-summary"},
			Time:    []string{"time"},
		},
	}

	stubs, err := strategy.Scrape(context.Background(), site)
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}

	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(stubs))
	}

	first := stubs[0]
	if first.Title != "Fed raises rates again" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.URL != server.URL+"/news/fed-rates" {
		t.Fatalf("relative link not resolved: %q", first.URL)
	}
	if first.Snippet != "The central bank moved by 25bps." {
		t.Fatalf("unexpected snippet: %q", first.Snippet)
	}
	want := time.Date(2024, time.January, 2, 8, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published_at: %v", first.PublishedAt)
	}
	if first.SourceID != "finextra" {
		t.Fatalf("unexpected source: %q", first.SourceID)
	}

	second := stubs[1]
	if second.URL != "https://other.example.com/bnpl" {
		t.Fatalf("absolute link rewritten: %q", second.URL)
	}
	if !second.PublishedAt.IsZero() {
		t.Fatalf("missing date should stay zero, got %v", second.PublishedAt)
	}
}

func TestHTMLStrategyFallbackSelectors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<article><h2><a href="/a">Plain markup</a></h2><p>Body.</p></article>`))
	}))
	defer server.Close()

	strategy := NewHTMLStrategy(server.Client(), nil, nil)
	stubs, err := strategy.Scrape(context.Background(), scraper.Site{Name: "plain", URL: server.URL})
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(stubs) != 1 || stubs[0].Title != "Plain markup" {
		t.Fatalf("fallback selectors failed: %+v", stubs)
	}
}

func TestHTMLStrategyNon200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	strategy := NewHTMLStrategy(server.Client(), nil, nil)
	if _, err := strategy.Scrape(context.Background(), scraper.Site{Name: "blocked", URL: server.URL}); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}
