package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/scraper"
)

// RSSStrategy reads sites that expose a feed instead of a scrapeable
// listing page.
type RSSStrategy struct {
	parser *gofeed.Parser
}

var _ scraper.Strategy = (*RSSStrategy)(nil)

// NewRSSStrategy builds a feed parser on top of the shared HTTP client.
func NewRSSStrategy(client *http.Client) *RSSStrategy {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	parser.UserAgent = "amex-ai-weekly-digest/1.0"
	return &RSSStrategy{parser: parser}
}

// Name identifies the strategy inside the registry.
func (r *RSSStrategy) Name() string { return "rss" }

// Scrape parses the feed URL and maps items onto stubs.
func (r *RSSStrategy) Scrape(ctx context.Context, site scraper.Site) ([]domain.Stub, error) {
	feed, err := r.parser.ParseURLWithContext(site.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	stubs := make([]domain.Stub, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed.UTC()
		}

		stubs = append(stubs, domain.Stub{
			SourceID:    site.Name,
			Title:       item.Title,
			URL:         item.Link,
			Snippet:     item.Description,
			PublishedAt: published,
		})
	}

	return stubs, nil
}
