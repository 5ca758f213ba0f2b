package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/scraper"
)

// Fallback selectors for sites without configured rules.
var (
	defaultArticleSelectors = []string{"article", "div.article"}
	defaultTitleSelectors   = []string{"h1", "h2", ".title", "a.title"}
	defaultSummarySelectors = []string{"p", ".summary", "div.excerpt"}
)

// HTMLStrategy scrapes listing pages with configured CSS selector chains.
// Each selector list is tried in order, which keeps site-markup churn a
// config change instead of a code change.
type HTMLStrategy struct {
	client *http.Client
	agents []string
	logger *slog.Logger
}

var _ scraper.Strategy = (*HTMLStrategy)(nil)

// NewHTMLStrategy wires an HTTP client and an optional User-Agent pool to
// rotate through.
func NewHTMLStrategy(client *http.Client, agents []string, logger *slog.Logger) *HTMLStrategy {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLStrategy{client: client, agents: agents, logger: logger}
}

// Name identifies the strategy inside the registry.
func (h *HTMLStrategy) Name() string { return "html" }

// Scrape fetches the site listing and extracts one stub per article block.
func (h *HTMLStrategy) Scrape(ctx context.Context, site scraper.Site) ([]domain.Stub, error) {
	doc, base, err := h.fetchDocument(ctx, site.URL)
	if err != nil {
		return nil, err
	}
	return h.extractStubs(doc, base, site), nil
}

func (h *HTMLStrategy) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("site returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, resp.Request.URL, nil
}

func (h *HTMLStrategy) extractStubs(doc *goquery.Document, base *url.URL, site scraper.Site) []domain.Stub {
	articleSels := orDefault(site.Selectors.Article, defaultArticleSelectors)
	titleSels := orDefault(site.Selectors.Title, defaultTitleSelectors)
	summarySels := orDefault(site.Selectors.Summary, defaultSummarySelectors)

	var stubs []domain.Stub
	seen := map[string]struct{}{}

	for _, articleSel := range articleSels {
		doc.Find(articleSel).Each(func(_ int, block *goquery.Selection) {
			titleElem := firstMatch(block, titleSels)
			if titleElem == nil {
				return
			}

			title := strings.TrimSpace(titleElem.Text())
			if title == "" {
				return
			}

			link := hrefOf(titleElem, base)
			if link == "" {
				link = site.URL
			}

			key := strings.ToLower(title) + "|" + link
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}

			var snippet string
			if summaryElem := firstMatch(block, summarySels); summaryElem != nil {
				snippet = strings.TrimSpace(summaryElem.Text())
			}

			stubs = append(stubs, domain.Stub{
				SourceID:    site.Name,
				Title:       title,
				URL:         link,
				Snippet:     snippet,
				PublishedAt: h.parseTime(block, site),
			})
		})
	}

	return stubs
}

func (h *HTMLStrategy) parseTime(block *goquery.Selection, site scraper.Site) time.Time {
	elem := firstMatch(block, site.Selectors.Time)
	if elem == nil {
		return time.Time{}
	}

	text := strings.TrimSpace(elem.Text())
	if attr, ok := elem.Attr("datetime"); ok {
		text = strings.TrimSpace(attr)
	}
	if text == "" {
		return time.Time{}
	}

	layouts := []string{time.RFC3339, "2006-01-02", "2 Jan 2006", "Jan 2, 2006"}
	if site.TimeLayout != "" {
		layouts = append([]string{site.TimeLayout}, layouts...)
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed.UTC()
		}
	}

	if h.logger != nil {
		h.logger.Debug("unparseable article date", "site", site.Name, "text", text)
	}
	return time.Time{}
}

func (h *HTMLStrategy) userAgent() string {
	if len(h.agents) == 0 {
		return "amex-ai-weekly-digest/1.0"
	}
	return h.agents[rand.Intn(len(h.agents))]
}

// firstMatch walks the selector chain and returns the first element found.
func firstMatch(block *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := block.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

func hrefOf(elem *goquery.Selection, base *url.URL) string {
	href, ok := elem.Attr("href")
	if !ok {
		// Title element may wrap the anchor instead of being one.
		href, ok = elem.Find("a").First().Attr("href")
		if !ok {
			return ""
		}
	}

	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	return parsed.String()
}

func orDefault(selectors, fallback []string) []string {
	if len(selectors) > 0 {
		return selectors
	}
	return fallback
}
