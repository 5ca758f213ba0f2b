package scraper

import (
	"context"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

// SiteAdapter binds one configured site to its resolved strategy so the
// orchestrator can drive every source uniformly.
type SiteAdapter struct {
	site     Site
	strategy Strategy
}

var _ ports.SourceAdapter = (*SiteAdapter)(nil)

// NewSiteAdapter pairs a site with a strategy resolved from the registry.
func NewSiteAdapter(site Site, strategy Strategy) *SiteAdapter {
	return &SiteAdapter{site: site, strategy: strategy}
}

// ID returns the configured site name.
func (a *SiteAdapter) ID() string { return a.site.Name }

// Fetch runs the strategy against the site. Stubs without a source are
// stamped with the site name.
func (a *SiteAdapter) Fetch(ctx context.Context) ([]domain.Stub, error) {
	stubs, err := a.strategy.Scrape(ctx, a.site)
	if err != nil {
		return nil, &domain.FetchError{Source: a.site.Name, Err: err}
	}
	for i := range stubs {
		if stubs[i].SourceID == "" {
			stubs[i].SourceID = a.site.Name
		}
	}
	return stubs, nil
}
