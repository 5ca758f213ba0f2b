package scraper

import (
	"context"
	"fmt"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/domain"
)

// Selectors lists CSS selector fallbacks for the HTML strategy, tried in
// order until one yields content.
type Selectors struct {
	Article []string
	Title   []string
	Summary []string
	Time    []string
}

// Site describes one configured listing page together with the strategy
// that knows how to scrape it.
type Site struct {
	Name       string
	URL        string
	Strategy   string
	Selectors  Selectors
	TimeLayout string
	Options    map[string]string
}

// Strategy is a single site-markup scraping implementation (HTML
// selectors, RSS, etc.), selected per site by configuration.
type Strategy interface {
	Name() string
	Scrape(ctx context.Context, site Site) ([]domain.Stub, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(s Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[s.Name()] = s
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if s, ok := r.strategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scrape strategy %s is not registered", name)
}
