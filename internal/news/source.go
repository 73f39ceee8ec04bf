package news

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Searcher is the primary headline search.
type Searcher interface {
	Everything(ctx context.Context, query string, count int) ([]Item, error)
}

// PageScraper is the fallback when the search fails.
type PageScraper interface {
	Scrape(ctx context.Context, count int) ([]Item, error)
}

// Source returns headlines from the search API and falls back to scraping.
type Source struct {
	api     Searcher
	scraper PageScraper
}

// NewSource builds a Source. A nil api goes straight to the scraper.
func NewSource(api Searcher, scraper PageScraper) *Source {
	return &Source{api: api, scraper: scraper}
}

// Fetch returns up to count items for query. An error means both the
// search and the scrape failed; an empty list from the search is final.
func (s *Source) Fetch(ctx context.Context, query string, count int) ([]Item, error) {
	if query == "" {
		query = DefaultQuery
	}
	if count <= 0 {
		count = DefaultCount
	}
	if s.api != nil {
		items, err := s.api.Everything(ctx, query, count)
		if err == nil {
			return items, nil
		}
		hlog.Warnf("newsapi error, scraping instead: %v", err)
	}
	if s.scraper == nil {
		return nil, fmt.Errorf("news unavailable: no scraper configured")
	}
	items, err := s.scraper.Scrape(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("scrape news: %w", err)
	}
	return items, nil
}
