package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoStories is returned when the page parsed but held no stories.
var ErrNoStories = errors.New("no stories on page")

const (
	etSiteRoot  = "https://economictimes.indiatimes.com"
	etNewsPath  = "/markets/stocks/news"
	scrapeStamp = "2006-01-02 15:04:05"
)

// Scraper reads headlines from the Economic Times stock news page.
type Scraper struct {
	opts *options
}

func NewScraper(opts ...Option) *Scraper {
	return &Scraper{opts: newOptions(etSiteRoot, opts)}
}

// Scrape returns up to count stories in page order. Every item gets the
// same scrape timestamp since the page carries none.
func (s *Scraper) Scrape(ctx context.Context, count int) ([]Item, error) {
	if count <= 0 {
		count = DefaultCount
	}
	root := strings.TrimRight(s.opts.baseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+etNewsPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = s.opts.header.Clone()
	req.Header.Set("User-Agent", userAgent)

	res, err := s.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return parseStories(doc, root, s.opts.now().Format(scrapeStamp), count)
}

func parseStories(doc *goquery.Document, root, stamp string, count int) ([]Item, error) {
	items := make([]Item, 0, count)
	doc.Find("div.eachStory").EachWithBreak(func(_ int, story *goquery.Selection) bool {
		title := strings.TrimSpace(story.Find("h3").First().Text())
		href, ok := story.Find("a[href]").First().Attr("href")
		if title == "" || !ok {
			return true
		}
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			href = root + href
		}
		items = append(items, Item{
			Title:       title,
			URL:         href,
			Description: strings.TrimSpace(story.Find("p").First().Text()),
			PublishedAt: stamp,
		})
		return len(items) < count
	})
	if len(items) == 0 {
		return nil, ErrNoStories
	}
	return items, nil
}
