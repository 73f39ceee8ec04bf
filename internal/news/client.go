package news

import (
	"net/http"
	"time"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=news_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Item is one headline as the dashboard lists it.
type Item struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
}

const (
	// DefaultQuery feeds the top news panel and chat searches.
	DefaultQuery = "indian stock market"
	DefaultCount = 5

	newsAPIBaseURL = "https://newsapi.org"
	userAgent      = "Mozilla/5.0"
)

// Option configures the NewsAPI client and the scraper.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
	now        func() time.Time
}

func newOptions(baseURL string, opts []Option) *options {
	o := &options{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBaseURL sets the base URL requests are sent to.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(o *options) {
		if httpClient != nil {
			o.httpClient = httpClient
		}
	}
}

// WithHeader adds headers sent with each request.
func WithHeader(header http.Header) Option {
	return func(o *options) {
		for key, values := range header {
			for _, value := range values {
				o.header.Add(key, value)
			}
		}
	}
}

// WithClock overrides the time source used for scraped timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
