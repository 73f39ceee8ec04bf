package recommend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=recommend_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	defaultBaseURL = "https://indian-stock-exchange-api2.p.rapidapi.com"
	defaultTTL     = 30 * time.Second
	trendingKey    = "trending"
)

// Trending is one reading of the exchange's top movers, by company name.
type Trending struct {
	Gainers []string `json:"gainers"`
	Losers  []string `json:"losers"`
}

type Client struct {
	key        string
	baseURL    string
	host       string
	httpClient HTTPClient
	ttl        time.Duration
	now        func() time.Time

	group  singleflight.Group
	mu     sync.Mutex
	cached Trending
	until  time.Time
}

type Option func(*Client)

// WithBaseURL sets the base URL. The x-rapidapi-host header follows it
// unless WithHost is also given.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTTL sets how long a successful reading is reused. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func NewClient(key string, opts ...Option) *Client {
	c := &Client{
		key:        key,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		ttl:        defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.host == "" {
		c.host = strings.TrimPrefix(strings.TrimPrefix(c.baseURL, "https://"), "http://")
	}
	return c
}

// Trending returns gainers and losers. Any upstream failure yields empty
// lists; concurrent callers share one request.
func (c *Client) Trending(ctx context.Context) Trending {
	c.mu.Lock()
	if c.now().Before(c.until) {
		t := c.cached
		c.mu.Unlock()
		return t
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(trendingKey, func() (any, error) {
		t, err := c.fetch(ctx)
		if err != nil {
			hlog.Warnf("trending fetch error: %v", err)
			return Trending{Gainers: []string{}, Losers: []string{}}, nil
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.cached = t
			c.until = c.now().Add(c.ttl)
			c.mu.Unlock()
		}
		return t, nil
	})
	return v.(Trending)
}

// Gainers returns the top gainers, used as buy picks.
func (c *Client) Gainers(ctx context.Context) []string {
	return c.Trending(ctx).Gainers
}

// Losers returns the top losers, used as stocks to avoid.
func (c *Client) Losers(ctx context.Context) []string {
	return c.Trending(ctx).Losers
}

func (c *Client) fetch(ctx context.Context) (Trending, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/trending", http.NoBody)
	if err != nil {
		return Trending{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.key)
	req.Header.Set("x-rapidapi-host", c.host)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Trending{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return Trending{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Trending{}, fmt.Errorf("reading response: %w", err)
	}
	return parseTrending(body)
}

func parseTrending(body []byte) (Trending, error) {
	if !gjson.ValidBytes(body) {
		return Trending{}, fmt.Errorf("malformed trending payload")
	}
	root := gjson.GetBytes(body, "trending_stocks")
	if !root.IsObject() {
		return Trending{}, fmt.Errorf("trending payload has no trending_stocks object")
	}
	return Trending{
		Gainers: companyNames(root.Get("top_gainers")),
		Losers:  companyNames(root.Get("top_losers")),
	}, nil
}

func companyNames(list gjson.Result) []string {
	names := []string{}
	if !list.IsArray() {
		return names
	}
	for _, entry := range list.Array() {
		if name := strings.TrimSpace(entry.Get("company_name").String()); name != "" {
			names = append(names, name)
		}
	}
	return names
}
