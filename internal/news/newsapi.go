package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// APIClient queries the NewsAPI "everything" endpoint.
type APIClient struct {
	key  string
	opts *options
}

func NewAPIClient(key string, opts ...Option) (*APIClient, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("news api key is empty")
	}
	return &APIClient{key: key, opts: newOptions(newsAPIBaseURL, opts)}, nil
}

type apiResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Everything returns up to count English articles for query, newest first.
func (c *APIClient) Everything(ctx context.Context, query string, count int) ([]Item, error) {
	if count <= 0 {
		count = DefaultCount
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(count))

	u := fmt.Sprintf("%s/v2/everything?%s", strings.TrimRight(c.opts.baseURL, "/"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.opts.header.Clone()
	req.Header.Set("X-Api-Key", c.key)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.opts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	var body apiResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("unauthorized: %s", body.Message)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")
	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if body.Status != "" && body.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s", body.Code, body.Message)
	}

	items := make([]Item, 0, len(body.Articles))
	for _, a := range body.Articles {
		if len(items) == count {
			break
		}
		items = append(items, Item{
			Title:       strings.TrimSpace(a.Title),
			URL:         a.URL,
			Description: strings.TrimSpace(a.Description),
			PublishedAt: a.PublishedAt,
		})
	}
	return items, nil
}
