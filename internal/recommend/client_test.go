package recommend_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stock-assistant/internal/recommend"
)

const trendingBody = `{"trending_stocks":{
	"top_gainers":[{"company_name":"Tata Motors","price":"780.10"},{"company_name":" Infosys "},{"ticker_id":"X"}],
	"top_losers":[{"company_name":"Wipro"}]
}}`

func okResponse(body string) *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(body))}
}

type clock struct {
	mu sync.Mutex
	at time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.at = c.at.Add(d)
	c.mu.Unlock()
}

func TestTrending_ParsesPayload(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock http client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the request carries the RapidAPI headers
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "https://api.local/trending", req.URL.String())
			require.Equal(t, "secret", req.Header.Get("x-rapidapi-key"))
			require.Equal(t, "api.local", req.Header.Get("x-rapidapi-host"))
			return okResponse(trendingBody), nil
		}).
		Times(1)

	client := recommend.NewClient("secret", recommend.WithHTTPClient(httpClient), recommend.WithBaseURL("https://api.local/"))

	// Act
	got := client.Trending(t.Context())

	// Assert
	require.Equal(t, []string{"Tata Motors", "Infosys"}, got.Gainers)
	require.Equal(t, []string{"Wipro"}, got.Losers)
}

func TestTrending_DegradesToEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		res  *http.Response
		err  error
	}{
		{name: "transport", err: errors.New("timeout")},
		{name: "forbidden", res: &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader(`{}`))}},
		{name: "not json", res: okResponse(`<html>`)},
		{name: "missing root", res: okResponse(`{"message":"quota exceeded"}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().Do(gomock.Any()).Return(tc.res, tc.err).Times(1)

			client := recommend.NewClient("k", recommend.WithHTTPClient(httpClient))

			got := client.Trending(t.Context())
			require.NotNil(t, got.Gainers)
			require.Empty(t, got.Gainers)
			require.Empty(t, got.Losers)
		})
	}
}

func TestTrending_MissingListIsEmpty(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(okResponse(`{"trending_stocks":{"top_gainers":[{"company_name":"TCS"}]}}`), nil)

	client := recommend.NewClient("k", recommend.WithHTTPClient(httpClient))

	require.Equal(t, []string{"TCS"}, client.Gainers(t.Context()))
	require.Empty(t, client.Losers(t.Context()))
}

func TestTrending_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	// Arrange: two upstream calls are allowed, one per TTL window.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(*http.Request) (*http.Response, error) { return okResponse(trendingBody), nil }).
		Times(2)

	clk := &clock{at: time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)}
	client := recommend.NewClient("k",
		recommend.WithHTTPClient(httpClient),
		recommend.WithTTL(time.Minute),
		recommend.WithClock(clk.now),
	)

	// Act: a market summary reads both lists.
	require.Len(t, client.Gainers(t.Context()), 2)
	require.Len(t, client.Losers(t.Context()), 1)

	clk.advance(2 * time.Minute)
	require.Len(t, client.Gainers(t.Context()), 2)
}

func TestTrending_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	gomock.InOrder(
		httpClient.EXPECT().Do(gomock.Any()).Return(nil, errors.New("down")),
		httpClient.EXPECT().Do(gomock.Any()).Return(okResponse(trendingBody), nil),
	)

	client := recommend.NewClient("k", recommend.WithHTTPClient(httpClient))

	require.Empty(t, client.Gainers(t.Context()))
	require.Len(t, client.Gainers(t.Context()), 2)
}
