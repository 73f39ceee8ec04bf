package news_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stock-assistant/internal/news"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewAPIClient_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := news.NewAPIClient("  ")
	require.Error(t, err)

	client, err := news.NewAPIClient("test")
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestEverything_BuildsRequest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock http client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method and inspect the request
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "http://news.local/v2/everything", req.URL.Scheme+"://"+req.URL.Host+req.URL.Path)
			q := req.URL.Query()
			require.Equal(t, "indian stock market", q.Get("q"))
			require.Equal(t, "en", q.Get("language"))
			require.Equal(t, "publishedAt", q.Get("sortBy"))
			require.Equal(t, "3", q.Get("pageSize"))
			require.Equal(t, "secret", req.Header.Get("X-Api-Key"))
			require.Equal(t, "bar", req.Header.Get("foo"))
			return jsonResponse(http.StatusOK, `{"status":"ok","articles":[
				{"title":" Sensex climbs ","url":"https://x/1","description":"Banks lead","publishedAt":"2025-03-04T09:30:00Z"},
				{"title":"Nifty flat","url":"https://x/2","description":"","publishedAt":"2025-03-04T08:00:00Z"}
			]}`), nil
		}).
		Times(1)

	client, err := news.NewAPIClient("secret",
		news.WithHTTPClient(httpClient),
		news.WithBaseURL("http://news.local/"),
		news.WithHeader(http.Header{"foo": []string{"bar"}}),
	)
	require.NoError(t, err)

	// Act
	items, err := client.Everything(t.Context(), news.DefaultQuery, 3)

	// Assert
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Sensex climbs", items[0].Title)
	require.Equal(t, "https://x/1", items[0].URL)
	require.Equal(t, "2025-03-04T09:30:00Z", items[0].PublishedAt)
}

func TestEverything_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		res  *http.Response
		err  error
	}{
		{name: "transport", err: errors.New("dial tcp: refused")},
		{name: "unauthorized", res: jsonResponse(http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`)},
		{name: "rate limited", res: jsonResponse(http.StatusTooManyRequests, `{}`)},
		{name: "server error", res: jsonResponse(http.StatusInternalServerError, `oops`)},
		{name: "malformed", res: jsonResponse(http.StatusOK, `{"articles":`)},
		{name: "error status", res: jsonResponse(http.StatusOK, `{"status":"error","code":"x","message":"y"}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().Do(gomock.Any()).Return(tc.res, tc.err).Times(1)

			client, err := news.NewAPIClient("k", news.WithHTTPClient(httpClient))
			require.NoError(t, err)

			items, err := client.Everything(t.Context(), "q", 5)
			require.Error(t, err)
			require.Empty(t, items)
		})
	}
}
