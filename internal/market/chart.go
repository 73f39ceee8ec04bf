package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// ChartProvider reads the last price and previous close from the Yahoo v8
// chart endpoint. It needs no crumb.
type ChartProvider struct {
	baseURL string
	client  *http.Client
}

type chartResp struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		ShortName          string  `json:"shortName"`
		LongName           string  `json:"longName"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		PreviousClose      float64 `json:"previousClose"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
	} `json:"meta"`
}

func NewChartProvider(timeout time.Duration) *ChartProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ChartProvider{
		baseURL: defaultChartURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the provider at another chart endpoint.
func (p *ChartProvider) WithBaseURL(u string) *ChartProvider {
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	p.baseURL = u
	return p
}

func (p *ChartProvider) Name() string {
	return "yahoo-chart"
}

func (p *ChartProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	bare, exchange := SplitSymbol(symbol)
	if bare == "" {
		return Quote{}, fmt.Errorf("empty symbol")
	}

	u, err := url.Parse(p.baseURL + url.PathEscape(strings.ToUpper(strings.TrimSpace(symbol))))
	if err != nil {
		return Quote{}, fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("interval", "1d")
	q.Set("range", "1d")
	u.RawQuery = q.Encode()

	var payload chartResp
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		payload, lastErr = p.fetch(ctx, u.String())
		if lastErr == nil {
			break
		}
		if !shouldRetry(lastErr) || attempt == 2 {
			return Quote{}, lastErr
		}
		if err := sleepCtx(ctx, 150*time.Millisecond); err != nil {
			return Quote{}, err
		}
	}
	if lastErr != nil {
		return Quote{}, lastErr
	}
	if payload.Chart.Error != nil {
		if strings.EqualFold(payload.Chart.Error.Code, "Not Found") {
			return Quote{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return Quote{}, fmt.Errorf("chart error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	meta := payload.Chart.Result[0].Meta
	prev := meta.PreviousClose
	if prev <= 0 {
		prev = meta.ChartPreviousClose
	}
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	info := Fundamentals{
		LongName:         name,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
	}.Info()
	return Quote{
		Symbol:        bare,
		Exchange:      exchange,
		Name:          meta.ShortName,
		Price:         meta.RegularMarketPrice,
		PreviousClose: prev,
		Source:        p.Name(),
		Info:          &info,
	}, nil
}

func (p *ChartProvider) fetch(ctx context.Context, endpoint string) (chartResp, error) {
	var payload chartResp
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return payload, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return payload, fmt.Errorf("request chart: %w", err)
	}
	defer resp.Body.Close()

	// Yahoo answers unknown symbols with 404 and a JSON error body.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return payload, fmt.Errorf("chart status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("decode chart: %w", err)
	}
	return payload, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection reset") || strings.Contains(msg, "reset by peer") {
		return true
	}
	return false
}
