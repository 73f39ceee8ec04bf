package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"stock-assistant/internal/chat"
	"stock-assistant/internal/market"
	"stock-assistant/internal/news"
	"stock-assistant/internal/recommend"
	"stock-assistant/internal/store"
	"stock-assistant/internal/summary"
	"stock-assistant/internal/ticker"
)

type QuoteLookup interface {
	Lookup(ctx context.Context, symbol string) (market.Quote, error)
}

type NewsFetcher interface {
	Fetch(ctx context.Context, query string, count int) ([]news.Item, error)
}

type TrendingSource interface {
	Trending(ctx context.Context) recommend.Trending
}

type SnapshotQuerier interface {
	QueryMarketSnapshots(symbol string, limit int, offset int) ([]store.MarketSnapshot, error)
}

type Deps struct {
	Ticker    *ticker.Store
	Location  *time.Location
	Quotes    QuoteLookup
	News      NewsFetcher
	NewsQuery string
	NewsCount int
	Trending  TrendingSource
	Snapshots SnapshotQuerier
	Chat      *chat.Router
	Summary   *summary.Composer
}

type ChatRequest struct {
	Message string `json:"message"`
}

type NewsView struct {
	Title            string `json:"title"`
	URL              string `json:"url"`
	Description      string `json:"description"`
	PublishedAt      string `json:"published_at"`
	PublishedDisplay string `json:"published_display"`
}

func RegisterRoutes(h *server.Hertz, d Deps) {
	if d.Location == nil {
		d.Location = time.UTC
	}

	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(200, map[string]bool{"ok": true})
	})

	h.GET("/api/v1/ticker", func(_ context.Context, c *app.RequestContext) {
		if d.Ticker == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "ticker not configured",
			})
			return
		}
		snap := d.Ticker.Load()
		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"line":     ticker.FormatLine(snap, time.Now(), d.Location),
			"snapshot": snap,
		})
	})

	h.GET("/api/v1/quote/:symbol", func(ctx context.Context, c *app.RequestContext) {
		if d.Quotes == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "market service not configured",
			})
			return
		}
		symbol := strings.TrimSpace(c.Param("symbol"))
		q, err := d.Quotes.Lookup(ctx, symbol)
		if errors.Is(err, market.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, map[string]any{
				"ok":    false,
				"error": fmt.Sprintf("couldn't find data for %s", market.BareSymbol(symbol)),
			})
			return
		}
		if err != nil {
			hlog.Warnf("quote lookup error: %v", err)
			c.JSON(http.StatusBadGateway, map[string]any{
				"ok":    false,
				"error": "quote source unavailable",
			})
			return
		}
		info := q.Info
		if info == nil {
			fallback := market.Fundamentals{LongName: q.Name}.Info()
			info = &fallback
		}
		resp := map[string]any{
			"ok":                 true,
			"quote":              q,
			"tradingview_symbol": q.TradingViewSymbol(),
			"info":               info,
		}
		if pct, ok := q.ChangePct(); ok {
			resp["change_pct"] = pct
		}
		c.JSON(http.StatusOK, resp)
	})

	h.GET("/api/v1/news", func(ctx context.Context, c *app.RequestContext) {
		if d.News == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "news source not configured",
			})
			return
		}
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			query = d.NewsQuery
		}
		count := d.NewsCount
		if raw := c.Query("count"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v <= 0 || v > 50 {
				c.JSON(http.StatusBadRequest, map[string]any{
					"ok":    false,
					"error": "invalid count",
				})
				return
			}
			count = v
		}
		items, err := d.News.Fetch(ctx, query, count)
		if err != nil {
			hlog.Warnf("news fetch error: %v", err)
			c.JSON(http.StatusOK, map[string]any{
				"ok":       true,
				"items":    []NewsView{},
				"warnings": []string{"news unavailable"},
			})
			return
		}
		views := make([]NewsView, 0, len(items))
		for _, it := range items {
			views = append(views, NewsView{
				Title:            it.Title,
				URL:              it.URL,
				Description:      news.ShortDescription(it.Description),
				PublishedAt:      it.PublishedAt,
				PublishedDisplay: news.DisplayDate(it.PublishedAt),
			})
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":    true,
			"items": views,
		})
	})

	h.GET("/api/v1/recommendations", func(ctx context.Context, c *app.RequestContext) {
		if d.Trending == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "recommendation source not configured",
			})
			return
		}
		t := d.Trending.Trending(ctx)
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"gainers": t.Gainers,
			"losers":  t.Losers,
		})
	})

	h.GET("/api/v1/snapshots", func(_ context.Context, c *app.RequestContext) {
		if d.Snapshots == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "store not configured",
			})
			return
		}
		symbol := market.BareSymbol(c.Query("symbol"))
		if symbol == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "symbol is required",
			})
			return
		}
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		offset, err := parseOffset(c.Query("offset"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		rows, err := d.Snapshots.QueryMarketSnapshots(symbol, limit, offset)
		if err != nil {
			hlog.Errorf("query snapshots error: %v", err)
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "query snapshots failed",
			})
			return
		}
		if rows == nil {
			rows = []store.MarketSnapshot{}
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":        true,
			"symbol":    symbol,
			"snapshots": rows,
		})
	})

	h.POST("/api/v1/chat", func(ctx context.Context, c *app.RequestContext) {
		if d.Chat == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "chat not configured",
			})
			return
		}
		var req ChatRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid json body",
			})
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "message is empty",
			})
			return
		}
		resp := d.Chat.Handle(ctx, req.Message)
		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"response": resp,
		})
	})

	h.GET("/api/v1/chat/history", func(_ context.Context, c *app.RequestContext) {
		if d.Chat == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "chat not configured",
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"messages": d.Chat.History().Messages(),
		})
	})

	h.POST("/api/v1/test/summary/ping", func(ctx context.Context, c *app.RequestContext) {
		res, err := summary.Ping(d.Summary, ctx)
		if err != nil {
			res["error"] = err.Error()
		}
		c.JSON(http.StatusOK, res)
	})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 200, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if v > 1000 {
		return 1000, nil
	}
	return v, nil
}

func parseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid offset")
	}
	return v, nil
}
