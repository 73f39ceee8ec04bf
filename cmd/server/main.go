package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"stock-assistant/internal/api"
	"stock-assistant/internal/chat"
	"stock-assistant/internal/config"
	"stock-assistant/internal/market"
	"stock-assistant/internal/news"
	"stock-assistant/internal/recommend"
	"stock-assistant/internal/store"
	"stock-assistant/internal/summary"
	"stock-assistant/internal/ticker"
)

func main() {
	cfg, err := config.Load("configs/app.yaml")
	if err != nil {
		hlog.Fatalf("config error: %v", err)
	}
	hlog.SetLevel(logLevel(cfg.Log.Level))

	loc, err := time.LoadLocation(cfg.Ticker.Timezone)
	if err != nil {
		hlog.Warnf("timezone %q unavailable, using UTC: %v", cfg.Ticker.Timezone, err)
		loc = time.UTC
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	h := server.Default(server.WithHostPorts(addr))

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.Open(cfg.Store.Sqlite.Path)
		if err != nil {
			hlog.Fatalf("store error: %v", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				hlog.Errorf("store close error: %v", err)
			}
		}()
	}

	chart := market.NewChartProvider(ms(cfg.Market.TimeoutMs))
	if cfg.Market.ChartBaseURL != "" {
		chart = chart.WithBaseURL(cfg.Market.ChartBaseURL)
	}
	resolver := market.NewResolver(market.NewMultiProvider(market.NewYahooProvider(), chart))

	tickerStore := ticker.NewStore(ticker.SeedSnapshot(cfg.Ticker.Symbols, cfg.Ticker.Seeds, time.Now()))
	tickerCfg := ticker.Config{
		Symbols:         cfg.Ticker.Symbols,
		Interval:        time.Duration(cfg.Ticker.IntervalSec) * time.Second,
		FailureInterval: time.Duration(cfg.Ticker.FailureIntervalSec) * time.Second,
		Seeds:           cfg.Ticker.Seeds,
	}
	var archiver ticker.Archiver
	if st != nil {
		archiver = st
	}
	loop := ticker.NewLoop(tickerCfg, resolver, tickerStore, archiver)
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	go loop.Run(loopCtx)

	newsHTTP := &http.Client{Timeout: ms(cfg.News.TimeoutMs)}
	newsOpts := []news.Option{news.WithHTTPClient(newsHTTP)}
	if cfg.News.BaseURL != "" {
		newsOpts = append(newsOpts, news.WithBaseURL(cfg.News.BaseURL))
	}
	newsAPI, err := news.NewAPIClient(cfg.News.APIKey, newsOpts...)
	if err != nil {
		hlog.Fatalf("news client error: %v", err)
	}
	scrapeOpts := []news.Option{news.WithHTTPClient(newsHTTP)}
	if cfg.News.ScrapeBaseURL != "" {
		scrapeOpts = append(scrapeOpts, news.WithBaseURL(cfg.News.ScrapeBaseURL))
	}
	newsSrc := news.NewSource(newsAPI, news.NewScraper(scrapeOpts...))

	recOpts := []recommend.Option{
		recommend.WithHTTPClient(&http.Client{Timeout: ms(cfg.Recommend.TimeoutMs)}),
		recommend.WithTTL(time.Duration(cfg.Recommend.CacheTTLSec) * time.Second),
	}
	if cfg.Recommend.BaseURL != "" {
		recOpts = append(recOpts, recommend.WithBaseURL(cfg.Recommend.BaseURL))
	}
	rec := recommend.NewClient(cfg.Recommend.APIKey, recOpts...)

	composer := summary.New(summary.Config{
		Enabled:    cfg.Summary.Enabled,
		Model:      cfg.Summary.Model,
		APIKey:     cfg.Summary.APIKey,
		BaseURL:    cfg.Summary.BaseURL,
		ByAzure:    cfg.Summary.ByAzure,
		APIVersion: cfg.Summary.APIVersion,
		TimeoutMs:  cfg.Summary.TimeoutMs,
	})

	chatDeps := chat.Deps{
		Resolver:    resolver,
		News:        newsSrc,
		Recommender: rec,
		Summarizer:  composer,
		History:     chat.NewHistory(cfg.Chat.HistorySize),
		NewsQuery:   cfg.News.Query,
	}
	apiDeps := api.Deps{
		Ticker:    tickerStore,
		Location:  loc,
		Quotes:    resolver,
		News:      newsSrc,
		NewsQuery: cfg.News.Query,
		NewsCount: cfg.News.Count,
		Trending:  rec,
		Summary:   composer,
	}
	if st != nil {
		chatDeps.Log = st
		apiDeps.Snapshots = st

		if cfg.Store.RetentionDays > 0 {
			janitor, err := store.NewJanitor(st, time.Duration(cfg.Store.RetentionDays)*24*time.Hour, cfg.Store.PruneSpec)
			if err != nil {
				hlog.Fatalf("store janitor error: %v", err)
			}
			if _, err := janitor.RunOnce(); err != nil {
				hlog.Warnf("initial prune error: %v", err)
			}
			janitor.Start()
			defer janitor.Stop()
		}
	}
	apiDeps.Chat = chat.NewRouter(chatDeps)

	api.RegisterRoutes(h, apiDeps)

	h.OnShutdown = append(h.OnShutdown, func(context.Context) {
		tickerStore.Stop()
		cancelLoop()
	})

	hlog.Infof("server starting on %s (log.level=%s, symbols=%d)", addr, cfg.Log.Level, len(cfg.Ticker.Symbols))
	h.Spin()
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func logLevel(s string) hlog.Level {
	switch s {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}
