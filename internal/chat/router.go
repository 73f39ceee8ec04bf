package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stock-assistant/internal/market"
	"stock-assistant/internal/news"
	"stock-assistant/internal/summary"
)

const (
	msgNoSymbol   = "Couldn't detect a valid stock symbol. Try something like 'Show RELIANCE chart'."
	msgNoBuys     = "No top picks found at the moment. Try again later."
	msgNoSells    = "No stocks to avoid found at the moment. Try again later."
	msgNoNews     = "Couldn't find specific news. Check the top news section above."
	msgHelp       = "I can help with stock charts, prices, top picks, and news. Try 'top picks', 'sell today', or 'market summary'."
	newsLimit     = 5
	fallbackLimit = 3
)

type SymbolResolver interface {
	Lookup(ctx context.Context, symbol string) (market.Quote, error)
}

type NewsFetcher interface {
	Fetch(ctx context.Context, query string, count int) ([]news.Item, error)
}

// Recommender never fails; an unavailable source yields empty lists.
type Recommender interface {
	Gainers(ctx context.Context) []string
	Losers(ctx context.Context) []string
}

type Summarizer interface {
	Summarize(ctx context.Context, gainers, losers []string) string
}

// MessageLog persists chat turns beyond the in-memory history.
type MessageLog interface {
	SaveMessage(m Message) error
}

type Chart struct {
	Symbol      string  `json:"symbol"`
	Exchange    string  `json:"exchange"`
	TradingView string  `json:"tradingview_symbol"`
	Name        string  `json:"name,omitempty"`
	Price       float64 `json:"price"`

	Info *market.CompanyInfo `json:"info,omitempty"`
}

type Response struct {
	Intent Intent      `json:"intent"`
	Text   string      `json:"text"`
	Items  []string    `json:"items,omitempty"`
	News   []news.Item `json:"news,omitempty"`
	Chart  *Chart      `json:"chart,omitempty"`
}

type Deps struct {
	Resolver    SymbolResolver
	News        NewsFetcher
	Recommender Recommender
	Summarizer  Summarizer
	Log         MessageLog
	History     *History
	NewsQuery   string
}

// Router answers one utterance at a time and records both sides of the turn.
type Router struct {
	deps    Deps
	printer *message.Printer
	now     func() time.Time

	mu sync.Mutex
}

func NewRouter(deps Deps) *Router {
	if deps.History == nil {
		deps.History = NewHistory(DefaultHistorySize)
	}
	if deps.NewsQuery == "" {
		deps.NewsQuery = news.DefaultQuery
	}
	return &Router{
		deps:    deps,
		printer: message.NewPrinter(language.MustParse("en-IN")),
		now:     time.Now,
	}
}

func (r *Router) History() *History {
	return r.deps.History
}

// Handle classifies text, runs the matching handler and appends the
// utterance and the reply to the history. Turns are serialized.
func (r *Router) Handle(ctx context.Context, text string) Response {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := newMessage(RoleUser, text, Fallback, r.now())
	intent := Classify(text)
	resp := r.safeDispatch(ctx, intent, text)
	reply := newMessage(RoleAssistant, resp.Text, intent, r.now())

	r.deps.History.Append(user, reply)
	if r.deps.Log != nil {
		for _, m := range []Message{user, reply} {
			if err := r.deps.Log.SaveMessage(m); err != nil {
				hlog.Warnf("save chat message error: %v", err)
			}
		}
	}
	return resp
}

// safeDispatch answers with the intent's empty reply when a source panics.
func (r *Router) safeDispatch(ctx context.Context, intent Intent, text string) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			hlog.Errorf("chat %s handler panic: %v", intent, rec)
			resp = Response{Intent: intent, Text: emptyReply(intent)}
		}
	}()
	return r.dispatch(ctx, intent, text)
}

func emptyReply(intent Intent) string {
	switch intent {
	case ChartLookup:
		return msgNoSymbol
	case BuyRecommendation:
		return msgNoBuys
	case SellRecommendation:
		return msgNoSells
	case MarketSummary:
		return summary.Fallback(nil, nil)
	case NewsQuery:
		return msgNoNews
	default:
		return msgHelp
	}
}

func (r *Router) dispatch(ctx context.Context, intent Intent, text string) Response {
	switch intent {
	case ChartLookup:
		return r.chart(ctx, text)
	case BuyRecommendation:
		return r.picks(intent, r.gainers(ctx), "📈 Today's top picks:", msgNoBuys)
	case SellRecommendation:
		return r.picks(intent, r.losers(ctx), "📉 Stocks to avoid today:", msgNoSells)
	case MarketSummary:
		return r.marketSummary(ctx)
	case NewsQuery:
		return r.news(ctx, intent, text, newsLimit, "🗞️ Here's the latest news related to your query:", msgNoNews)
	case Fallback:
		return r.news(ctx, intent, text, fallbackLimit, "Here's what I found related to your query:", msgHelp)
	default:
		return Response{Intent: Fallback, Text: msgHelp}
	}
}

func (r *Router) chart(ctx context.Context, text string) Response {
	resp := Response{Intent: ChartLookup, Text: msgNoSymbol}
	if r.deps.Resolver == nil {
		return resp
	}
	for _, cand := range Candidates(text) {
		q, err := r.deps.Resolver.Lookup(ctx, cand)
		if err != nil {
			hlog.Debugf("chart candidate %s rejected: %v", cand, err)
			continue
		}
		info := q.Info
		if info == nil {
			fallback := market.Fundamentals{LongName: q.Name}.Info()
			info = &fallback
		}
		resp.Chart = &Chart{
			Symbol:      q.Symbol,
			Exchange:    q.Exchange,
			TradingView: q.TradingViewSymbol(),
			Name:        q.Name,
			Price:       q.Price,
			Info:        info,
		}
		resp.Text = r.printer.Sprintf("Here's the TradingView chart for %s (%s). Last price ₹%.2f.",
			q.Symbol, q.TradingViewSymbol(), q.Price)
		return resp
	}
	return resp
}

func (r *Router) picks(intent Intent, names []string, header, empty string) Response {
	if len(names) == 0 {
		return Response{Intent: intent, Text: empty}
	}
	return Response{Intent: intent, Text: header + "\n\n" + bulletList(names), Items: names}
}

func (r *Router) marketSummary(ctx context.Context) Response {
	gainers, losers := r.gainers(ctx), r.losers(ctx)
	var text string
	if r.deps.Summarizer != nil {
		text = r.deps.Summarizer.Summarize(ctx, gainers, losers)
	} else {
		text = summary.Fallback(gainers, losers)
	}
	items := make([]string, 0, len(gainers)+len(losers))
	items = append(items, gainers...)
	items = append(items, losers...)
	return Response{Intent: MarketSummary, Text: text, Items: items}
}

func (r *Router) news(ctx context.Context, intent Intent, text string, limit int, header, empty string) Response {
	resp := Response{Intent: intent, Text: empty}
	if r.deps.News == nil {
		return resp
	}
	items, err := r.deps.News.Fetch(ctx, r.deps.NewsQuery, news.DefaultCount)
	if err != nil {
		hlog.Warnf("chat news error: %v", err)
		return resp
	}
	matched := news.Match(items, text, limit)
	if len(matched) == 0 {
		return resp
	}
	lines := make([]string, 0, len(matched))
	for _, it := range matched {
		lines = append(lines, "["+it.Title+"]("+it.URL+")")
	}
	resp.Text = header + "\n\n" + bulletList(lines)
	resp.News = matched
	return resp
}

func (r *Router) gainers(ctx context.Context) []string {
	if r.deps.Recommender == nil {
		return nil
	}
	return r.deps.Recommender.Gainers(ctx)
}

func (r *Router) losers(ctx context.Context) []string {
	if r.deps.Recommender == nil {
		return nil
	}
	return r.deps.Recommender.Losers(ctx)
}

func bulletList(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}
