package chat

import (
	"fmt"
	"strings"
)

type Intent int

const (
	ChartLookup Intent = iota
	BuyRecommendation
	SellRecommendation
	MarketSummary
	NewsQuery
	Fallback
)

func (i Intent) String() string {
	switch i {
	case ChartLookup:
		return "chart_lookup"
	case BuyRecommendation:
		return "buy_recommendation"
	case SellRecommendation:
		return "sell_recommendation"
	case MarketSummary:
		return "market_summary"
	case NewsQuery:
		return "news_query"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

type rule struct {
	intent   Intent
	keywords []string
}

// rules are checked in order against the lower-cased utterance; the first
// rule with any matching substring wins.
var rules = []rule{
	{ChartLookup, []string{"chart", "price"}},
	{BuyRecommendation, []string{"buy", "recommend", "top pick", "top stocks", "which stock"}},
	{SellRecommendation, []string{"sell", "dump", "what to avoid", "exit"}},
	{MarketSummary, []string{"market summary", "today's trend", "market today", "what's the trend"}},
	{NewsQuery, []string{"news", "latest"}},
}

// Classify maps free text to an intent. It never fails.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return Fallback
}

var stopwords = map[string]struct{}{
	"CHART": {}, "PRICE": {}, "SHOW": {}, "ME": {}, "FOR": {}, "OF": {}, "THE": {}, "A": {},
}

// Candidates returns the words of text that may be ticker symbols, in order.
func Candidates(text string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToUpper(text)) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		w = strings.TrimRight(w, ".,?!")
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}
