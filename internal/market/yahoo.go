package market

import (
	"context"
	"fmt"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
)

// YahooProvider reads the Yahoo quote API through finance-go. The equity
// payload carries the company figures on top of the regular quote.
type YahooProvider struct {
	get func(symbol string) (*finance.Equity, error)
}

func NewYahooProvider() *YahooProvider {
	return &YahooProvider{get: equity.Get}
}

func (p *YahooProvider) Name() string {
	return "yahoo"
}

func (p *YahooProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	bare, exchange := SplitSymbol(symbol)
	if bare == "" {
		return Quote{}, fmt.Errorf("empty symbol")
	}
	q, err := p.get(symbol)
	if err != nil {
		return Quote{}, fmt.Errorf("request yahoo quote: %w", err)
	}
	if q == nil {
		return Quote{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	name := q.LongName
	if name == "" {
		name = q.ShortName
	}
	info := Fundamentals{
		LongName:         name,
		MarketCap:        float64(q.MarketCap),
		TrailingPE:       q.TrailingPE,
		FiftyTwoWeekHigh: q.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  q.FiftyTwoWeekLow,
		DividendYield:    q.TrailingAnnualDividendYield,
		AvgVolume:        float64(q.AverageDailyVolume3Month),
	}.Info()
	return Quote{
		Symbol:        bare,
		Exchange:      exchange,
		Name:          q.ShortName,
		Price:         q.RegularMarketPrice,
		PreviousClose: q.RegularMarketPreviousClose,
		Source:        p.Name(),
		Info:          &info,
	}, nil
}
