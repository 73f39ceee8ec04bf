package market

import (
	"errors"
	"testing"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/require"
)

func TestYahooProvider_MapsQuote(t *testing.T) {
	t.Parallel()

	p := &YahooProvider{get: func(symbol string) (*finance.Equity, error) {
		require.Equal(t, "RELIANCE.NS", symbol)
		q := &finance.Equity{}
		q.Symbol = symbol
		q.ShortName = "Reliance Industries"
		q.RegularMarketPrice = 2830.45
		q.RegularMarketPreviousClose = 2795.5
		q.LongName = "Reliance Industries Limited"
		q.MarketCap = 550_000_000_000
		q.TrailingPE = 27.5
		q.FiftyTwoWeekHigh = 312.4
		q.TrailingAnnualDividendYield = 0.0035
		return q, nil
	}}

	q, err := p.GetQuote(t.Context(), "RELIANCE.NS")

	require.NoError(t, err)
	require.Equal(t, "RELIANCE", q.Symbol)
	require.Equal(t, ExchangeNSE, q.Exchange)
	require.Equal(t, "Reliance Industries", q.Name)
	require.InDelta(t, 2795.5, q.PreviousClose, 1e-9)

	require.NotNil(t, q.Info)
	require.Equal(t, "Reliance Industries Limited", q.Info.Name)
	require.Equal(t, "₹550.00B", q.Info.MarketCap)
	require.Equal(t, "27.50", q.Info.PERatio)
	require.Equal(t, "312.40", q.Info.FiftyTwoWeekHigh)
	require.Equal(t, "0.35%", q.Info.DividendYield)
	require.Equal(t, NotAvailable, q.Info.FiftyTwoWeekLow)
	require.Equal(t, NotAvailable, q.Info.Sector)
	require.Equal(t, NotAvailable, q.Info.Industry)
	require.Equal(t, NotAvailable, q.Info.Beta)
}

func TestYahooProvider_NilQuoteIsNotFound(t *testing.T) {
	t.Parallel()

	p := &YahooProvider{get: func(string) (*finance.Equity, error) { return nil, nil }}
	_, err := p.GetQuote(t.Context(), "NOPE.NS")
	require.ErrorIs(t, err, ErrSymbolNotFound)

	p = &YahooProvider{get: func(string) (*finance.Equity, error) { return nil, errors.New("boom") }}
	_, err = p.GetQuote(t.Context(), "NOPE.NS")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSymbolNotFound)
}
