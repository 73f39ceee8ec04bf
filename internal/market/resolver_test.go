package market_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-assistant/internal/market"
)

type fakeProvider struct {
	quotes map[string]market.Quote
	errs   map[string]error
	calls  []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetQuote(_ context.Context, symbol string) (market.Quote, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return market.Quote{}, err
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return market.Quote{}, fmt.Errorf("%w: %s", market.ErrSymbolNotFound, symbol)
}

func TestResolver_PrimaryExchangeFirst(t *testing.T) {
	t.Parallel()

	// Arrange: both listings exist.
	p := &fakeProvider{quotes: map[string]market.Quote{
		"INFY.NS": {Price: 1520.15, PreviousClose: 1500},
		"INFY.BO": {Price: 1521, PreviousClose: 1500},
	}}

	// Act
	q, err := market.NewResolver(p).Lookup(t.Context(), "infy")

	// Assert: NSE wins and the BSE listing is never asked for.
	require.NoError(t, err)
	require.Equal(t, "INFY", q.Symbol)
	require.Equal(t, market.ExchangeNSE, q.Exchange)
	require.Equal(t, []string{"INFY.NS"}, p.calls)
	require.Equal(t, "NSE:INFY", q.TradingViewSymbol())
}

func TestResolver_FallsBackToSecondaryExchange(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		quotes: map[string]market.Quote{"SMALLCO.BO": {Price: 42}},
		errs:   map[string]error{"SMALLCO.NS": errors.New("timeout")},
	}

	q, err := market.NewResolver(p).Lookup(t.Context(), "SMALLCO")

	require.NoError(t, err)
	require.Equal(t, market.ExchangeBSE, q.Exchange)
	require.Equal(t, "BSE:SMALLCO", q.TradingViewSymbol())
	require.Equal(t, []string{"SMALLCO.NS", "SMALLCO.BO"}, p.calls)
}

func TestResolver_PrimaryWithoutPriceFallsBack(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{quotes: map[string]market.Quote{
		"TCS.NS": {Price: 0},
		"TCS.BO": {Price: 3450.2},
	}}

	q, err := market.NewResolver(p).Lookup(t.Context(), "TCS")

	require.NoError(t, err)
	require.Equal(t, market.ExchangeBSE, q.Exchange)
	require.InDelta(t, 3450.2, q.Price, 1e-9)
}

func TestResolver_NotFoundAfterBothExchanges(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}

	_, err := market.NewResolver(p).Lookup(t.Context(), "NOPE")

	require.ErrorIs(t, err, market.ErrSymbolNotFound)
	require.Equal(t, []string{"NOPE.NS", "NOPE.BO"}, p.calls)
}

func TestResolver_ExplicitSuffixSkipsFallback(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}

	_, err := market.NewResolver(p).Lookup(t.Context(), "RELIANCE.BO")

	require.ErrorIs(t, err, market.ErrSymbolNotFound)
	require.Equal(t, []string{"RELIANCE.BO"}, p.calls)
}

func TestQuote_ChangePct(t *testing.T) {
	t.Parallel()

	pct, ok := market.Quote{Price: 110, PreviousClose: 100}.ChangePct()
	require.True(t, ok)
	require.InDelta(t, 10.0, pct, 1e-9)

	_, ok = market.Quote{Price: 110}.ChangePct()
	require.False(t, ok)
}

func TestBareSymbol(t *testing.T) {
	t.Parallel()

	require.Equal(t, "RELIANCE", market.BareSymbol("reliance.ns"))
	require.Equal(t, "TCS", market.BareSymbol("TCS.BO"))
	require.Equal(t, "WIPRO", market.BareSymbol(" wipro "))
}

func TestMultiProvider_FirstPricedQuoteWins(t *testing.T) {
	t.Parallel()

	empty := &fakeProvider{quotes: map[string]market.Quote{"INFY.NS": {Price: 0}}}
	full := &fakeProvider{quotes: map[string]market.Quote{"INFY.NS": {Price: 1500, PreviousClose: 1490}}}

	q, err := market.NewMultiProvider(empty, full).GetQuote(t.Context(), "INFY.NS")

	require.NoError(t, err)
	require.InDelta(t, 1500.0, q.Price, 1e-9)
	require.Len(t, empty.calls, 1)
	require.Len(t, full.calls, 1)
}

func TestMultiProvider_AllFail(t *testing.T) {
	t.Parallel()

	_, err := market.NewMultiProvider(&fakeProvider{}, &fakeProvider{}).GetQuote(t.Context(), "X.NS")
	require.ErrorIs(t, err, market.ErrSymbolNotFound)

	_, err = market.NewMultiProvider().GetQuote(t.Context(), "X.NS")
	require.Error(t, err)
}
