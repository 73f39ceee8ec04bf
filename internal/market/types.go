package market

import (
	"context"
	"errors"
	"strings"
)

// ErrSymbolNotFound is returned when neither exchange listing yields data.
var ErrSymbolNotFound = errors.New("symbol not found")

const (
	ExchangeNSE = "NS"
	ExchangeBSE = "BO"
)

// Quote is what a provider knows about one listing. A zero Price or
// PreviousClose means the provider did not report that value.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Exchange      string  `json:"exchange"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close,omitempty"`
	Source        string  `json:"source,omitempty"`

	Info *CompanyInfo `json:"info,omitempty"`
}

// HasPrice reports whether the provider returned a usable last price.
func (q Quote) HasPrice() bool {
	return q.Price > 0
}

// ChangePct returns the move against the previous close, and false when
// either side is missing.
func (q Quote) ChangePct() (float64, bool) {
	if q.Price <= 0 || q.PreviousClose <= 0 {
		return 0, false
	}
	return (q.Price - q.PreviousClose) / q.PreviousClose * 100, true
}

// TradingViewSymbol maps the resolved listing to the widget symbol, e.g. NSE:INFY.
func (q Quote) TradingViewSymbol() string {
	switch q.Exchange {
	case ExchangeBSE:
		return "BSE:" + q.Symbol
	default:
		return "NSE:" + q.Symbol
	}
}

type Provider interface {
	Name() string
	// GetQuote looks up one exchange-qualified symbol such as "INFY.NS".
	GetQuote(ctx context.Context, symbol string) (Quote, error)
}

// BareSymbol strips a trailing exchange marker and upper-cases the symbol.
func BareSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, "."+ExchangeNSE)
	s = strings.TrimSuffix(s, "."+ExchangeBSE)
	return s
}

// SplitSymbol returns the bare symbol and an explicit exchange marker, if any.
func SplitSymbol(symbol string) (string, string) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, ex := range []string{ExchangeNSE, ExchangeBSE} {
		if strings.HasSuffix(s, "."+ex) {
			return strings.TrimSuffix(s, "."+ex), ex
		}
	}
	return s, ""
}
