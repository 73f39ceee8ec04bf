package market

import (
	"context"
	"errors"
	"fmt"
)

// Resolver turns a bare symbol into a listed quote, trying the primary
// exchange before the secondary one.
type Resolver struct {
	provider Provider
}

func NewResolver(p Provider) *Resolver {
	return &Resolver{provider: p}
}

// Lookup resolves symbol. An explicit .NS/.BO suffix skips the fallback.
// The error wraps ErrSymbolNotFound when no listing returned a price.
func (r *Resolver) Lookup(ctx context.Context, symbol string) (Quote, error) {
	if r == nil || r.provider == nil {
		return Quote{}, fmt.Errorf("market provider not configured")
	}
	bare, exchange := SplitSymbol(symbol)
	if bare == "" {
		return Quote{}, fmt.Errorf("%w: empty symbol", ErrSymbolNotFound)
	}
	exchanges := []string{ExchangeNSE, ExchangeBSE}
	if exchange != "" {
		exchanges = []string{exchange}
	}

	var lastErr error
	for _, ex := range exchanges {
		if err := ctx.Err(); err != nil {
			return Quote{}, err
		}
		q, err := r.provider.GetQuote(ctx, bare+"."+ex)
		if err == nil && q.HasPrice() {
			q.Symbol = bare
			q.Exchange = ex
			return q, nil
		}
		if err != nil && !errors.Is(err, ErrSymbolNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return Quote{}, fmt.Errorf("%w: %s (last error: %v)", ErrSymbolNotFound, bare, lastErr)
	}
	return Quote{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, bare)
}
