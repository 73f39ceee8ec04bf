package market

import (
	"context"
	"fmt"
)

type MultiProvider struct {
	providers []Provider
}

func NewMultiProvider(providers ...Provider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

func (m *MultiProvider) Name() string {
	return "multi"
}

// GetQuote asks each provider in turn and returns the first quote carrying a price.
func (m *MultiProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	if len(m.providers) == 0 {
		return Quote{}, fmt.Errorf("no market providers configured")
	}
	var lastErr error
	for _, p := range m.providers {
		q, err := p.GetQuote(ctx, symbol)
		if err == nil && q.HasPrice() {
			return q, nil
		}
		if err == nil {
			err = fmt.Errorf("%s: no price for %s", p.Name(), symbol)
		}
		lastErr = err
	}
	return Quote{}, lastErr
}
