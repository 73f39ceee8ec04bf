package ticker

import (
	"math/rand/v2"
	"time"
)

const (
	syntheticMinPrice   = 1000.0
	syntheticPriceSpan  = 1000.0
	syntheticPriceNoise = 0.01 // full width, i.e. ±0.5%
	syntheticChangeSpan = 2.0  // full width, i.e. ±1%
)

// Synthesizer produces placeholder quotes when the quote source has nothing.
// Only the refresh loop goroutine uses it.
type Synthesizer struct {
	rng *rand.Rand
}

func NewSynthesizer(seed uint64) *Synthesizer {
	return &Synthesizer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Quote perturbs base by at most ±0.5% and picks a change in [-1%, +1%].
// A non-positive base draws a fresh price from [1000, 2000).
func (s *Synthesizer) Quote(symbol string, base float64, at time.Time) Quote {
	if base <= 0 {
		base = syntheticMinPrice + s.rng.Float64()*syntheticPriceSpan
	}
	price := base * (1 + (s.rng.Float64()-0.5)*syntheticPriceNoise)
	change := (s.rng.Float64() - 0.5) * syntheticChangeSpan
	return Quote{
		Symbol:    symbol,
		Price:     price,
		ChangePct: change,
		Synthetic: true,
		UpdatedAt: at,
	}
}
