package ticker

import (
	"encoding/json"
	"sync/atomic"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"stock-assistant/internal/market"
)

// Quote is one ticker entry as the dashboard shows it.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
	Synthetic bool      `json:"synthetic"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is an immutable symbol → quote mapping in universe order.
// It must not be modified once handed to Store.publish.
type Snapshot struct {
	Cycle     uint64
	UpdatedAt time.Time
	quotes    *orderedmap.OrderedMap[string, Quote]
}

func newSnapshot(cycle uint64, at time.Time, quotes []Quote) *Snapshot {
	m := orderedmap.New[string, Quote]()
	for _, q := range quotes {
		m.Set(q.Symbol, q)
	}
	return &Snapshot{Cycle: cycle, UpdatedAt: at, quotes: m}
}

func (s *Snapshot) Get(symbol string) (Quote, bool) {
	if s == nil || s.quotes == nil {
		return Quote{}, false
	}
	return s.quotes.Get(symbol)
}

func (s *Snapshot) Len() int {
	if s == nil || s.quotes == nil {
		return 0
	}
	return s.quotes.Len()
}

// Quotes returns the entries in universe order.
func (s *Snapshot) Quotes() []Quote {
	if s == nil || s.quotes == nil {
		return nil
	}
	out := make([]Quote, 0, s.quotes.Len())
	for pair := s.quotes.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	type wire struct {
		Cycle     uint64                                `json:"cycle"`
		UpdatedAt time.Time                             `json:"updated_at"`
		Quotes    *orderedmap.OrderedMap[string, Quote] `json:"quotes"`
	}
	if s == nil {
		return []byte("null"), nil
	}
	quotes := s.quotes
	if quotes == nil {
		quotes = orderedmap.New[string, Quote]()
	}
	return json.Marshal(wire{Cycle: s.Cycle, UpdatedAt: s.UpdatedAt, Quotes: quotes})
}

// Store holds the current snapshot and the loop's stop flag. The refresh
// loop is the only writer; readers never block it.
type Store struct {
	current atomic.Pointer[Snapshot]
	stop    atomic.Bool
}

func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	if initial != nil {
		s.current.Store(initial)
	}
	return s
}

// Load returns the latest complete snapshot, or nil before the first one.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

func (s *Store) publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Stop asks the refresh loop to exit at its next cycle boundary.
func (s *Store) Stop() {
	s.stop.Store(true)
}

func (s *Store) Stopped() bool {
	return s.stop.Load()
}

// SeedSnapshot builds the pre-first-cycle snapshot from configured seed prices.
// Symbols without a seed get a synthetic price so every configured symbol
// is present from the start.
func SeedSnapshot(symbols []string, seeds map[string]float64, at time.Time) *Snapshot {
	bareSeeds := normalizeSeeds(seeds)
	synth := NewSynthesizer(uint64(at.UnixNano()))
	quotes := make([]Quote, 0, len(symbols))
	for _, raw := range symbols {
		sym := market.BareSymbol(raw)
		if p, ok := bareSeeds[sym]; ok && p > 0 {
			quotes = append(quotes, Quote{Symbol: sym, Price: p, Synthetic: true, UpdatedAt: at})
			continue
		}
		quotes = append(quotes, synth.Quote(sym, 0, at))
	}
	return newSnapshot(0, at, quotes)
}

func normalizeSeeds(seeds map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(seeds))
	for sym, p := range seeds {
		out[market.BareSymbol(sym)] = p
	}
	return out
}
