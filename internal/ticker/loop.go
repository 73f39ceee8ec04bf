package ticker

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"stock-assistant/internal/market"
)

const (
	defaultInterval        = 60 * time.Second
	defaultFailureInterval = 30 * time.Second
)

type QuoteResolver interface {
	Lookup(ctx context.Context, symbol string) (market.Quote, error)
}

// Archiver receives every published snapshot. Failures are logged only.
type Archiver interface {
	ArchiveSnapshot(snap *Snapshot) error
}

type Config struct {
	Symbols         []string
	Interval        time.Duration
	FailureInterval time.Duration
	Seeds           map[string]float64
	RandSeed        uint64
}

type Loop struct {
	cfg      Config
	resolver QuoteResolver
	store    *Store
	archiver Archiver
	synth    *Synthesizer
	now      func() time.Time
}

func NewLoop(cfg Config, resolver QuoteResolver, store *Store, archiver Archiver) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.FailureInterval <= 0 {
		cfg.FailureInterval = defaultFailureInterval
	}
	if cfg.RandSeed == 0 {
		cfg.RandSeed = uint64(time.Now().UnixNano())
	}
	symbols := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		symbols = append(symbols, market.BareSymbol(s))
	}
	cfg.Symbols = symbols
	cfg.Seeds = normalizeSeeds(cfg.Seeds)
	return &Loop{
		cfg:      cfg,
		resolver: resolver,
		store:    store,
		archiver: archiver,
		synth:    NewSynthesizer(cfg.RandSeed),
		now:      time.Now,
	}
}

// Run refreshes the snapshot until the stop flag is raised or ctx ends.
// The flag is only checked between cycles.
func (l *Loop) Run(ctx context.Context) {
	for {
		if l.store.Stopped() || ctx.Err() != nil {
			hlog.Infof("ticker loop stopped")
			return
		}
		interval := l.cfg.Interval
		if err := l.RunCycle(ctx); err != nil {
			hlog.Errorf("ticker cycle error: %v", err)
			interval = l.cfg.FailureInterval
		}
		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}
}

// RunCycle polls every symbol once and publishes a complete snapshot.
// Per-symbol failures, panics included, are absorbed into synthetic quotes.
// Only a panic elsewhere in the cycle body is reported.
func (l *Loop) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	prev := l.store.Load()
	quotes := make([]Quote, 0, len(l.cfg.Symbols))
	synthetic := 0
	for _, sym := range l.cfg.Symbols {
		q := l.refreshSymbol(ctx, sym, prev)
		if q.Synthetic {
			synthetic++
		}
		quotes = append(quotes, q)
	}

	var cycle uint64 = 1
	if prev != nil {
		cycle = prev.Cycle + 1
	}
	snap := newSnapshot(cycle, l.now(), quotes)
	l.store.publish(snap)
	if synthetic > 0 {
		hlog.Warnf("ticker cycle %d: %d/%d symbols synthetic", cycle, synthetic, len(quotes))
	}

	if l.archiver != nil {
		if err := l.archiver.ArchiveSnapshot(snap); err != nil {
			hlog.Warnf("archive snapshot error: %v", err)
		}
	}
	return nil
}

func (l *Loop) refreshSymbol(ctx context.Context, sym string, prev *Snapshot) Quote {
	now := l.now()
	mq, err := l.lookup(ctx, sym)
	if err == nil {
		if pct, ok := mq.ChangePct(); ok {
			return Quote{Symbol: sym, Price: mq.Price, ChangePct: pct, UpdatedAt: now}
		}
	} else {
		hlog.Debugf("quote %s unavailable: %v", sym, err)
	}
	return l.synth.Quote(sym, l.basePrice(sym, prev), now)
}

func (l *Loop) lookup(ctx context.Context, sym string) (q market.Quote, err error) {
	if l.resolver == nil {
		return market.Quote{}, fmt.Errorf("no quote resolver")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lookup panic: %v", r)
		}
	}()
	return l.resolver.Lookup(ctx, sym)
}

func (l *Loop) basePrice(sym string, prev *Snapshot) float64 {
	if q, ok := prev.Get(sym); ok && q.Price > 0 {
		return q.Price
	}
	if p, ok := l.cfg.Seeds[sym]; ok && p > 0 {
		return p
	}
	return 0
}
