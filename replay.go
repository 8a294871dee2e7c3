package hportfolio

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/hportfolio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Point is the value of the portfolio on a given day.
type Point struct {
	On       date.Date
	Value    Money
	Invested Money    // cash deposited so far
	Missing  []string // tickers whose price could not be resolved, not part of Value
}

// Complete reports whether every ticker held that day had a price.
func (p Point) Complete() bool { return len(p.Missing) == 0 }

// ProfitAndLoss returns Value - Invested.
func (p Point) ProfitAndLoss() Money { return p.Value.Sub(p.Invested) }

// ProfitAndLossPercent returns the gain relative to the cash invested.
func (p Point) ProfitAndLossPercent() Percent {
	if !p.Invested.IsPositive() {
		return NotAPercent
	}
	return percentOf(p.Value.Ratio(p.Invested).Sub(decimal.NewFromInt(1)))
}

// Option configures an Engine.
type Option func(*Engine)

// WithFee sets the flat fee charged on each quantity change. Defaults to 1.
func WithFee(fee decimal.Decimal) Option { return func(e *Engine) { e.fee = fee } }

// WithCash sets the ticker used for uninvested cash. Defaults to DefaultCash.
func WithCash(ticker string) Option { return func(e *Engine) { e.cash = ticker } }

// WithClock sets the function returning the current day.
func WithClock(today func() date.Date) Option { return func(e *Engine) { e.today = today } }

// WithStart overrides the first replayed day, which defaults to the journal inception.
func WithStart(start date.Date) Option { return func(e *Engine) { e.start = start } }

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// Engine rebuilds the daily value of a portfolio and the cost basis of its
// tickers from a Journal.
//
// Only one replay runs at a time. Readers see the results of the last
// completed replay.
type Engine struct {
	fee   decimal.Decimal
	cash  string
	today func() date.Date
	start date.Date
	log   *slog.Logger

	cache *PriceCache
	group singleflight.Group

	mu      sync.RWMutex
	journal *Journal
	tickers *Tickers
	series  []Point
}

// NewEngine returns an engine over journal, fetching prices with fetcher.
func NewEngine(journal *Journal, fetcher PriceFetcher, opts ...Option) *Engine {
	e := &Engine{
		fee:     decimal.NewFromInt(1),
		cash:    DefaultCash,
		today:   date.Today,
		log:     slog.Default(),
		journal: journal,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = NewPriceCache(fetcher, journal.Currency, e.cash)
	e.cache.SetLogger(e.log)
	e.tickers = NewTickers(M(e.fee, journal.Currency), e.log)
	return e
}

// Cache returns the engine's price cache.
func (e *Engine) Cache() *PriceCache {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cache
}

// Cash returns the cash ticker.
func (e *Engine) Cash() string { return e.cash }

// Journal returns the current journal.
func (e *Engine) Journal() *Journal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.journal
}

// SetJournal replaces the journal. Results are stale until the next replay.
func (e *Engine) SetJournal(j *Journal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if j.Currency != e.journal.Currency {
		// the ledger records are denominated in the journal currency.
		e.tickers = NewTickers(M(e.fee, j.Currency), e.log)
		e.cache = NewPriceCache(e.cache.fetcher, j.Currency, e.cash)
		e.cache.SetLogger(e.log)
	}
	e.journal = j
}

// startDate is the first replayed day. Callers hold e.mu.
func (e *Engine) startDate() date.Date {
	if !e.start.IsZero() {
		return e.start
	}
	if first := e.journal.Inception(); !first.IsZero() {
		return first
	}
	return e.today()
}

// Replay rebuilds the whole history from the journal start to today.
func (e *Engine) Replay(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.replay(ctx)
}

// replay runs one full pass. Callers hold e.mu for writing.
func (e *Engine) replay(ctx context.Context) error {
	log := e.log.With("pass", uuid.NewString())
	j := e.journal
	today, start := e.today(), e.startDate()
	e.cache.SetRange(start, e.today)

	// Fetch everything the journal ever held before touching the ledger, so
	// that a fetch failure leaves the previous results in place.
	if err := e.cache.Ensure(ctx, j.Tickers(e.cash), false); err != nil {
		return err
	}

	log.Info("replaying", "from", start, "to", today)
	e.tickers.ResetAll()

	rng := date.NewRange(start, today)
	series := make([]Point, 0, rng.Len())
	active := make(Composition)
	for d := range rng.Days() {
		event := false
		if d == today {
			active, event = j.Latest, true
		} else if c, ok := j.Snapshots[d]; ok {
			active, event = c, true
		}

		if err := e.cache.Ensure(ctx, active.Tickers(e.cash), false); err != nil {
			return fmt.Errorf("replaying %s: %w", d, err)
		}

		pt := Point{On: d, Value: M(0, j.Currency), Invested: investedAsOf(j, d)}
		for _, ticker := range slices.Sorted(maps.Keys(active)) {
			qty := active[ticker]
			price, ok := e.cache.PriceOn(ticker, d)
			if event && ticker != e.cash {
				if !ok {
					log.Warn("quantity change without price", "ticker", ticker, "date", d)
				}
				e.tickers.Lookup(ticker).Apply(qty, price)
			}
			if !ok {
				pt.Missing = append(pt.Missing, ticker)
				continue
			}
			pt.Value = pt.Value.Add(price.Mul(qty))
		}
		series = append(series, pt)
	}

	for _, ticker := range j.Latest.Tickers(e.cash) {
		if cost, ok := j.ForcedCostBasis[ticker]; ok {
			e.tickers.Lookup(ticker).Cost = cost
		}
	}

	for t := range e.tickers.All() {
		t.Value = M(0, j.Currency)
		if t.Quantity.IsZero() {
			continue
		}
		if price, ok := e.cache.LastPrice(t.Name); ok {
			t.Value = price.Mul(t.Quantity)
		}
		if t.Quantity.IsPositive() {
			log.Info("holding", "ticker", t.Name, "quantity", t.Quantity, "cost", t.Cost, "value", t.Value,
				"pnl", t.ProfitAndLoss(), "pnl%", t.ProfitAndLossPercent())
		}
	}

	e.series = series
	log.Info("replayed", "days", len(series), "tickers", e.tickers.Len())
	return nil
}

// Series returns the daily value of the portfolio computed by the last replay.
func (e *Engine) Series() []Point {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.series)
}

// Ticker returns a copy of the ledger record of name.
func (e *Engine) Ticker(name string) (Ticker, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tickers.Get(name)
	if !ok {
		return Ticker{}, false
	}
	return *t, true
}

// Tickers returns a copy of every ledger record, sorted by name.
func (e *Engine) Tickers() []Ticker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	res := make([]Ticker, 0, e.tickers.Len())
	for t := range e.tickers.All() {
		res = append(res, *t)
	}
	return res
}
