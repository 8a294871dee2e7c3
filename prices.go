package hportfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/hportfolio/date"
)

// ErrFetchFailure is returned when the remote price source could not deliver prices.
var ErrFetchFailure = errors.New("price fetch failure")

// PriceTable holds daily closing prices indexed by ticker.
type PriceTable map[string]*date.History[Money]

// Set records a price, creating the ticker history if needed.
func (t PriceTable) Set(ticker string, on date.Date, price Money) {
	h, ok := t[ticker]
	if !ok {
		h = new(date.History[Money])
		t[ticker] = h
	}
	h.Append(on, price)
}

// PriceFetcher retrieves daily closing prices from a remote source.
type PriceFetcher interface {
	// FetchPrices returns the closing prices of every ticker over rng.
	// It either succeeds for the whole set, or fails.
	FetchPrices(ctx context.Context, tickers []string, rng date.Range) (PriceTable, error)
}

// PriceFetcherFunc adapts a function to the PriceFetcher interface.
type PriceFetcherFunc func(ctx context.Context, tickers []string, rng date.Range) (PriceTable, error)

func (f PriceFetcherFunc) FetchPrices(ctx context.Context, tickers []string, rng date.Range) (PriceTable, error) {
	return f(ctx, tickers, rng)
}

// fallbackDays is how far back a missing day is looked up, to cross weekends and holidays.
const fallbackDays = 4

// PriceCache holds the historical closing prices of every ticker ever requested.
//
// Each refresh fetches the whole requested set again and replaces the table
// wholesale: the table is always the result of a single fetch.
type PriceCache struct {
	fetcher PriceFetcher
	cur     string
	cash    string
	from    date.Date
	today   func() date.Date
	log     *slog.Logger

	fetching sync.Mutex // serializes fetches

	mu        sync.RWMutex
	requested map[string]struct{}
	fetched   map[string]struct{} // tickers covered by the current table
	covered   date.Date           // first day covered by the current table
	table     PriceTable
}

// NewPriceCache returns an empty cache fetching from fetcher.
func NewPriceCache(fetcher PriceFetcher, currency, cash string) *PriceCache {
	return &PriceCache{
		fetcher:   fetcher,
		cur:       currency,
		cash:      cash,
		today:     date.Today,
		log:       slog.Default(),
		requested: make(map[string]struct{}),
		fetched:   make(map[string]struct{}),
		table:     make(PriceTable),
	}
}

// SetRange sets the first day to fetch and the clock. Fetches go up to tomorrow.
func (c *PriceCache) SetRange(from date.Date, today func() date.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.from = from
	if today != nil {
		c.today = today
	}
}

// SetLogger sets the logger used to report unresolvable prices.
func (c *PriceCache) SetLogger(l *slog.Logger) { c.log = l }

// Tickers returns every ticker ever requested, sorted.
func (c *PriceCache) Tickers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.requested))
}

// Ensure makes sure the cache covers tickers.
//
// If any of them was never fetched, if the range now starts before the
// cached table, or if force is true, the whole set of tickers ever requested
// is fetched again. A failed fetch leaves the cache untouched.
func (c *PriceCache) Ensure(ctx context.Context, tickers []string, force bool) error {
	c.fetching.Lock()
	defer c.fetching.Unlock()

	c.mu.Lock()
	refresh := force
	for _, t := range tickers {
		if t == c.cash {
			continue
		}
		c.requested[t] = struct{}{}
		if _, ok := c.fetched[t]; !ok {
			refresh = true
		}
	}
	if len(c.fetched) > 0 && c.from.Before(c.covered) {
		c.log.Debug("range starts before the cached prices", "from", c.from, "covered", c.covered)
		refresh = true
	}
	all := slices.Sorted(maps.Keys(c.requested))
	rng := date.NewRange(c.from, c.today().Add(1))
	c.mu.Unlock()

	if !refresh || len(all) == 0 {
		return nil
	}

	c.log.Debug("fetching prices", "tickers", len(all), "range", rng)
	fresh, err := c.fetcher.FetchPrices(ctx, all, rng)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}

	table := make(PriceTable, len(fresh))
	for ticker, h := range fresh {
		for on, price := range h.Values() {
			table.Set(ticker, on, price.In(c.cur))
		}
	}
	fetched := make(map[string]struct{}, len(all))
	for _, t := range all {
		fetched[t] = struct{}{}
		if _, ok := table[t]; !ok {
			c.log.Warn("no price returned", "ticker", t)
		}
	}

	c.mu.Lock()
	c.table, c.fetched, c.covered = table, fetched, rng.From
	c.mu.Unlock()
	return nil
}

// PriceOn returns the closing price of ticker on day.
//
// When day is not a trading day, the closest previous price within four
// days is used instead. The boolean is false when no price could be found.
func (c *PriceCache) PriceOn(ticker string, day date.Date) (Money, bool) {
	if ticker == c.cash {
		return M(1, c.cur), true
	}
	c.mu.RLock()
	h, ok := c.table[ticker]
	c.mu.RUnlock()
	if ok {
		for i := 0; i <= fallbackDays; i++ {
			if price, ok := h.Get(day.Add(-i)); ok {
				return price, true
			}
		}
	}
	c.log.Error("cannot get price", "ticker", ticker, "date", day)
	return M(0, c.cur), false
}

// LastPrice returns the most recent cached price of ticker.
func (c *PriceCache) LastPrice(ticker string) (Money, bool) {
	if ticker == c.cash {
		return M(1, c.cur), true
	}
	c.mu.RLock()
	h, ok := c.table[ticker]
	c.mu.RUnlock()
	if ok && h.Len() > 0 {
		_, price := h.Latest()
		return price, true
	}
	c.log.Error("cannot get last price", "ticker", ticker)
	return M(0, c.cur), false
}
