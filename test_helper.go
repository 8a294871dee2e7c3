package hportfolio

import (
	"context"
	"sync/atomic"

	"github.com/etnz/hportfolio/date"
)

// StaticFetcher is a PriceFetcher serving a fixed table. It is meant for
// tests and offline use.
type StaticFetcher struct {
	Table PriceTable
	Err   error
	calls atomic.Int32
}

// FetchPrices returns the prices of the requested tickers within rng.
func (f *StaticFetcher) FetchPrices(_ context.Context, tickers []string, rng date.Range) (PriceTable, error) {
	f.calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	res := make(PriceTable)
	for _, ticker := range tickers {
		h, ok := f.Table[ticker]
		if !ok {
			continue
		}
		for on, price := range h.Values() {
			if rng.Contains(on) {
				res.Set(ticker, on, price)
			}
		}
	}
	return res, nil
}

// Calls returns how many times FetchPrices was called.
func (f *StaticFetcher) Calls() int { return int(f.calls.Load()) }
