package hportfolio

import (
	"maps"
	"slices"

	"github.com/etnz/hportfolio/date"
)

// DefaultCash is the ticker naming uninvested cash in a composition.
const DefaultCash = "LIQUIDITY"

// DefaultCurrency is the reporting currency of a journal that does not declare one.
const DefaultCurrency = "USD"

// Composition is the content of a portfolio at a point in time: ticker to quantity.
type Composition map[string]Quantity

// Tickers returns the composition's tickers, sorted, without the cash ticker.
func (c Composition) Tickers(cash string) []string {
	tickers := make([]string, 0, len(c))
	for t := range c {
		if t != cash {
			tickers = append(tickers, t)
		}
	}
	slices.Sort(tickers)
	return tickers
}

// Journal is the sparse record a portfolio is rebuilt from.
//
// It is read-only for the engine: a reload replaces the whole Journal.
type Journal struct {
	Currency string
	// Deposits is the chronological cash deposit ledger.
	Deposits date.History[Money]
	// Snapshots are the dated compositions.
	Snapshots map[date.Date]Composition
	// Latest is the most recent composition, in force from LatestOn through today.
	Latest   Composition
	LatestOn date.Date
	// ForcedCostBasis are manual corrections applied after replay.
	ForcedCostBasis map[string]Money
}

// NewJournal returns an empty journal in the given currency.
func NewJournal(currency string) *Journal {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Journal{
		Currency:        currency,
		Snapshots:       make(map[date.Date]Composition),
		Latest:          make(Composition),
		ForcedCostBasis: make(map[string]Money),
	}
}

// Deposit records a cash deposit. Deposits on the same day add up.
func (j *Journal) Deposit(on date.Date, amount Money) *Journal {
	if prev, ok := j.Deposits.Get(on); ok {
		amount = prev.Add(amount)
	}
	j.Deposits.Append(on, amount.In(j.Currency))
	return j
}

// Snapshot records the composition on a given day.
func (j *Journal) Snapshot(on date.Date, c Composition) *Journal {
	j.Snapshots[on] = c
	return j
}

// SetLatest records the latest known composition.
func (j *Journal) SetLatest(on date.Date, c Composition) *Journal {
	j.Latest, j.LatestOn = c, on
	return j
}

// ForceCostBasis records a manual cost basis for a ticker.
func (j *Journal) ForceCostBasis(ticker string, cost Money) *Journal {
	j.ForcedCostBasis[ticker] = cost.In(j.Currency)
	return j
}

// SnapshotDates returns the snapshot dates in chronological order.
func (j *Journal) SnapshotDates() []date.Date {
	days := slices.Collect(maps.Keys(j.Snapshots))
	slices.SortFunc(days, func(a, b date.Date) int {
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})
	return days
}

// Inception returns the earliest date known to the journal, the zero Date if empty.
func (j *Journal) Inception() date.Date {
	var first date.Date
	consider := func(d date.Date) {
		if d.IsZero() {
			return
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
	}
	if day, _ := j.Deposits.First(); j.Deposits.Len() > 0 {
		consider(day)
	}
	if days := j.SnapshotDates(); len(days) > 0 {
		consider(days[0])
	}
	consider(j.LatestOn)
	return first
}

// Tickers returns every ticker ever held by the journal, sorted, without the cash ticker.
func (j *Journal) Tickers(cash string) []string {
	set := make(map[string]struct{})
	for t := range j.Latest {
		set[t] = struct{}{}
	}
	for _, c := range j.Snapshots {
		for t := range c {
			set[t] = struct{}{}
		}
	}
	delete(set, cash)
	return slices.Sorted(maps.Keys(set))
}
