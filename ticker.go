package hportfolio

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
)

// Ticker is the running cost-basis record of a single ticker.
type Ticker struct {
	Name     string
	Quantity Quantity
	Cost     Money
	Value    Money

	fee Money
	log *slog.Logger
}

// Apply moves the position to quantity at the given unit price.
//
// Any actual change adds delta × price to the cost basis, plus the flat
// fee once. It reports whether the quantity changed.
func (t *Ticker) Apply(quantity Quantity, price Money) bool {
	delta := quantity.Sub(t.Quantity)
	changed := !delta.IsZero()
	if changed {
		t.Cost = t.Cost.Add(price.Mul(delta))
		t.Cost = t.Cost.Add(t.fee)
		t.Quantity = t.Quantity.Add(delta)
	}
	t.Value = price.Mul(t.Quantity)
	return changed
}

// ProfitAndLoss returns Value - Cost.
func (t *Ticker) ProfitAndLoss() Money { return t.Value.Sub(t.Cost) }

// ProfitAndLossPercent returns the profit and loss relative to the cost
// basis, or NotAPercent if the cost basis is not positive.
func (t *Ticker) ProfitAndLossPercent() Percent {
	if !t.Cost.IsPositive() {
		t.log.Error("invalid cost basis", "ticker", t.Name, "cost", t.Cost.Decimal())
		return NotAPercent
	}
	return percentOf(t.ProfitAndLoss().Ratio(t.Cost))
}

// UnitCost returns the average cost of one unit, false when nothing is held.
func (t *Ticker) UnitCost() (Money, bool) {
	if t.Quantity.IsZero() {
		return Money{}, false
	}
	return t.Cost.Div(t.Quantity), true
}

func (t *Ticker) reset() {
	cur := t.fee.Currency()
	t.Quantity = Quantity{}
	t.Cost = M(0, cur)
	t.Value = M(0, cur)
}

// Tickers is the registry of Ticker records: exactly one per name.
type Tickers struct {
	fee   Money
	log   *slog.Logger
	index map[string]*Ticker
}

// NewTickers returns an empty registry charging fee for each quantity change.
func NewTickers(fee Money, log *slog.Logger) *Tickers {
	if log == nil {
		log = slog.Default()
	}
	return &Tickers{fee: fee, log: log, index: make(map[string]*Ticker)}
}

// Create registers a new record. If name already exists a warning is
// logged and the existing record is returned unchanged.
func (r *Tickers) Create(name string) *Ticker {
	if t, ok := r.index[name]; ok {
		r.log.Warn("redefining ticker", "ticker", name)
		return t
	}
	t := &Ticker{Name: name, fee: r.fee, log: r.log}
	t.reset()
	r.index[name] = t
	return t
}

// Lookup returns the record of name, creating it if needed.
func (r *Tickers) Lookup(name string) *Ticker {
	if t, ok := r.index[name]; ok {
		return t
	}
	return r.Create(name)
}

// Get returns the record of name if it exists.
func (r *Tickers) Get(name string) (*Ticker, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Len returns the number of records.
func (r *Tickers) Len() int { return len(r.index) }

// All iterates over the records sorted by name.
func (r *Tickers) All() iter.Seq[*Ticker] {
	return func(yield func(*Ticker) bool) {
		for _, name := range slices.Sorted(maps.Keys(r.index)) {
			if !yield(r.index[name]) {
				return
			}
		}
	}
}

// ResetAll zeroes quantity, cost and value of every record.
func (r *Tickers) ResetAll() {
	r.log.Warn("resetting all tickers", "tickers", len(r.index))
	for _, t := range r.index {
		t.reset()
	}
}
