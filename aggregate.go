package hportfolio

import (
	"github.com/etnz/hportfolio/date"
	"github.com/shopspring/decimal"
)

// investedAsOf sums the deposits made on or before on.
func investedAsOf(j *Journal, on date.Date) Money {
	total := M(0, j.Currency)
	for day, amount := range j.Deposits.Values() {
		if day.After(on) {
			break
		}
		total = total.Add(amount)
	}
	return total
}

// TotalInvested returns the sum of all deposits.
func (e *Engine) TotalInvested() Money {
	j := e.Journal()
	total := M(0, j.Currency)
	for _, amount := range j.Deposits.Values() {
		total = total.Add(amount)
	}
	return total
}

// InvestedAsOf returns the cash deposited on or before on.
func (e *Engine) InvestedAsOf(on date.Date) Money { return investedAsOf(e.Journal(), on) }

// CurrentValue returns the value of the latest composition at the last known prices.
func (e *Engine) CurrentValue() Money {
	j, cache := e.Journal(), e.Cache()
	total := M(0, j.Currency)
	for ticker, qty := range j.Latest {
		price, ok := cache.LastPrice(ticker)
		if !ok {
			continue
		}
		total = total.Add(price.Mul(qty))
	}
	return total
}

// ProfitAndLoss returns the current value minus the cash invested.
func (e *Engine) ProfitAndLoss() Money { return e.CurrentValue().Sub(e.TotalInvested()) }

// ProfitAndLossPercent returns the current value relative to the cash
// invested, or NotAPercent when nothing was invested.
func (e *Engine) ProfitAndLossPercent() Percent {
	invested := e.TotalInvested()
	if invested.IsZero() {
		e.log.Error("nothing invested, no profit and loss percentage")
		return NotAPercent
	}
	return percentOf(e.CurrentValue().Ratio(invested).Sub(decimal.NewFromInt(1)))
}

// Holding is the state of one ticker held today.
type Holding struct {
	Ticker   string
	Cash     bool
	Quantity Quantity
	Price    Money // today's price
	Value    Money
	Cost     Money
	UnitCost Money
	PnL      Money
	// PnLPercent is NotAPercent for cash and for a non positive cost basis.
	PnLPercent Percent
	// Priced is false when today's price could not be resolved.
	Priced bool
	// DayChange is zero and DayChangePercent NotAPercent unless both
	// today's and yesterday's prices are resolved, see DayChangeKnown.
	DayChange        Money
	DayChangePercent Percent
	DayChangeKnown   bool
}

// Totals sums up the non cash holdings.
type Totals struct {
	Value      Money
	Cost       Money
	PnL        Money
	PnLPercent Percent
	DayChange  Money
	// Missing lists the tickers left out of some sum for lack of a price.
	Missing []string
}

// Holdings returns the tickers of the latest composition with a positive
// quantity, sorted by ticker with cash last.
func (e *Engine) Holdings() []Holding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	j := e.journal
	today := e.today()
	zero := M(0, j.Currency)

	holdings := make([]Holding, 0, len(j.Latest))
	for _, ticker := range append(j.Latest.Tickers(e.cash), e.cash) {
		qty, ok := j.Latest[ticker]
		if !ok || !qty.IsPositive() {
			continue
		}
		price, priced := e.cache.PriceOn(ticker, today)
		before, known := e.cache.PriceOn(ticker, today.Add(-1))
		h := Holding{
			Ticker:           ticker,
			Cash:             ticker == e.cash,
			Quantity:         qty,
			Price:            price,
			Value:            price.Mul(qty),
			Cost:             zero,
			UnitCost:         zero,
			PnL:              zero,
			PnLPercent:       NotAPercent,
			Priced:           priced,
			DayChange:        zero,
			DayChangePercent: NotAPercent,
			DayChangeKnown:   priced && known,
		}
		if h.DayChangeKnown {
			h.DayChange = price.Sub(before).Mul(qty)
			if before.IsPositive() {
				h.DayChangePercent = percentOf(price.Sub(before).Ratio(before))
			}
		}
		if !h.Cash {
			if t, ok := e.tickers.Get(ticker); ok {
				h.Cost = t.Cost
				h.PnL = t.ProfitAndLoss()
				h.PnLPercent = t.ProfitAndLossPercent()
				if unit, ok := t.UnitCost(); ok {
					h.UnitCost = unit
				}
			}
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// Totals sums the non cash holdings.
func (e *Engine) Totals() Totals {
	return SumHoldings(e.Journal().Currency, e.Holdings())
}

// SumHoldings sums the non cash holdings.
//
// A holding without today's price is left out of every sum, one without
// yesterday's price only out of the day change. Both are listed in Missing.
func SumHoldings(currency string, holdings []Holding) Totals {
	zero := M(0, currency)
	t := Totals{Value: zero, Cost: zero, PnL: zero, DayChange: zero, PnLPercent: NotAPercent}
	for _, h := range holdings {
		if h.Cash {
			continue
		}
		if !h.Priced {
			t.Missing = append(t.Missing, h.Ticker)
			continue
		}
		t.Value = t.Value.Add(h.Value)
		t.Cost = t.Cost.Add(h.Cost)
		t.PnL = t.PnL.Add(h.PnL)
		if !h.DayChangeKnown {
			t.Missing = append(t.Missing, h.Ticker)
			continue
		}
		t.DayChange = t.DayChange.Add(h.DayChange)
	}
	if t.Cost.IsPositive() {
		t.PnLPercent = percentOf(t.PnL.Ratio(t.Cost))
	}
	return t
}
