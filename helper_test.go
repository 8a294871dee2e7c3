package hportfolio

import (
	"io"
	"log/slog"

	"github.com/etnz/hportfolio/date"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// quiet is a logger that discards everything.
var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// day is a shortcut for date.MustParse.
func day(s string) date.Date { return date.MustParse(s) }

// clock returns a fixed today.
func clock(s string) func() date.Date {
	d := day(s)
	return func() date.Date { return d }
}

// aaplJournal is the journal of the reference scenario: 1000 deposited,
// 2 AAPL bought on 2023-03-14, raised to 5 on 2023-03-20.
func aaplJournal() *Journal {
	j := NewJournal("USD")
	j.Deposit(day("2023-03-14"), USD(1000))
	j.Snapshot(day("2023-03-14"), Composition{"AAPL": Q(2)})
	j.Snapshot(day("2023-03-20"), Composition{"AAPL": Q(5)})
	j.SetLatest(day("2023-03-20"), Composition{"AAPL": Q(5), DefaultCash: Q(10)})
	return j
}

// aaplPrices are AAPL closes around the scenario, none on the 18-19 weekend.
func aaplPrices() PriceTable {
	t := make(PriceTable)
	t.Set("AAPL", day("2023-03-14"), USD(150))
	t.Set("AAPL", day("2023-03-15"), USD(152))
	t.Set("AAPL", day("2023-03-16"), USD(154))
	t.Set("AAPL", day("2023-03-17"), USD(156))
	t.Set("AAPL", day("2023-03-20"), USD(160))
	t.Set("AAPL", day("2023-03-21"), USD(165))
	t.Set("AAPL", day("2023-03-22"), USD(170))
	return t
}
