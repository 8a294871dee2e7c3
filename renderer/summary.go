package renderer

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
	md "github.com/nao1215/markdown"
)

// Summary is a snapshot of the portfolio as of its On date.
type Summary struct {
	On         date.Date
	Invested   hportfolio.Money
	Value      hportfolio.Money
	PnL        hportfolio.Money
	PnLPercent hportfolio.Percent
	Holdings   []hportfolio.Holding
	Totals     hportfolio.Totals
	// Missing lists the tickers without a resolved price today or yesterday.
	Missing []string
}

// NewSummary collects the summary of a replayed engine.
func NewSummary(e *hportfolio.Engine, on date.Date) *Summary {
	s := &Summary{
		On:         on,
		Invested:   e.TotalInvested(),
		Value:      e.CurrentValue(),
		PnL:        e.ProfitAndLoss(),
		PnLPercent: e.ProfitAndLossPercent(),
		Holdings:   e.Holdings(),
		Totals:     e.Totals(),
	}
	if series := e.Series(); len(series) > 0 {
		s.Missing = slices.Clone(series[len(series)-1].Missing)
	}
	for _, ticker := range s.Totals.Missing {
		if !slices.Contains(s.Missing, ticker) {
			s.Missing = append(s.Missing, ticker)
		}
	}
	return s
}

// SummaryMarkdown renders the summary as a markdown document.
func SummaryMarkdown(s *Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio Summary on %s", s.On))

	doc.Table(md.TableSet{
		Header: []string{"Invested", "Value", "P&L", "P&L %"},
		Rows: [][]string{{
			s.Invested.String(),
			md.Bold(s.Value.String()),
			s.PnL.SignedString(),
			s.PnLPercent.SignedString(),
		}},
	})

	doc.H2("Holdings")
	table := md.TableSet{
		Header: []string{"Ticker", "Quantity", "Price", "Value", "Cost", "Unit Cost", "P&L", "P&L %", "Day", "Day %"},
		Rows:   [][]string{},
	}
	for _, h := range s.Holdings {
		if h.Cash {
			table.Rows = append(table.Rows, []string{
				h.Ticker, h.Quantity.String(), "", h.Value.String(), "", "", "", "", "", "",
			})
			continue
		}
		price, value, day := "n/a", "n/a", "n/a"
		if h.Priced {
			price, value = h.Price.String(), h.Value.String()
		}
		if h.DayChangeKnown {
			day = h.DayChange.SignedString()
		}
		table.Rows = append(table.Rows, []string{
			h.Ticker,
			h.Quantity.String(),
			price,
			value,
			h.Cost.String(),
			h.UnitCost.String(),
			h.PnL.SignedString(),
			h.PnLPercent.SignedString(),
			day,
			h.DayChangePercent.SignedString(),
		})
	}
	table.Rows = append(table.Rows, []string{
		md.Bold("Total"),
		"",
		"",
		md.Bold(s.Totals.Value.String()),
		s.Totals.Cost.String(),
		"",
		md.Bold(s.Totals.PnL.SignedString()),
		s.Totals.PnLPercent.SignedString(),
		s.Totals.DayChange.SignedString(),
		"",
	})
	doc.Table(table)

	if len(s.Missing) > 0 {
		doc.PlainText("Prices unavailable, excluded from the value:")
		doc.BulletList(s.Missing...)
	}

	return doc.String()
}
