package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the daily points within rng as a markdown table.
// Points whose value misses some prices are flagged with an asterisk.
func HistoryMarkdown(points []hportfolio.Point, rng date.Range) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("History %s", rng))

	table := md.TableSet{
		Header: []string{"Date", "Value", "Invested", "P&L", "P&L %"},
		Rows:   [][]string{},
	}
	incomplete := false
	for _, p := range points {
		if !rng.Contains(p.On) {
			continue
		}
		value := p.Value.String()
		if !p.Complete() {
			value += " *"
			incomplete = true
		}
		table.Rows = append(table.Rows, []string{
			p.On.String(),
			value,
			p.Invested.String(),
			p.ProfitAndLoss().SignedString(),
			p.ProfitAndLossPercent().SignedString(),
		})
	}
	doc.Table(table)

	if incomplete {
		doc.PlainText(fmt.Sprintf("\\* some prices were unavailable on that day: %s", strings.Join(missing(points, rng), ", ")))
	}
	return doc.String()
}

// missing returns the tickers missing a price on some day of rng.
func missing(points []hportfolio.Point, rng date.Range) []string {
	seen := map[string]bool{}
	var tickers []string
	for _, p := range points {
		if !rng.Contains(p.On) {
			continue
		}
		for _, t := range p.Missing {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}
	return tickers
}
