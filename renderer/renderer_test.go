package renderer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// USD is a helper for test to create usd money from const
func USD(v float64) hportfolio.Money { return hportfolio.M(v, "USD") }

// replayed returns an engine replayed on 2023-03-22 for a small AAPL portfolio.
func replayed(t *testing.T) *hportfolio.Engine {
	t.Helper()
	day := date.MustParse
	j := hportfolio.NewJournal("USD")
	j.Deposit(day("2023-03-14"), USD(1000))
	j.Snapshot(day("2023-03-14"), hportfolio.Composition{"AAPL": hportfolio.Q(2)})
	j.Snapshot(day("2023-03-20"), hportfolio.Composition{"AAPL": hportfolio.Q(5)})
	j.SetLatest(day("2023-03-20"), hportfolio.Composition{"AAPL": hportfolio.Q(5), hportfolio.DefaultCash: hportfolio.Q(10)})

	prices := make(hportfolio.PriceTable)
	for on, v := range map[string]float64{
		"2023-03-14": 150, "2023-03-15": 152, "2023-03-16": 154, "2023-03-17": 156,
		"2023-03-20": 160, "2023-03-21": 165, "2023-03-22": 170,
	} {
		prices.Set("AAPL", day(on), USD(v))
	}

	today := day("2023-03-22")
	e := hportfolio.NewEngine(j, &hportfolio.StaticFetcher{Table: prices},
		hportfolio.WithClock(func() date.Date { return today }),
		hportfolio.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, e.Replay(context.Background()))
	return e
}

func TestSummaryMarkdown(t *testing.T) {
	s := NewSummary(replayed(t), date.New(2023, 3, 22))
	assert.Empty(t, s.Missing)

	got := SummaryMarkdown(s)
	for _, want := range []string{
		"# Portfolio Summary on 2023-03-22",
		"$1,000.00",
		"**$860.00**",
		"-$140.00",
		"-14.00%",
		"AAPL",
		"$156.40", // unit cost
		"+$68.00",
		"+8.70%",
		"+$25.00",
		"+3.03%",
		"LIQUIDITY",
		"**Total**",
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "Prices unavailable")
}

func TestSummaryMarkdownMissing(t *testing.T) {
	s := &Summary{
		On:         date.New(2024, 1, 2),
		Invested:   USD(100),
		Value:      USD(0),
		PnL:        USD(-100),
		PnLPercent: hportfolio.NotAPercent,
		Totals:     hportfolio.SumHoldings("USD", nil),
		Missing:    []string{"NOPE"},
	}
	got := SummaryMarkdown(s)
	assert.Contains(t, got, "Prices unavailable")
	assert.Contains(t, got, "NOPE")
	assert.Contains(t, got, "n/a")
}

func TestHistoryMarkdown(t *testing.T) {
	points := []hportfolio.Point{
		{On: date.New(2023, 3, 14), Value: USD(300), Invested: USD(1000)},
		{On: date.New(2023, 3, 15), Value: USD(304), Invested: USD(1000), Missing: []string{"NOPE"}},
		{On: date.New(2023, 3, 16), Value: USD(1100), Invested: USD(1000)},
	}

	got := HistoryMarkdown(points, date.NewRange(date.New(2023, 3, 15), date.New(2023, 3, 16)))
	assert.Contains(t, got, "# History 2023-03-15..2023-03-16")
	assert.NotContains(t, got, "2023-03-14")
	assert.Contains(t, got, "$304.00 *")
	assert.Contains(t, got, "-69.60%")
	assert.Contains(t, got, "+$100.00")
	assert.Contains(t, got, "+10.00%")
	assert.Contains(t, got, "unavailable on that day: NOPE")

	got = HistoryMarkdown(points, date.NewRange(date.New(2023, 3, 16), date.New(2023, 3, 16)))
	assert.NotContains(t, got, "unavailable")
}

func TestHeadline(t *testing.T) {
	got := Headline(NewSummary(replayed(t), date.New(2023, 3, 22)))
	assert.Contains(t, got, "AAPL(5): $170.00 (+3.03%)")
	assert.Contains(t, got, "Total: $860.00")
	assert.Contains(t, got, "P&L: -$140.00 (-14.00%)")
	assert.NotContains(t, got, "LIQUIDITY")
	assert.Equal(t, 2, strings.Count(got, "\n"))
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		p    hportfolio.Percent
		want lipgloss.TerminalColor
	}{
		{1.5, lipgloss.Color("#0ec43e")},
		{-0.01, lipgloss.Color("#de0700")},
		{0, lipgloss.NoColor{}},
		{hportfolio.NotAPercent, lipgloss.NoColor{}},
	}
	for _, tt := range tests {
		if got := styleFor(tt.p).GetForeground(); got != tt.want {
			t.Errorf("styleFor(%v).GetForeground() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestHTML(t *testing.T) {
	got, err := HTML("a & b", "# Title\n\n| A | B |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, got, "<title>a &amp; b</title>")
	assert.Contains(t, got, "<h1>Title</h1>")
	assert.Contains(t, got, "<table>")
	assert.Contains(t, got, "<td>1</td>")
}
