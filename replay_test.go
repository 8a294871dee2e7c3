package hportfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/hportfolio/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockFetcher is a mock implementation of PriceFetcher for testing
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPrices(ctx context.Context, tickers []string, rng date.Range) (PriceTable, error) {
	args := m.Called(ctx, tickers, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(PriceTable), args.Error(1)
}

func newTestEngine(j *Journal, f PriceFetcher, opts ...Option) *Engine {
	opts = append([]Option{WithClock(clock("2023-03-22")), WithLogger(quiet)}, opts...)
	return NewEngine(j, f, opts...)
}

func TestReplayScenario(t *testing.T) {
	e := newTestEngine(aaplJournal(), &StaticFetcher{Table: aaplPrices()})
	require.NoError(t, e.Replay(context.Background()))

	aapl, ok := e.Ticker("AAPL")
	require.True(t, ok)
	assert.True(t, aapl.Quantity.Equal(Q(5)), "quantity = %v", aapl.Quantity)
	assert.True(t, aapl.Cost.Equal(USD(782)), "cost = %v", aapl.Cost)
	assert.True(t, aapl.Value.Equal(USD(850)), "value = %v", aapl.Value)
	assert.True(t, aapl.ProfitAndLoss().Equal(USD(68)), "pnl = %v", aapl.ProfitAndLoss())

	_, ok = e.Ticker(DefaultCash)
	assert.False(t, ok, "the cash ticker must not have a cost basis record")

	type row struct {
		On    string
		Value string
	}
	var got []row
	for _, p := range e.Series() {
		assert.True(t, p.Complete(), "point %s misses %v", p.On, p.Missing)
		assert.True(t, p.Invested.Equal(USD(1000)), "invested on %s = %v", p.On, p.Invested)
		got = append(got, row{p.On.String(), p.Value.Decimal().String()})
	}
	want := []row{
		{"2023-03-14", "300"},
		{"2023-03-15", "304"},
		{"2023-03-16", "308"},
		{"2023-03-17", "312"},
		{"2023-03-18", "312"}, // weekend falls back to friday
		{"2023-03-19", "312"},
		{"2023-03-20", "800"},
		{"2023-03-21", "825"},
		{"2023-03-22", "860"}, // latest composition holds 10 in cash
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Series() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	e := newTestEngine(aaplJournal(), &StaticFetcher{Table: aaplPrices()})
	ctx := context.Background()
	require.NoError(t, e.Replay(ctx))
	first, firstSeries := e.Tickers(), e.Series()

	require.NoError(t, e.Replay(ctx))
	second, secondSeries := e.Tickers(), e.Series()

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.True(t, first[i].Quantity.Equal(second[i].Quantity), "%s quantity drifted", first[i].Name)
		assert.True(t, first[i].Cost.Equal(second[i].Cost), "%s cost drifted: %v then %v", first[i].Name, first[i].Cost, second[i].Cost)
	}
	assert.Equal(t, len(firstSeries), len(secondSeries))
}

func TestReplayForcedCostBasis(t *testing.T) {
	j := aaplJournal()
	j.ForceCostBasis("AAPL", USD(700))
	j.ForceCostBasis(DefaultCash, USD(5))
	j.ForceCostBasis("TSLA", USD(5)) // not held anymore
	e := newTestEngine(j, &StaticFetcher{Table: aaplPrices()})
	require.NoError(t, e.Replay(context.Background()))

	aapl, _ := e.Ticker("AAPL")
	assert.True(t, aapl.Cost.Equal(USD(700)), "cost = %v", aapl.Cost)
	_, ok := e.Ticker(DefaultCash)
	assert.False(t, ok)
	_, ok = e.Ticker("TSLA")
	assert.False(t, ok)
}

func TestReplayClosedPosition(t *testing.T) {
	j := aaplJournal()
	j.Snapshot(day("2023-03-21"), Composition{"AAPL": Q(0)})
	j.SetLatest(day("2023-03-21"), Composition{"AAPL": Q(0), DefaultCash: Q(830)})
	e := newTestEngine(j, &StaticFetcher{Table: aaplPrices()})
	require.NoError(t, e.Replay(context.Background()))

	aapl, ok := e.Ticker("AAPL")
	require.True(t, ok, "closed positions keep their record")
	assert.True(t, aapl.Quantity.IsZero())
	// 782 paid, 5 × 165 received, 1 fee.
	assert.True(t, aapl.Cost.Equal(USD(-42)), "cost = %v", aapl.Cost)
	assert.True(t, aapl.Value.IsZero())
	holdings := e.Holdings()
	require.Len(t, holdings, 1, "only cash is held")
	assert.True(t, holdings[0].Cash)
}

func TestReplayUnresolvedPrice(t *testing.T) {
	j := aaplJournal()
	j.Snapshot(day("2023-03-16"), Composition{"AAPL": Q(2), "NOPE": Q(3)})
	e := newTestEngine(j, &StaticFetcher{Table: aaplPrices()})
	require.NoError(t, e.Replay(context.Background()))

	for _, p := range e.Series() {
		switch p.On {
		case day("2023-03-16"), day("2023-03-17"), day("2023-03-18"), day("2023-03-19"):
			assert.Equal(t, []string{"NOPE"}, p.Missing, "on %s", p.On)
		default:
			assert.True(t, p.Complete(), "on %s", p.On)
		}
	}
	nope, ok := e.Ticker("NOPE")
	require.True(t, ok)
	// bought at an unknown price, only the fee is known.
	assert.True(t, nope.Cost.Equal(USD(1)), "cost = %v", nope.Cost)
}

func TestReplayFetchFailure(t *testing.T) {
	f := new(mockFetcher)
	rng := date.NewRange(day("2023-03-14"), day("2023-03-23"))
	f.On("FetchPrices", mock.Anything, []string{"AAPL"}, rng).Return(aaplPrices(), nil).Once()

	e := newTestEngine(aaplJournal(), f)
	ctx := context.Background()
	require.NoError(t, e.Refresh(ctx, false))
	before := e.Series()

	f.On("FetchPrices", mock.Anything, []string{"AAPL"}, rng).Return(nil, errors.New("timeout")).Once()
	err := e.Refresh(ctx, true)
	assert.ErrorIs(t, err, ErrFetchFailure)

	assert.Equal(t, len(before), len(e.Series()), "previous results are kept")
	aapl, _ := e.Ticker("AAPL")
	assert.True(t, aapl.Cost.Equal(USD(782)))
	price, ok := e.Cache().LastPrice("AAPL")
	assert.True(t, ok)
	assert.True(t, price.Equal(USD(170)))
	f.AssertExpectations(t)
}

func TestReloadAsync(t *testing.T) {
	release := make(chan struct{})
	var calls int
	f := PriceFetcherFunc(func(ctx context.Context, tickers []string, rng date.Range) (PriceTable, error) {
		calls++
		<-release
		return aaplPrices(), nil
	})
	e := newTestEngine(aaplJournal(), f)
	ctx := context.Background()

	first := e.Reload(ctx, true)
	second := e.Reload(ctx, true) // joins the first one

	done := make(chan error, 1)
	require.NoError(t, first.Then(func(err error) { done <- err }))
	refused := false
	err := first.Then(func(error) { refused = true })
	assert.ErrorIs(t, err, ErrContinuationRegistered, "a second continuation is refused")

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, second.Wait(ctx))
	assert.Equal(t, 1, calls, "concurrent reloads share one fetch")

	aapl, _ := e.Ticker("AAPL")
	assert.True(t, aapl.Cost.Equal(USD(782)))

	// a continuation registered after the end runs immediately.
	ran := false
	require.NoError(t, second.Then(func(err error) { ran = err == nil }))
	assert.True(t, ran)
	assert.False(t, refused, "a refused continuation never runs")
}

func TestEngineAggregates(t *testing.T) {
	e := newTestEngine(aaplJournal(), &StaticFetcher{Table: aaplPrices()}, WithFee(decimal.NewFromInt(2)))
	require.NoError(t, e.Refresh(context.Background(), false))

	assert.True(t, e.TotalInvested().Equal(USD(1000)))
	assert.True(t, e.CurrentValue().Equal(USD(860)), "current value = %v", e.CurrentValue())
	assert.True(t, e.ProfitAndLoss().Equal(USD(-140)))
	assert.True(t, e.ProfitAndLossPercent().Equal(-14), "pnl%% = %v", e.ProfitAndLossPercent())

	holdings := e.Holdings()
	require.Len(t, holdings, 2)
	aapl, cash := holdings[0], holdings[1]
	assert.Equal(t, "AAPL", aapl.Ticker)
	assert.True(t, aapl.Cost.Equal(USD(784)), "fee of 2 twice: %v", aapl.Cost)
	assert.True(t, aapl.Price.Equal(USD(170)))
	assert.True(t, aapl.DayChange.Equal(USD(25)), "5 × (170-165): %v", aapl.DayChange)
	assert.True(t, aapl.DayChangeKnown)
	assert.True(t, aapl.UnitCost.Equal(M(decimal.RequireFromString("156.8"), "USD")), "unit cost = %v", aapl.UnitCost)
	assert.True(t, cash.Cash)
	assert.False(t, cash.PnLPercent.Valid())

	totals := e.Totals()
	assert.True(t, totals.Value.Equal(USD(850)))
	assert.True(t, totals.PnL.Equal(USD(66)))
	assert.True(t, totals.DayChange.Equal(USD(25)))
	assert.Empty(t, totals.Missing)
}

func TestHoldingsWithUnresolvedPrices(t *testing.T) {
	j := NewJournal("USD")
	j.Deposit(day("2023-03-22"), USD(600))
	j.SetLatest(day("2023-03-22"), Composition{"NEW": Q(10), "GONE": Q(1)})
	prices := make(PriceTable)
	// a new listing: no close before today.
	prices.Set("NEW", day("2023-03-22"), USD(50))

	e := newTestEngine(j, &StaticFetcher{Table: prices})
	require.NoError(t, e.Refresh(context.Background(), false))

	holdings := e.Holdings()
	require.Len(t, holdings, 2)
	gone, listed := holdings[0], holdings[1]

	assert.Equal(t, "NEW", listed.Ticker)
	assert.True(t, listed.Priced)
	assert.True(t, listed.Value.Equal(USD(500)), "value = %v", listed.Value)
	assert.False(t, listed.DayChangeKnown)
	assert.True(t, listed.DayChange.IsZero(), "day change = %v, want no change without yesterday's price", listed.DayChange)
	assert.False(t, listed.DayChangePercent.Valid())

	assert.Equal(t, "GONE", gone.Ticker)
	assert.False(t, gone.Priced)
	assert.False(t, gone.DayChangeKnown)
	assert.True(t, gone.DayChange.IsZero())

	totals := e.Totals()
	assert.True(t, totals.Value.Equal(USD(500)), "total value = %v", totals.Value)
	assert.True(t, totals.DayChange.IsZero(), "total day change = %v", totals.DayChange)
	assert.ElementsMatch(t, []string{"GONE", "NEW"}, totals.Missing)
}
