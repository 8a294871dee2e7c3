// Package yahoo fetches daily closing prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when the chart payload has no usable series.
var ErrNoData = errors.New("no chart data")

// Client is a hportfolio.PriceFetcher backed by the Yahoo chart API.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Currency string
	// Parallel bounds the number of concurrent ticker requests.
	Parallel int
}

// New returns a Client using the daily disk cache in cacheDir.
func New(currency, cacheDir string) *Client {
	return &Client{
		BaseURL:  DefaultBaseURL,
		HTTP:     hportfolio.NewDailyCachingClient(cacheDir),
		Currency: currency,
		Parallel: 4,
	}
}

// FetchPrices implements hportfolio.PriceFetcher. The call fails as a whole
// when any ticker cannot be fetched.
func (c *Client) FetchPrices(ctx context.Context, tickers []string, rng date.Range) (hportfolio.PriceTable, error) {
	table := make(hportfolio.PriceTable)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Parallel, 1))
	for _, ticker := range tickers {
		g.Go(func() error {
			closes, err := c.fetchCloses(ctx, ticker, rng)
			if err != nil {
				return fmt.Errorf("yahoo %q: %w", ticker, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for day, px := range closes {
				table.Set(ticker, day, hportfolio.M(px, c.Currency))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

func (c *Client) chartURL(ticker string, rng date.Range) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("events", "history")
	q.Set("period1", fmt.Sprint(rng.From.Unix()))
	// period2 is exclusive.
	q.Set("period2", fmt.Sprint(rng.To.Add(1).Unix()))
	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", base, url.PathEscape(ticker), q.Encode())
}

// fetchCloses returns the daily closes of ticker within rng.
func (c *Client) fetchCloses(ctx context.Context, ticker string, rng date.Range) (map[date.Date]decimal.Decimal, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	var payload any
	if err := hportfolio.GetJSON(ctx, client, c.chartURL(ticker, rng), &payload); err != nil {
		return nil, err
	}
	return parseChart(payload, rng)
}

// parseChart extracts the daily closes from a chart payload.
//
// Timestamps are shifted by the exchange gmtoffset so that each bar lands on
// its exchange-local trading day. Null closes (halted days) are skipped.
func parseChart(payload any, rng date.Range) (map[date.Date]decimal.Decimal, error) {
	if desc, err := jsonpath.Get("$.chart.error.description", payload); err == nil {
		if s, ok := desc.(string); ok && s != "" {
			return nil, errors.New(s)
		}
	}

	raw, err := jsonpath.Get("$.chart.result[0].timestamp", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	timestamps, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: timestamp is %T", ErrNoData, raw)
	}

	raw, err = jsonpath.Get("$.chart.result[0].indicators.quote[0].close", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	closes, ok := raw.([]any)
	if !ok || len(closes) != len(timestamps) {
		return nil, fmt.Errorf("%w: close series does not match timestamps", ErrNoData)
	}

	var offset float64
	if raw, err := jsonpath.Get("$.chart.result[0].meta.gmtoffset", payload); err == nil {
		offset, _ = raw.(float64)
	}

	result := make(map[date.Date]decimal.Decimal, len(timestamps))
	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		if !ok {
			continue
		}
		px, ok := closes[i].(float64)
		if !ok {
			continue
		}
		day := date.Of(time.Unix(int64(sec+offset), 0).UTC())
		if !rng.Contains(day) {
			continue
		}
		result[day] = decimal.NewFromFloat(px).Round(4)
	}
	return result, nil
}
