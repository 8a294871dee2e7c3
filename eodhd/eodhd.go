// Package eodhd implements a hportfolio.PriceFetcher on top of the EOD
// Historical Data API (https://eodhd.com).
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the public EODHD API endpoint.
const DefaultBaseURL = "https://eodhd.com/api"

// DefaultExchange is appended to tickers that carry no exchange suffix.
const DefaultExchange = "US"

// ErrMissingKey is returned when the client has no API key.
var ErrMissingKey = errors.New("missing EODHD API key")

// Client fetches daily closes from EODHD.
type Client struct {
	APIKey   string
	BaseURL  string
	HTTP     *http.Client
	Currency string
	// Exchange is the EODHD exchange code used for bare tickers.
	Exchange string
	// Parallel bounds the number of concurrent ticker requests.
	Parallel int
}

// New returns a Client using the daily disk cache in cacheDir.
func New(apiKey, currency, cacheDir string) *Client {
	return &Client{
		APIKey:   apiKey,
		BaseURL:  DefaultBaseURL,
		HTTP:     hportfolio.NewDailyCachingClient(cacheDir),
		Currency: currency,
		Exchange: DefaultExchange,
		Parallel: 4,
	}
}

// Symbol returns the EODHD symbol for a journal ticker.
//
// EODHD symbols are "SYMBOL.EXCHANGE", tickers that already carry a suffix
// are used as is.
func (c *Client) Symbol(ticker string) string {
	if strings.Contains(ticker, ".") {
		return ticker
	}
	exchange := c.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}
	return ticker + "." + exchange
}

func (c *Client) base() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(c.BaseURL, "/")
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// FetchPrices implements hportfolio.PriceFetcher. Prices are stored under the
// journal ticker, not the EODHD symbol.
func (c *Client) FetchPrices(ctx context.Context, tickers []string, rng date.Range) (hportfolio.PriceTable, error) {
	if c.APIKey == "" {
		return nil, ErrMissingKey
	}
	table := make(hportfolio.PriceTable)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Parallel, 1))
	for _, ticker := range tickers {
		g.Go(func() error {
			bars, err := c.fetchPrices(ctx, c.Symbol(ticker), rng)
			if err != nil {
				return fmt.Errorf("eodhd %q: %w", ticker, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, bar := range bars {
				table.Set(ticker, bar.Date, hportfolio.M(bar.Close, c.Currency))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}
