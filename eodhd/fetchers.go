package eodhd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
	"github.com/shopspring/decimal"
)

// This file contains functions to access the EODHD API.

// bar is one day of the end-of-day series.
type bar struct {
	Date  date.Date       `json:"date"`
	Close decimal.Decimal `json:"close"`
	// AdjustedClose also folds dividends in, which would skew the cost basis.
}

// fetchPrices returns the daily closes for a given EODHD symbol.
func (c *Client) fetchPrices(ctx context.Context, symbol string, rng date.Range) ([]bar, error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	  },
	//
	// bounds are included in the response, and time is limited to 1 year with free subscription.
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.APIKey)
	q.Set("from", rng.From.String())
	q.Set("to", rng.To.String())
	addr := fmt.Sprintf("%s/eod/%s?%s", c.base(), url.PathEscape(symbol), q.Encode())

	content := make([]bar, 0)
	if err := hportfolio.GetJSON(ctx, c.client(), addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}
