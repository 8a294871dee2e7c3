package eodhd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/etnz/hportfolio"
	"github.com/etnz/hportfolio/date"
)

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string    `json:"Code"`
	Exchange          string    `json:"Exchange"`
	Name              string    `json:"Name"`
	Type              string    `json:"Type"`
	Country           string    `json:"Country"`
	Currency          string    `json:"Currency"`
	ISIN              string    `json:"ISIN"`
	PreviousClose     float64   `json:"previousClose"`
	PreviousCloseDate date.Date `json:"previousCloseDate"`
}

// Symbol returns the "CODE.EXCHANGE" symbol usable as a journal ticker.
func (r SearchResult) Symbol() string { return r.Code + "." + r.Exchange }

// Search searches for securities matching term.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	if c.APIKey == "" {
		return nil, ErrMissingKey
	}
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.APIKey)
	addr := fmt.Sprintf("%s/search/%s?%s", c.base(), url.PathEscape(term), q.Encode())

	var results []SearchResult
	if err := hportfolio.GetJSON(ctx, c.client(), addr, &results); err != nil {
		return nil, err
	}
	return results, nil
}
