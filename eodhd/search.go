package eodhd

import (
	"context"
	"net/url"
	"slices"

	"github.com/etnz/portfolios/date"
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
	MIC               string    `json:"-"` // Populated by Search, not from API directly.
}

// Ticker returns the ticker to use in a ledger for this result.
func (r SearchResult) Ticker() string {
	if r.Exchange == "US" {
		return r.Code
	}
	if r.Exchange == "INDX" {
		return "^" + r.Code
	}
	return r.Code + "." + r.Exchange
}

// Search searches for securities matching term.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	var results []SearchResult
	if err := jwget(ctx, c.http, c.endpoint("/search/"+url.PathEscape(term), nil), &results); err != nil {
		return nil, err
	}
	// Search results reference an exchange code that could match multiple MIC (only for the US apparently).
	mic2Exchange, err := c.fetchMicToExchangeCode(ctx)
	if err != nil {
		return nil, err
	}
	exchange2mic := make(map[string][]string)
	for k, v := range mic2Exchange {
		exchange2mic[v] = append(exchange2mic[v], k)
	}

	newResults := make([]SearchResult, 0, len(results))
	for _, result := range results {
		mics := exchange2mic[result.Exchange]
		if len(mics) == 0 {
			newResults = append(newResults, result)
			continue
		}
		slices.Sort(mics)
		for _, mic := range mics {
			r := result
			r.MIC = mic
			newResults = append(newResults, r)
		}
	}
	return newResults, nil
}
