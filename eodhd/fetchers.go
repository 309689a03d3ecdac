package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/portfolios"
	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// fetchBars returns the as-traded daily bars of sym within [from, to].
func (c *Client) fetchBars(ctx context.Context, sym string, from, to date.Date) ([]portfolios.Bar, error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json&from=2024-01-01&to=2024-02-13
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	},
	// bounds are included in the response.
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.String())
	}
	if !to.IsZero() {
		q.Set("to", to.String())
	}
	type Info struct {
		Date   date.Date       `json:"date"`
		Open   decimal.Decimal `json:"open"`
		High   decimal.Decimal `json:"high"`
		Low    decimal.Decimal `json:"low"`
		Close  decimal.Decimal `json:"close"`
		Volume json.Number     `json:"volume"`
	}
	content := make([]Info, 0)
	if err := jwget(ctx, c.http, c.endpoint("/eod/"+url.PathEscape(sym), q), &content); err != nil {
		return nil, err
	}

	bars := make([]portfolios.Bar, 0, len(content))
	for _, info := range content {
		// volume is sometimes sent as a float
		vol, err := info.Volume.Int64()
		if err != nil {
			f, _ := info.Volume.Float64()
			vol = int64(f)
		}
		bars = append(bars, portfolios.Bar{
			Date:   info.Date,
			Open:   info.Open,
			High:   info.High,
			Low:    info.Low,
			Close:  info.Close,
			Volume: vol,
		})
	}
	return bars, nil
}

// fetchSplits returns the split history of sym.
func (c *Client) fetchSplits(ctx context.Context, sym string) ([]portfolios.Split, error) {
	// [{"date":"2020-08-31","split":"4.000000/1.000000"}]
	type apiSplit struct {
		Date  date.Date `json:"date"`
		Split string    `json:"split"`
	}
	content := make([]apiSplit, 0)
	if err := jwget(ctx, c.http, c.endpoint("/splits/"+url.PathEscape(sym), nil), &content); err != nil {
		return nil, err
	}

	splits := make([]portfolios.Split, 0, len(content))
	for _, s := range content {
		ratio, err := parseSplit(s.Split)
		if err != nil {
			return nil, err
		}
		splits = append(splits, portfolios.Split{Date: s.Date, Ratio: ratio})
	}
	return splits, nil
}

// parseSplit parses "new/old" into the number of shares each share becomes.
func parseSplit(split string) (decimal.Decimal, error) {
	num, den, ok := strings.Cut(split, "/")
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid split format from API: %q", split)
	}
	n, err := decimal.NewFromString(strings.TrimSpace(num))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numerator in split %q: %w", split, err)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(den))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid denominator in split %q: %w", split, err)
	}
	if !n.IsPositive() || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid split %q: ratio must be positive", split)
	}
	return n.Div(d), nil
}

// general is the part of the fundamentals the provider uses.
type general struct {
	Name     string
	Currency string
}

// fetchGeneral reads the name and currency of sym from its fundamentals.
func (c *Client) fetchGeneral(ctx context.Context, sym string) (general, error) {
	// the fundamentals document is large, only a few fields are read.
	q := url.Values{"filter": {"General"}}
	var doc any
	if err := jwget(ctx, c.http, c.endpoint("/fundamentals/"+url.PathEscape(sym), q), &doc); err != nil {
		return general{}, err
	}
	// depending on the filter the document is the General section or contains it.
	if m, ok := doc.(map[string]any); ok {
		if _, nested := m["General"]; !nested {
			doc = map[string]any{"General": m}
		}
	}
	var g general
	var err error
	if g.Name, err = jstring(doc, "$.General.Name"); err != nil {
		return general{}, err
	}
	g.Currency, _ = jstring(doc, "$.General.CurrencyCode")
	return g, nil
}

// jstring extracts a string from a decoded json document.
func jstring(doc any, path string) (string, error) {
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return "", fmt.Errorf("error parsing %q: %w", path, err)
	}
	// jsonpath may return a list of one answer
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("error parsing %q: not a string %v", path, jval)
	}
	return s, nil
}

// fetchMicToExchangeCode returns a map of MIC to EODHD's internal exchange code.
func (c *Client) fetchMicToExchangeCode(ctx context.Context) (map[string]string, error) {
	// [
	// {
	// 	"Name": "Frankfurt Exchange",
	// 	"Code": "F",
	// 	"OperatingMIC": "XFRA",
	// 	"Country": "Germany",
	// 	"Currency": "EUR",
	// 	...
	// },
	type Info struct {
		Code         string
		OperatingMIC string // could be a comma separated list of MICs
	}
	content := make([]Info, 0)
	if err := jwget(ctx, c.http, c.endpoint("/exchanges-list/", nil), &content); err != nil {
		return nil, err
	}
	result := make(map[string]string)
	for _, info := range content {
		for _, mic := range strings.Split(info.OperatingMIC, ",") {
			if mic = strings.TrimSpace(mic); mic != "" {
				result[mic] = info.Code
			}
		}
	}
	return result, nil
}
