package portfolios

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// Bar is the as-traded daily price record of a security.
type Bar struct {
	Date   date.Date       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Split is a stock split: every share held before Date becomes Ratio shares.
type Split struct {
	Date  date.Date       `json:"date"`
	Ratio decimal.Decimal `json:"ratio"`
}

// PriceData is what a Provider returns for a ticker.
type PriceData struct {
	Name     string  `json:"name,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Bars     []Bar   `json:"bars"`
	Splits   []Split `json:"splits,omitempty"`
}

// clip returns a copy of d restricted to bars within [from, to]. Splits are
// kept whatever their date since they adjust every earlier price.
func (d PriceData) clip(from, to date.Date) PriceData {
	res := PriceData{Name: d.Name, Currency: d.Currency, Splits: slices.Clone(d.Splits)}
	for _, b := range d.Bars {
		if !from.IsZero() && b.Date.Before(from) {
			continue
		}
		if !to.IsZero() && b.Date.After(to) {
			continue
		}
		res.Bars = append(res.Bars, b)
	}
	return res
}

// Provider loads daily price data for a ticker.
type Provider interface {
	// Load returns the bars dated within [from, to] and every known split.
	Load(ctx context.Context, ticker string, from, to date.Date) (PriceData, error)
}

// MemoryProvider serves price data held in memory, keyed by ticker.
type MemoryProvider map[string]PriceData

// Load implements Provider.
func (m MemoryProvider) Load(ctx context.Context, ticker string, from, to date.Date) (PriceData, error) {
	if err := ctx.Err(); err != nil {
		return PriceData{}, err
	}
	d, ok := m[ticker]
	if !ok {
		return PriceData{}, fmt.Errorf("%q: %w", ticker, ErrUnknownTicker)
	}
	return d.clip(from, to), nil
}

// Closes is a convenience to build PriceData from a daily close series.
func Closes(closes map[date.Date]float64) PriceData {
	var d PriceData
	for day, c := range closes {
		v := decimal.NewFromFloat(c)
		d.Bars = append(d.Bars, Bar{Date: day, Open: v, High: v, Low: v, Close: v})
	}
	slices.SortFunc(d.Bars, func(a, b Bar) int { return a.Date.Compare(b.Date) })
	return d
}
