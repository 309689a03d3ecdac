package portfolios

import (
	"testing"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day parses a date or panics.
func day(s string) date.Date { return date.MustParse(s) }

// px is a helper for an optional price.
func px(v float64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromFloat(v)) }

// num is a helper for a decimal.
func num(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// flat returns a close of price for every day of [from, to].
func flat(from, to string, price float64) PriceData {
	closes := make(map[date.Date]float64)
	for d := range date.Days(day(from), day(to)) {
		closes[d] = price
	}
	return Closes(closes)
}

// testProvider serves TST at 50 and BBB at 20 during January 2020.
func testProvider() MemoryProvider {
	tst := flat("2020-01-02", "2020-01-31", 50)
	tst.Name = "Test Corp"
	return MemoryProvider{
		"TST":   tst,
		"BBB":   flat("2020-01-02", "2020-01-31", 20),
		"^GSPC": flat("2020-01-01", "2020-02-10", 3000),
	}
}

// newTestPortfolio returns a USD portfolio valued on 2020-02-10.
func newTestPortfolio(t *testing.T, opts ...Option) *Portfolio {
	t.Helper()
	opts = append([]Option{WithToday(day("2020-02-10"))}, opts...)
	return New("test", "USD", testProvider(), opts...)
}

// row builds a generic row.
func row(on, kind, ticker string, price decimal.NullDecimal, qty float64) Row {
	r := Row{Transaction: kind, Ticker: ticker, Currency: "USD", Price: price, Quantity: num(qty)}
	if on != "" {
		r.Date = day(on)
	}
	return r
}

// assertMoney fails when got is not want, comparing decimal amounts.
func assertMoney(t *testing.T, want float64, got Money, msg string) {
	t.Helper()
	if !got.Decimal().Equal(num(want)) {
		t.Errorf("%s = %s, want %v", msg, got.Decimal(), want)
	}
}
