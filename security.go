package portfolios

import (
	"fmt"
	"math"
	"slices"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// Security is the price series of a ticker.
//
// Bars are kept as traded. Every close it exposes is split-adjusted: divided
// by the cumulative ratio of the splits dated after the bar.
type Security struct {
	ticker   string
	name     string
	currency string
	bars     []Bar
	splits   []Split
	closes   date.History[decimal.Decimal] // split-adjusted

	modifiers map[date.Date]decimal.Decimal
}

// NewSecurity returns the security of ticker initialized with data.
func NewSecurity(ticker string, data PriceData) *Security {
	s := &Security{ticker: ticker}
	s.SetData(data)
	return s
}

// SetData replaces the price data and invalidates every cached value.
func (s *Security) SetData(data PriceData) {
	s.name = data.Name
	if s.name == "" {
		s.name = s.ticker
	}
	s.currency = data.Currency
	s.bars = slices.Clone(data.Bars)
	slices.SortStableFunc(s.bars, func(a, b Bar) int { return a.Date.Compare(b.Date) })
	// keep the last bar for duplicated days
	for i := len(s.bars) - 1; i > 0; i-- {
		if s.bars[i-1].Date == s.bars[i].Date {
			s.bars = slices.Delete(s.bars, i-1, i)
		}
	}
	s.splits = slices.Clone(data.Splits)
	slices.SortStableFunc(s.splits, func(a, b Split) int { return a.Date.Compare(b.Date) })
	s.modifiers = make(map[date.Date]decimal.Decimal)

	s.closes = date.History[decimal.Decimal]{}
	for _, b := range s.bars {
		s.closes.Set(b.Date, b.Close.Div(s.Modifier(b.Date)))
	}
}

func (s *Security) Ticker() string   { return s.ticker }
func (s *Security) Name() string     { return s.name }
func (s *Security) Currency() string { return s.currency }

// Bars returns the as-traded bars, oldest first.
func (s *Security) Bars() []Bar { return slices.Clone(s.bars) }

// Splits returns the splits, oldest first.
func (s *Security) Splits() []Split { return slices.Clone(s.splits) }

// Modifier returns the cumulative split ratio converting a share count on day
// into current shares. Splits effective on day are already reflected in that
// day's prices, so only the ones strictly after day count.
func (s *Security) Modifier(day date.Date) decimal.Decimal {
	if m, ok := s.modifiers[day]; ok {
		return m
	}
	m := decimal.NewFromInt(1)
	for _, sp := range s.splits {
		if sp.Date.After(day) && sp.Ratio.IsPositive() {
			m = m.Mul(sp.Ratio)
		}
	}
	s.modifiers[day] = m
	return m
}

// Adjust converts a historical quantity and unit price into current share
// terms.
func (s *Security) Adjust(day date.Date, quantity, price decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	m := s.Modifier(day)
	return quantity.Mul(m), price.Div(m)
}

// PriceAt returns the split-adjusted close on day, or the last close before
// it.
func (s *Security) PriceAt(day date.Date) (decimal.Decimal, error) {
	price, ok := s.closes.AsOf(day)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%s on %s: %w", s.ticker, day, ErrNoPrice)
	}
	return price, nil
}

// FirstDate returns the date of the first bar, zero if there is none.
func (s *Security) FirstDate() date.Date {
	if len(s.bars) == 0 {
		return date.Date{}
	}
	return s.bars[0].Date
}

// History returns the split-adjusted closes.
func (s *Security) History() *date.History[float64] {
	var h date.History[float64]
	for day, c := range s.closes.Values() {
		h.Set(day, c.InexactFloat64())
	}
	return &h
}

// LastPrice returns the last split-adjusted close, false if there is none.
func (s *Security) LastPrice() (decimal.Decimal, bool) {
	_, price, ok := s.closes.Latest()
	return price, ok
}

// Statistics over the split-adjusted closes. They return NaN when there is
// no data.

func (s *Security) floats() []float64 {
	res := make([]float64, 0, s.closes.Len())
	for _, c := range s.closes.Values() {
		res = append(res, c.InexactFloat64())
	}
	return res
}

func (s *Security) Last() float64 {
	price, ok := s.LastPrice()
	if !ok {
		return math.NaN()
	}
	return price.InexactFloat64()
}

func (s *Security) Min() float64 {
	if s.closes.Len() == 0 {
		return math.NaN()
	}
	return slices.Min(s.floats())
}

func (s *Security) Max() float64 {
	if s.closes.Len() == 0 {
		return math.NaN()
	}
	return slices.Max(s.floats())
}

func (s *Security) Mean() float64 {
	if s.closes.Len() == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range s.floats() {
		sum += v
	}
	return sum / float64(s.closes.Len())
}

func (s *Security) Median() float64 {
	n := s.closes.Len()
	if n == 0 {
		return math.NaN()
	}
	v := s.floats()
	slices.Sort(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

// Std returns the sample standard deviation.
func (s *Security) Std() float64 {
	n := s.closes.Len()
	if n < 2 {
		return math.NaN()
	}
	mean := s.Mean()
	var sum float64
	for _, v := range s.floats() {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(n-1))
}
