package portfolios

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/etnz/portfolios/date"
)

// DefaultBenchmark is the broad-market index used when none is given.
const DefaultBenchmark = "^GSPC"

// BenchmarkPoint is a close of the benchmark and its log return.
type BenchmarkPoint struct {
	Date      date.Date
	Close     float64
	LogReturn float64 // ln(close / previous close), zero on the first point
}

// BenchmarkSeries is a market index over the portfolio's date range.
type BenchmarkSeries struct {
	Ticker string
	Name   string
	Points []BenchmarkPoint
}

// benchmarkTicker maps aliases to the index ticker.
func benchmarkTicker(ticker string) string {
	switch strings.ToLower(strings.TrimSpace(ticker)) {
	case "", "sp500":
		return DefaultBenchmark
	}
	return ticker
}

// Benchmark loads ticker (DefaultBenchmark for "" or "sp500") from inception
// to today and returns its log returns.
func (p *Portfolio) Benchmark(ctx context.Context, ticker string) (*BenchmarkSeries, error) {
	ticker = benchmarkTicker(ticker)
	from := p.Inception()
	if from.IsZero() {
		return nil, fmt.Errorf("benchmark %s: empty portfolio: %w", ticker, ErrNoData)
	}
	data, err := p.provider.Load(ctx, ticker, from, p.today)
	if err != nil {
		return nil, fmt.Errorf("benchmark %s: %w", ticker, err)
	}
	s := NewSecurity(ticker, data)
	res := &BenchmarkSeries{Ticker: ticker, Name: s.Name()}
	var prev float64
	for day, close := range s.History().Values() {
		pt := BenchmarkPoint{Date: day, Close: close}
		if len(res.Points) > 0 && prev > 0 && close > 0 {
			pt.LogReturn = math.Log(close / prev)
		}
		prev = close
		res.Points = append(res.Points, pt)
	}
	if len(res.Points) == 0 {
		return nil, fmt.Errorf("benchmark %s from %s: %w", ticker, from, ErrNoData)
	}
	return res, nil
}

// Cumulative returns the growth of 1 invested in the benchmark on the first
// point, for each point.
func (b *BenchmarkSeries) Cumulative() []float64 {
	res := make([]float64, len(b.Points))
	var sum float64
	for i, pt := range b.Points {
		sum += pt.LogReturn
		res[i] = math.Exp(sum)
	}
	return res
}
