package portfolios

import (
	"slices"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// Point is the portfolio valuation on one day.
type Point struct {
	Date      date.Date
	Values    []Money // market value per ticker, aligned with Timeseries.Tickers
	Cash      Money
	Total     Money // cash plus every market value
	Deposited Money // cumulative payments in minus payments out
	// Growth is Total / Deposited, valid only when Deposited is not zero.
	Growth      float64
	GrowthValid bool
}

// Timeseries is the daily valuation of a portfolio.
type Timeseries struct {
	Currency string
	Tickers  []string
	Points   []Point
}

// running is a cumulative sum over dated amounts, advanced day by day.
type running struct {
	dates  []date.Date
	values []decimal.Decimal
	next   int
	sum    decimal.Decimal
}

func (r *running) add(on date.Date, v decimal.Decimal) {
	r.dates = append(r.dates, on)
	r.values = append(r.values, v)
}

// sort orders the entries by date, keeping the insertion order of same-day
// entries.
func (r *running) sort() {
	idx := make([]int, len(r.dates))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return r.dates[a].Compare(r.dates[b]) })
	dates, values := make([]date.Date, len(idx)), make([]decimal.Decimal, len(idx))
	for i, j := range idx {
		dates[i], values[i] = r.dates[j], r.values[j]
	}
	r.dates, r.values = dates, values
}

// advance adds every entry dated on or before day and returns the sum.
func (r *running) advance(day date.Date) decimal.Decimal {
	for r.next < len(r.dates) && !r.dates[r.next].After(day) {
		r.sum = r.sum.Add(r.values[r.next])
		r.next++
	}
	return r.sum
}

// Inception returns the earliest transaction or payment date, zero for an
// empty portfolio.
func (p *Portfolio) Inception() date.Date {
	var first date.Date
	for _, tx := range p.log {
		first = date.Min(first, tx.When())
	}
	for _, pay := range p.cash.payments {
		first = date.Min(first, pay.Date)
	}
	return first
}

// Timeseries returns the daily valuation from inception to today.
//
// Each archived ticker contributes its last known close times its cumulative
// held quantity, both carried forward over days without data. Before its
// first close a ticker is worth zero.
func (p *Portfolio) Timeseries() *Timeseries {
	ts := &Timeseries{Currency: p.currency, Tickers: p.Archived()}
	from := p.Inception()
	if from.IsZero() || from.After(p.today) {
		return ts
	}

	held := make([]running, len(ts.Tickers))
	pos := make(map[string]int, len(ts.Tickers))
	for i, t := range ts.Tickers {
		pos[t] = i
	}
	for _, tx := range p.log {
		if i, ok := pos[tx.Symbol()]; ok && (tx.What() == KindBuy || tx.What() == KindSell) {
			held[i].add(tx.When(), signedUnits(tx).Decimal())
		}
	}
	for i := range held {
		held[i].sort()
	}

	var cash, deposited running
	for _, w := range p.cash.wallet {
		cash.add(w.Date, w.Change.Decimal())
	}
	for _, pay := range p.cash.payments {
		deposited.add(pay.Date, pay.In.Decimal().Sub(pay.Out.Decimal()))
	}
	cash.sort()
	deposited.sort()

	for day := range date.Days(from, p.today) {
		pt := Point{Date: day, Values: make([]Money, len(ts.Tickers))}
		total := cash.advance(day)
		pt.Cash = p.money(total)
		for i, t := range ts.Tickers {
			qty := held[i].advance(day)
			value := decimal.Zero
			if price, err := p.securities[t].PriceAt(day); err == nil {
				value = price.Mul(qty)
			}
			pt.Values[i] = p.money(value)
			total = total.Add(value)
		}
		pt.Total = p.money(total)
		pt.Deposited = p.money(deposited.advance(day))
		if !pt.Deposited.IsZero() {
			pt.Growth = pt.Total.Ratio(pt.Deposited)
			pt.GrowthValid = true
		}
		ts.Points = append(ts.Points, pt)
	}
	return ts
}

// Last returns the most recent point, false for an empty series.
func (ts *Timeseries) Last() (Point, bool) {
	if len(ts.Points) == 0 {
		return Point{}, false
	}
	return ts.Points[len(ts.Points)-1], true
}

// Sample returns a series keeping only the last point of each period.
func (ts *Timeseries) Sample(period date.Period) *Timeseries {
	res := &Timeseries{Currency: ts.Currency, Tickers: ts.Tickers}
	for i, pt := range ts.Points {
		if i+1 < len(ts.Points) && ts.Points[i+1].Date.StartOf(period) == pt.Date.StartOf(period) {
			continue
		}
		res.Points = append(res.Points, pt)
	}
	return res
}

// YearPerformance is the change of a portfolio over a calendar year.
type YearPerformance struct {
	Year int
	// Growth is 100 × (last growth − first growth) over the year's points.
	Growth      float64
	GrowthValid bool
	// Return is the change of Total − Deposited over the year.
	Return Money
}

// Performance returns the per-year performance of the series.
//
// This is an approximation: it compares the first and the last point of each
// year and ignores the timing of contributions within the year. It is not a
// time-weighted return.
func (ts *Timeseries) Performance() []YearPerformance {
	var res []YearPerformance
	for i := 0; i < len(ts.Points); {
		year := ts.Points[i].Date.Year()
		j := i
		for j < len(ts.Points) && ts.Points[j].Date.Year() == year {
			j++
		}
		points := ts.Points[i:j]
		first, last := points[0], points[len(points)-1]
		perf := YearPerformance{
			Year:   year,
			Return: last.Total.Sub(last.Deposited).Sub(first.Total.Sub(first.Deposited)),
		}
		if first.GrowthValid && last.GrowthValid {
			perf.Growth = 100 * (last.Growth - first.Growth)
			perf.GrowthValid = true
		}
		res = append(res, perf)
		i = j
	}
	return res
}

// Performance returns the per-year performance of the portfolio.
func (p *Portfolio) Performance() []YearPerformance { return p.Timeseries().Performance() }

// ReturnPoint holds the daily simple returns of one day.
type ReturnPoint struct {
	Date    date.Date
	Total   float64   // return of the total portfolio value
	Tickers []float64 // return of each close, aligned with Returns.Tickers
}

// Returns holds the daily simple returns of a portfolio and of its active
// securities.
type Returns struct {
	Tickers []string
	Points  []ReturnPoint
}

// simpleReturn returns cur / prev − 1, zero when prev is zero.
func simpleReturn(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return cur/prev - 1
}

// Returns computes the daily simple returns of the total value and of each
// active ticker's close. The first day has zero returns.
func (p *Portfolio) Returns() *Returns {
	ts := p.Timeseries()
	res := &Returns{Tickers: p.Active()}
	prev := make([]float64, len(res.Tickers))
	var prevTotal float64
	for n, pt := range ts.Points {
		rp := ReturnPoint{Date: pt.Date, Tickers: make([]float64, len(res.Tickers))}
		total := pt.Total.Float()
		if n > 0 {
			rp.Total = simpleReturn(prevTotal, total)
		}
		prevTotal = total
		for i, t := range res.Tickers {
			var close float64
			if price, err := p.securities[t].PriceAt(pt.Date); err == nil {
				close = price.InexactFloat64()
			}
			if n > 0 {
				rp.Tickers[i] = simpleReturn(prev[i], close)
			}
			prev[i] = close
		}
		res.Points = append(res.Points, rp)
	}
	return res
}
