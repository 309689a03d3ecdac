package portfolios

import (
	"slices"

	"github.com/etnz/portfolios/date"
)

// tradeStats sums the trades of one ticker.
type tradeStats struct {
	bought, sold       Quantity
	invested, devested Money
}

// Net returns the quantity held.
func (s *tradeStats) Net() Quantity { return s.bought.Sub(s.sold) }

// TradeValue returns the net amount spent, purchases minus sales.
func (s *tradeStats) TradeValue() Money { return s.invested.Sub(s.devested) }

// trades sums the log per ticker, in order of first trade.
func (p *Portfolio) trades() (map[string]*tradeStats, []string) {
	stats := make(map[string]*tradeStats)
	var order []string
	for _, tx := range p.log {
		if tx.What() != KindBuy && tx.What() != KindSell {
			continue
		}
		s, ok := stats[tx.Symbol()]
		if !ok {
			s = &tradeStats{invested: M(0, p.currency), devested: M(0, p.currency)}
			stats[tx.Symbol()] = s
			order = append(order, tx.Symbol())
		}
		if tx.What() == KindBuy {
			s.bought = s.bought.Add(tx.Units())
			s.invested = s.invested.Add(tx.TradeValue())
		} else {
			s.sold = s.sold.Add(tx.Units())
			s.devested = s.devested.Add(tx.TradeValue())
		}
	}
	return stats, order
}

// lastPrice returns the last close of ticker, zero when unknown.
func (p *Portfolio) lastPrice(ticker string) Money {
	if s, ok := p.securities[ticker]; ok {
		if price, ok := s.LastPrice(); ok {
			return p.money(price)
		}
	}
	return M(0, p.currency)
}

func (p *Portfolio) description(ticker string) string {
	if s, ok := p.securities[ticker]; ok {
		return s.Name()
	}
	return ticker
}

// Holding is a line of the overview: a position currently held.
type Holding struct {
	Ticker      string
	Description string
	Quantity    Quantity
	// unit costs under each cost basis view
	AvgPriceAll  Money
	AvgPriceFIFO Money
	AvgPriceLIFO Money
	// AvgPrice is TradeValue / Quantity
	AvgPrice     Money
	LastPrice    Money
	TradeValue   Money // purchases minus sales
	CurrentValue Money
	Dividends    Money
	// Return is CurrentValue − TradeValue + Dividends
	Return Money
	// AvgPriceToValue is TradeValue / CurrentValue, zero when nothing is held.
	AvgPriceToValue float64
}

// Overview is a snapshot of the portfolio's current holdings.
type Overview struct {
	Date           date.Date
	Currency       string
	Holdings       []Holding
	SecurityValue  Money
	Cash           Money
	PortfolioValue Money
	// Return is PortfolioValue minus net contributions.
	Return Money
	// ReturnRate is Return / net contributions, zero without contributions.
	ReturnRate float64
	Warnings   []Warning
}

// Overview returns the active positions valued at their last price.
func (p *Portfolio) Overview() *Overview {
	o := &Overview{Date: p.today, Currency: p.currency, SecurityValue: M(0, p.currency)}
	stats, order := p.trades()
	eps := Q(p.zeroEpsilon)
	for _, ticker := range order {
		if net := stats[ticker].Net(); net.LessThan(eps.Neg()) {
			o.Warnings = append(o.Warnings, Warning{Date: p.today, Kind: NegativePosition, Ticker: ticker, Amount: net.Decimal()})
		}
	}

	for _, ticker := range p.active.order {
		s, ok := stats[ticker]
		if !ok || !s.Net().GreaterThan(eps) {
			continue
		}
		h := Holding{
			Ticker:       ticker,
			Description:  p.description(ticker),
			Quantity:     s.Net(),
			AvgPriceAll:  p.lots.AverageCost(ticker),
			AvgPriceFIFO: p.lots.FIFOCost(ticker),
			AvgPriceLIFO: p.lots.LIFOCost(ticker),
			LastPrice:    p.lastPrice(ticker),
			TradeValue:   s.TradeValue(),
			Dividends:    p.cash.DividendsOf(ticker),
		}
		h.AvgPrice = h.TradeValue.Div(h.Quantity)
		h.CurrentValue = h.LastPrice.Mul(h.Quantity)
		h.Return = h.CurrentValue.Sub(h.TradeValue).Add(h.Dividends)
		h.AvgPriceToValue = h.TradeValue.Ratio(h.CurrentValue)
		o.Holdings = append(o.Holdings, h)
		o.SecurityValue = o.SecurityValue.Add(h.CurrentValue)
	}

	o.Cash = p.cash.Balance(p.today)
	o.PortfolioValue = o.SecurityValue.Add(o.Cash)
	in, out := p.cash.Contributions(p.today)
	o.Return = o.PortfolioValue.Sub(in).Add(out)
	o.ReturnRate = o.Return.Ratio(in.Sub(out))
	return o
}

// ClosedPosition is a line of the archive overview: a position fully sold.
type ClosedPosition struct {
	Ticker      string
	Description string
	AvgPriceAll Money
	LastPrice   Money
	TradeValue  Money
	Dividends   Money
	// Return is −TradeValue + Dividends
	Return Money
}

// ArchiveOverview returns the positions that were held and are now closed.
func (p *Portfolio) ArchiveOverview() []ClosedPosition {
	stats, _ := p.trades()
	eps := Q(p.zeroEpsilon)
	var res []ClosedPosition
	for _, ticker := range p.archive.order {
		s, ok := stats[ticker]
		if !ok || s.Net().Abs().GreaterThan(eps) {
			continue
		}
		c := ClosedPosition{
			Ticker:      ticker,
			Description: p.description(ticker),
			AvgPriceAll: p.lots.AverageCost(ticker),
			LastPrice:   p.lastPrice(ticker),
			TradeValue:  s.TradeValue(),
			Dividends:   p.cash.DividendsOf(ticker),
		}
		c.Return = c.Dividends.Sub(c.TradeValue)
		res = append(res, c)
	}
	return res
}

// Position summarizes every trade ever made on a ticker.
type Position struct {
	Ticker       string
	Description  string
	Quantity     Quantity
	Bought       Quantity
	Sold         Quantity
	Invested     Money
	Devested     Money
	LastPrice    Money
	CurrentValue Money
	Dividends    Money
	// Return is CurrentValue − (Invested − Devested) + Dividends
	Return Money
	// PercentGrowth is 100 × Return / Invested, valid when Invested is not zero.
	PercentGrowth float64
	GrowthValid   bool
}

// Positions returns a line per traded ticker, sorted by current value then
// invested amount, largest first.
func (p *Portfolio) Positions() []Position {
	stats, order := p.trades()
	res := make([]Position, 0, len(order))
	for _, ticker := range order {
		s := stats[ticker]
		pos := Position{
			Ticker:      ticker,
			Description: p.description(ticker),
			Quantity:    s.Net(),
			Bought:      s.bought,
			Sold:        s.sold,
			Invested:    s.invested,
			Devested:    s.devested,
			LastPrice:   p.lastPrice(ticker),
			Dividends:   p.cash.DividendsOf(ticker),
		}
		pos.CurrentValue = pos.LastPrice.Mul(pos.Quantity)
		pos.Return = pos.CurrentValue.Sub(s.TradeValue()).Add(pos.Dividends)
		if !pos.Invested.IsZero() {
			pos.PercentGrowth = 100 * pos.Return.Ratio(pos.Invested)
			pos.GrowthValid = true
		}
		res = append(res, pos)
	}
	slices.SortStableFunc(res, func(a, b Position) int {
		if c := b.CurrentValue.Decimal().Cmp(a.CurrentValue.Decimal()); c != 0 {
			return c
		}
		return b.Invested.Decimal().Cmp(a.Invested.Decimal())
	})
	return res
}

// CostBasis is the cost of a held position under one cost basis method.
type CostBasis struct {
	Ticker   string
	Method   CostBasisMethod
	Quantity Quantity
	UnitCost Money
	Cost     Money // Quantity × UnitCost
	Value    Money // at the last price
	Gain     Money // unrealized, Value − Cost
}

// CostBases returns the cost of every held position under each of methods.
func (p *Portfolio) CostBases(methods ...CostBasisMethod) []CostBasis {
	var res []CostBasis
	for _, h := range p.Overview().Holdings {
		for _, m := range methods {
			c := CostBasis{
				Ticker:   h.Ticker,
				Method:   m,
				Quantity: h.Quantity,
				UnitCost: p.lots.Cost(h.Ticker, m),
				Value:    h.CurrentValue,
			}
			c.Cost = c.UnitCost.Mul(c.Quantity)
			c.Gain = c.Value.Sub(c.Cost)
			res = append(res, c)
		}
	}
	return res
}
