package portfolios

import (
	"slices"

	"github.com/etnz/portfolios/date"
)

// CashChange is a signed movement of the wallet.
type CashChange struct {
	Date   date.Date
	Change Money
}

// Payment is an external cash flow: money paid in or taken out.
type Payment struct {
	Date    date.Date
	In, Out Money
}

// DividendEntry is a dividend received. An empty Ticker denotes interest.
type DividendEntry struct {
	Date   date.Date
	Ticker string
	Amount Money
}

// CashLedger records the wallet, the external payments and the dividends.
//
// Balances are always summed from the full wallet.
type CashLedger struct {
	currency  string
	wallet    []CashChange
	payments  []Payment
	dividends []DividendEntry
}

// NewCashLedger returns an empty ledger in currency.
func NewCashLedger(currency string) *CashLedger {
	return &CashLedger{currency: currency}
}

func (c *CashLedger) change(on date.Date, m Money) {
	c.wallet = append(c.wallet, CashChange{Date: on, Change: m})
}

// Deposit adds amount to the wallet and to the payments in.
func (c *CashLedger) Deposit(on date.Date, amount Money) {
	c.change(on, amount)
	c.payments = append(c.payments, Payment{Date: on, In: amount, Out: M(0, c.currency)})
}

// Withdraw takes amount out of the wallet and adds it to the payments out.
func (c *CashLedger) Withdraw(on date.Date, amount Money) {
	c.change(on, amount.Neg())
	c.payments = append(c.payments, Payment{Date: on, In: M(0, c.currency), Out: amount})
}

// Dividend adds amount to the wallet and records it against ticker.
func (c *CashLedger) Dividend(on date.Date, ticker string, amount Money) {
	c.change(on, amount)
	c.dividends = append(c.dividends, DividendEntry{Date: on, Ticker: ticker, Amount: amount})
}

// Trade records the cash side of a buy (negative) or a sell (positive).
func (c *CashLedger) Trade(on date.Date, amount Money) { c.change(on, amount) }

// Balance returns the sum of the wallet changes dated on or before on.
func (c *CashLedger) Balance(on date.Date) Money {
	total := M(0, c.currency)
	for _, w := range c.wallet {
		if !w.Date.After(on) {
			total = total.Add(w.Change)
		}
	}
	return total
}

// Contributions returns the payments in and out dated on or before on.
func (c *CashLedger) Contributions(on date.Date) (in, out Money) {
	in, out = M(0, c.currency), M(0, c.currency)
	for _, p := range c.payments {
		if !p.Date.After(on) {
			in, out = in.Add(p.In), out.Add(p.Out)
		}
	}
	return in, out
}

// DividendsOf returns the total dividends received for ticker.
func (c *CashLedger) DividendsOf(ticker string) Money {
	total := M(0, c.currency)
	for _, d := range c.dividends {
		if d.Ticker == ticker {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// Wallet returns a copy of the wallet, sorted by date.
func (c *CashLedger) Wallet() []CashChange {
	w := slices.Clone(c.wallet)
	slices.SortStableFunc(w, func(a, b CashChange) int { return a.Date.Compare(b.Date) })
	return w
}

// Payments returns a copy of the payments, sorted by date.
func (c *CashLedger) Payments() []Payment {
	p := slices.Clone(c.payments)
	slices.SortStableFunc(p, func(a, b Payment) int { return a.Date.Compare(b.Date) })
	return p
}

// Dividends returns a copy of the dividends ledger, sorted by date.
func (c *CashLedger) Dividends() []DividendEntry {
	d := slices.Clone(c.dividends)
	slices.SortStableFunc(d, func(a, b DividendEntry) int { return a.Date.Compare(b.Date) })
	return d
}
