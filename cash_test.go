package portfolios

import (
	"testing"

	"github.com/etnz/portfolios/date"
	"github.com/stretchr/testify/assert"
)

func TestCashLedger_Balance(t *testing.T) {
	c := NewCashLedger("USD")
	// recorded out of date order on purpose
	c.Deposit(day("2020-01-05"), USD(100))
	c.Trade(day("2020-01-03"), USD(-30))
	c.Dividend(day("2020-01-04"), "A", USD(2))
	c.Withdraw(day("2020-01-10"), USD(50))
	c.Dividend(day("2020-01-10"), "", USD(1))

	changes := c.Wallet()
	for _, on := range []string{"2020-01-01", "2020-01-03", "2020-01-04", "2020-01-05", "2020-01-09", "2020-01-10", "2021-01-01"} {
		want := M(0, "USD")
		for _, w := range changes {
			if !w.Date.After(day(on)) {
				want = want.Add(w.Change)
			}
		}
		assert.True(t, c.Balance(day(on)).Equal(want), "Balance(%s) = %s, want %s", on, c.Balance(day(on)), want)
	}
	assertMoney(t, 23, c.Balance(day("2021-01-01")), "Balance()")

	in, out := c.Contributions(day("2020-01-09"))
	assertMoney(t, 100, in, "in")
	assertMoney(t, 0, out, "out")

	assertMoney(t, 2, c.DividendsOf("A"), "DividendsOf(A)")
	assertMoney(t, 1, c.DividendsOf(""), "interest")
}

func TestCashLedger_SortedViews(t *testing.T) {
	c := NewCashLedger("USD")
	c.Deposit(day("2020-02-01"), USD(1))
	c.Deposit(day("2020-01-01"), USD(2))

	var dates []date.Date
	for _, p := range c.Payments() {
		dates = append(dates, p.Date)
	}
	assert.Equal(t, []date.Date{day("2020-01-01"), day("2020-02-01")}, dates)
	// the views are copies
	c.Wallet()[0].Change = USD(1000)
	assertMoney(t, 3, c.Balance(day("2020-12-31")), "Balance()")
}
