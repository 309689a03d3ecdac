package portfolios

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_DepositBuySell(t *testing.T) {
	p := newTestPortfolio(t)
	err := p.Replay(context.Background(), []Row{
		row("2020-01-02", "deposit", "", px(1), 1000),
		row("2020-01-03", "buy", "TST", px(50), 10),
		row("2020-01-10", "sell", "TST", px(60), 5),
	})
	require.NoError(t, err)

	assertMoney(t, 800, p.Balance(p.Today()), "Balance()")
	assert.True(t, p.held("TST").Equal(Q(5)), "held(TST) = %s", p.held("TST"))
	assertMoney(t, 50, p.Lots().FIFOCost("TST"), "FIFOCost()")
	assertMoney(t, 50, p.Lots().LIFOCost("TST"), "LIFOCost()")
	assertMoney(t, 50, p.Lots().AverageCost("TST"), "AverageCost()")
	assert.Equal(t, []string{"TST"}, p.Active())
	assert.Empty(t, p.Warnings())
}

func TestReplay_SameDayDepositFirst(t *testing.T) {
	p := newTestPortfolio(t)
	// the buy is listed first but must be applied after the deposit
	err := p.Replay(context.Background(), []Row{
		row("2020-01-03", "buy", "TST", px(50), 1),
		row("2020-01-03", "deposit", "", px(1), 100),
	})
	require.NoError(t, err)

	assertMoney(t, 50, p.Balance(p.Today()), "Balance()")
	log := p.Transactions()
	require.Len(t, log, 2)
	assert.Equal(t, KindDeposit, log[0].What())
	assert.Equal(t, KindBuy, log[1].What())
}

func TestReplay_OrderAcrossBatches(t *testing.T) {
	p := newTestPortfolio(t)
	broker := []Row{
		row("2020-01-03", "Sell", "TST", px(55), -4), // brokers report sales as negative quantities
	}
	bank := []Row{
		row("2020-01-03", "withdraw", "", px(1), 10),
		row("2020-01-02", "deposit", "", px(1), 500),
		row("2020-01-03", "buy", "TST", px(50), 4),
	}
	require.NoError(t, p.Replay(context.Background(), broker, bank))

	var kinds []Kind
	for _, tx := range p.Transactions() {
		kinds = append(kinds, tx.What())
	}
	assert.Equal(t, []Kind{KindDeposit, KindBuy, KindSell, KindWithdraw}, kinds)
	assertMoney(t, 500-200+220-10, p.Balance(p.Today()), "Balance()")
	assert.Empty(t, p.Active())
	assert.Equal(t, []string{"TST"}, p.Archived())
}

func TestReplay_SellClamp(t *testing.T) {
	p := newTestPortfolio(t)
	require.NoError(t, p.Replay(context.Background(), []Row{
		row("2020-01-02", "deposit", "", px(1), 1000),
		row("2020-01-03", "buy", "TST", px(50), 10),
		row("2020-01-10", "sell", "TST", px(50), 10.0005),
	}))

	log := p.Transactions()
	sold := log[len(log)-1]
	assert.True(t, sold.Units().Equal(Q(10)), "sold %s, want 10", sold.Units())
	assert.True(t, p.held("TST").IsZero())
	assert.Empty(t, p.Warnings())
	assert.Empty(t, p.Active())
	assert.Equal(t, []string{"TST"}, p.Archived())
	assertMoney(t, 1000, p.Balance(p.Today()), "Balance()")
}

func TestReplay_SellBeyondTolerance(t *testing.T) {
	p := newTestPortfolio(t)
	require.NoError(t, p.Replay(context.Background(), []Row{
		row("2020-01-03", "buy", "TST", px(50), 10),
		row("2020-01-10", "sell", "TST", px(50), 12),
	}))

	warnings := p.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, NegativePosition, warnings[0].Kind)
	assert.Equal(t, "TST", warnings[0].Ticker)
	assert.True(t, warnings[0].Amount.Equal(decimal.NewFromInt(-2)))
	assert.True(t, p.Lots().Held("TST", FIFO).IsZero())
	assert.True(t, p.Lots().Held("TST", LIFO).IsZero())
	assert.Empty(t, p.Active())
}

func TestReplay_NegativeCashWarning(t *testing.T) {
	p := newTestPortfolio(t)
	require.NoError(t, p.Replay(context.Background(), []Row{
		row("2020-01-02", "deposit", "", px(1), 10),
		row("2020-01-03", "withdraw", "", px(1), 30),
	}))
	warnings := p.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, NegativeCash, warnings[0].Kind)
	assertMoney(t, -20, p.Balance(p.Today()), "Balance()")
}

func TestReplay_SkippedRows(t *testing.T) {
	p := newTestPortfolio(t)
	require.NoError(t, p.Replay(context.Background(), []Row{
		row("", "deposit", "", px(1), 1000),                  // undated
		row("2020-01-02", "Transfer", "", px(1), 1000),       // unknown kind
		row("2020-01-03", "Reinvestment", "TST", px(50), 0), // cash placeholder
		row("2020-01-03", "DEPOSIT", "", decimal.NullDecimal{}, 5),
	}))
	require.Len(t, p.Transactions(), 1)
	assertMoney(t, 5, p.Balance(p.Today()), "Balance()")
	assert.Empty(t, p.Archived())
}

func TestReplay_BrokerKinds(t *testing.T) {
	p := newTestPortfolio(t)
	dollars := func(r Row, v float64) Row {
		r.Dollars = decimal.NewNullDecimal(num(v))
		return r
	}
	require.NoError(t, p.Replay(context.Background(), []Row{
		dollars(row("2020-01-02", "Contribution", "", decimal.NullDecimal{}, 0), 300),
		dollars(row("2020-01-02", "Funds Received", "", decimal.NullDecimal{}, 0), 100),
		row("2020-01-03", "Reinvestment", "TST", px(50), 2),
		dollars(row("2020-01-06", "Dividend", "TST", decimal.NullDecimal{}, 0), 4),
		dollars(row("2020-01-07", "Distribution", "", decimal.NullDecimal{}, 0), 50),
	}))
	assertMoney(t, 300+100-100+4-50, p.Balance(p.Today()), "Balance()")
	assertMoney(t, 4, p.Cash().DividendsOf("TST"), "DividendsOf(TST)")
	in, out := p.Cash().Contributions(p.Today())
	assertMoney(t, 400, in, "in")
	assertMoney(t, 50, out, "out")
}

func TestReplay_MissingDollars(t *testing.T) {
	p := newTestPortfolio(t)
	err := p.Replay(context.Background(), []Row{
		row("2020-01-02", "Contribution", "", decimal.NullDecimal{}, 0),
	})
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestReplay_PriceResolution(t *testing.T) {
	rows := []Row{
		row("2019-12-20", "deposit", "", px(1), 1000),
		row("2019-12-23", "buy", "TST", decimal.NullDecimal{}, 1), // before the first close
		row("2020-01-03", "buy", "TST", decimal.NullDecimal{}, 2),
	}

	t.Run("stops at the first failing row", func(t *testing.T) {
		p := newTestPortfolio(t)
		err := p.Replay(context.Background(), rows)
		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 1, rowErr.Index)
		assert.ErrorIs(t, err, ErrNoPrice)
		// the deposit before stays applied
		assertMoney(t, 1000, p.Balance(p.Today()), "Balance()")
		assert.Len(t, p.Transactions(), 1)
	})

	t.Run("continue on error", func(t *testing.T) {
		p := newTestPortfolio(t, WithContinueOnError())
		err := p.Replay(context.Background(), rows)
		assert.ErrorIs(t, err, ErrNoPrice)
		assertMoney(t, 900, p.Balance(p.Today()), "Balance()")
		assert.True(t, p.held("TST").Equal(Q(2)))
	})

	t.Run("unknown ticker", func(t *testing.T) {
		p := newTestPortfolio(t)
		err := p.Replay(context.Background(), []Row{row("2020-01-03", "buy", "NOPE", px(1), 1)})
		assert.ErrorIs(t, err, ErrUnknownTicker)
	})
}

func TestReplay_SplitAdjustment(t *testing.T) {
	data := flat("2020-01-02", "2020-01-31", 50)
	data.Splits = []Split{{Date: day("2020-01-06"), Ratio: decimal.NewFromInt(2)}}
	p := New("split", "USD", MemoryProvider{"TST": data}, WithToday(day("2020-02-10")))

	require.NoError(t, p.Replay(context.Background(), []Row{
		row("2020-01-03", "buy", "TST", px(100), 10), // before the split
		row("2020-01-06", "buy", "TST", px(50), 2),   // split day prices are post-split
	}))
	assert.True(t, p.held("TST").Equal(Q(22)), "held(TST) = %s", p.held("TST"))
	assertMoney(t, 50, p.Lots().AverageCost("TST"), "AverageCost()")
	assertMoney(t, -1100, p.Balance(p.Today()), "Balance()")
}

func TestReplay_Idempotence(t *testing.T) {
	sorted := []Row{
		row("2020-01-02", "deposit", "", px(1), 1000),
		row("2020-01-02", "buy", "TST", px(50), 4),
		row("2020-01-02", "buy", "BBB", px(20), 5),
		row("2020-01-02", "dividend", "", px(1), 3),
		row("2020-01-08", "deposit", "", px(1), 100),
		row("2020-01-08", "buy", "TST", px(52), 2),
		row("2020-01-08", "sell", "BBB", px(21), 5),
		row("2020-01-08", "withdraw", "", px(1), 50),
	}
	want := newTestPortfolio(t)
	require.NoError(t, want.Replay(context.Background(), sorted))

	// every permutation of rows within the tie groups, spread over batches
	shuffled := [][]Row{
		{sorted[7], sorted[3], sorted[6]},
		{sorted[2], sorted[5], sorted[0]},
		{sorted[4], sorted[1]},
	}
	got := newTestPortfolio(t)
	require.NoError(t, got.Replay(context.Background(), shuffled...))

	assert.True(t, want.Balance(want.Today()).Equal(got.Balance(got.Today())))
	for _, ticker := range []string{"TST", "BBB"} {
		assert.True(t, want.held(ticker).Equal(got.held(ticker)), ticker)
		for _, m := range CostBasisMethods {
			assert.True(t, want.Lots().Cost(ticker, m).Equal(got.Lots().Cost(ticker, m)), "%s %s", ticker, m)
		}
	}
	assert.Equal(t, []string{"TST"}, got.Active())
	assert.ElementsMatch(t, want.Archived(), got.Archived())
}

func TestReplay_LotInvariant(t *testing.T) {
	p := newTestPortfolio(t)
	ctx := context.Background()
	ops := []struct {
		buy bool
		qty float64
	}{
		{true, 3}, {true, 2.5}, {false, 1}, {true, 7}, {false, 4.25}, {false, 0.25}, {true, 1}, {false, 8}, {true, 4}, {false, 2},
	}
	for i, op := range ops {
		on := day("2020-01-02").Add(i)
		var err error
		if op.buy {
			err = p.Buy(ctx, on, "TST", "USD", px(float64(40+i)), num(op.qty))
		} else {
			err = p.Sell(ctx, on, "TST", "USD", px(float64(40+i)), num(op.qty))
		}
		require.NoError(t, err)

		held := p.held("TST")
		for _, m := range []CostBasisMethod{FIFO, LIFO} {
			diff := p.Lots().Held("TST", m).Sub(held).Abs()
			assert.True(t, diff.LessThanOrEqual(Q(0.0001)), "step %d: %s holds %s, log holds %s", i, m, p.Lots().Held("TST", m), held)
		}
	}
}

func TestReplay_Canceled(t *testing.T) {
	p := newTestPortfolio(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Replay(ctx, []Row{row("2020-01-02", "deposit", "", px(1), 1)})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, p.Transactions())
}

// countingProvider counts the loads served by a MemoryProvider.
type countingProvider struct {
	MemoryProvider
	loads int
}

func (c *countingProvider) Load(ctx context.Context, ticker string, from, to date.Date) (PriceData, error) {
	c.loads++
	return c.MemoryProvider.Load(ctx, ticker, from, to)
}

func TestReplay_EarlierBatchReloadsPrices(t *testing.T) {
	provider := &countingProvider{MemoryProvider: testProvider()}
	p := New("test", "USD", provider, WithToday(day("2020-02-10")))
	ctx := context.Background()

	require.NoError(t, p.Replay(ctx, []Row{row("2020-01-20", "buy", "TST", px(50), 1)}))
	require.NoError(t, p.Replay(ctx, []Row{row("2020-01-24", "buy", "TST", decimal.NullDecimal{}, 1)}))
	assert.Equal(t, 1, provider.loads, "later rows are served by the loaded range")

	require.NoError(t, p.Replay(ctx, []Row{row("2020-01-03", "buy", "TST", decimal.NullDecimal{}, 2)}))
	assert.Equal(t, 2, provider.loads)
	assert.True(t, p.held("TST").Equal(Q(4)), "held(TST) = %s", p.held("TST"))

	s, ok := p.Security("TST")
	require.True(t, ok)
	assert.Equal(t, day("2020-01-03"), s.FirstDate())

	for _, pt := range p.Timeseries().Points {
		if pt.Date == day("2020-01-03") {
			assertMoney(t, 100, pt.Values[0], "TST on 2020-01-03")
		}
	}
}

func TestPortfolio_BuyOutOfOrder(t *testing.T) {
	p := newTestPortfolio(t)
	ctx := context.Background()

	require.NoError(t, p.Buy(ctx, day("2020-01-20"), "TST", "USD", px(50), num(1)))
	require.NoError(t, p.Buy(ctx, day("2020-01-03"), "TST", "USD", decimal.NullDecimal{}, num(2)))
	require.NoError(t, p.Sell(ctx, day("2020-01-02"), "TST", "USD", decimal.NullDecimal{}, num(1)))

	assert.True(t, p.held("TST").Equal(Q(2)), "held(TST) = %s", p.held("TST"))
	assertMoney(t, -100, p.Balance(p.Today()), "Balance()")
}

func TestReplay_NegativeCashAfterToday(t *testing.T) {
	p := newTestPortfolio(t)
	require.NoError(t, p.Replay(context.Background(), []Row{
		row("2020-01-02", "deposit", "", px(1), 10),
		row("2020-03-01", "withdraw", "", px(1), 40), // after today
	}))
	warnings := p.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, NegativeCash, warnings[0].Kind)
	assert.Equal(t, day("2020-03-01"), warnings[0].Date)
	assert.True(t, warnings[0].Amount.Equal(num(-30)), "Amount = %s", warnings[0].Amount)
	assertMoney(t, 10, p.Balance(p.Today()), "Balance()")
}
