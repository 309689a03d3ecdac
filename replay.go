package portfolios

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// indexedRow is a row with its position in the replay input.
type indexedRow struct {
	index int
	row   Row
	kind  rowKind
}

// order merges the batches, drops undated rows and sorts the rest by date
// then kind priority. The sort is stable so rows of equal date and priority
// keep their input order.
func order(batches [][]Row) []indexedRow {
	var rows []indexedRow
	i := 0
	for _, batch := range batches {
		for _, r := range batch {
			if !r.Date.IsZero() {
				rows = append(rows, indexedRow{index: i, row: r, kind: classify(r.Transaction)})
			}
			i++
		}
	}
	slices.SortStableFunc(rows, func(a, b indexedRow) int {
		if c := a.row.Date.Compare(b.row.Date); c != 0 {
			return c
		}
		return a.kind.kind.Priority() - b.kind.kind.Priority()
	})
	return rows
}

// Replay applies the rows of every batch in chronological order.
//
// Rows without a date and rows of an unknown kind are skipped. Rows are
// applied one by one: when a row fails, the rows before it stay applied and
// Replay returns a *RowError, unless the portfolio continues on error in which
// case every row is attempted and all failures are joined.
func (p *Portfolio) Replay(ctx context.Context, batches ...[]Row) error {
	rows := order(batches)
	for _, r := range rows {
		p.hint(r.row.Ticker, r.row.Date)
	}

	var errs []error
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.apply(ctx, r.row, r.kind); err != nil {
			rowErr := &RowError{Index: r.index, Row: r.row, Err: err}
			if !p.continueOnError {
				return rowErr
			}
			p.logger.Error().Err(rowErr).Msg("row skipped")
			errs = append(errs, rowErr)
		}
	}
	return errors.Join(errs...)
}

var one = decimal.NewFromInt(1)

// apply dispatches a single row.
func (p *Portfolio) apply(ctx context.Context, r Row, rk rowKind) error {
	// cash rows: the price is an exchange rate, broker rows carry the amount
	// in Dollars.
	rate, amount := one, r.Quantity
	if r.Price.Valid {
		rate = r.Price.Decimal
	}
	if rk.dollars {
		if !r.Dollars.Valid {
			return fmt.Errorf("%w: %s without Dollars", ErrMalformedRow, r.Transaction)
		}
		rate, amount = one, r.Dollars.Decimal
	}

	switch rk.kind {
	case KindDeposit:
		p.Deposit(r.Date, r.Currency, rate, amount)
	case KindWithdraw:
		p.Withdraw(r.Date, r.Currency, rate, amount)
	case KindDividend:
		p.Dividend(r.Date, r.Ticker, r.Currency, rate, amount)
	case KindBuy, KindReinvestment:
		if rk.kind == KindReinvestment && r.Quantity.IsZero() {
			return nil
		}
		if r.Ticker == "" {
			return fmt.Errorf("%w: %s without ticker", ErrMalformedRow, r.Transaction)
		}
		return p.Buy(ctx, r.Date, r.Ticker, r.Currency, r.Price, r.Quantity)
	case KindSell:
		if r.Ticker == "" {
			return fmt.Errorf("%w: %s without ticker", ErrMalformedRow, r.Transaction)
		}
		return p.Sell(ctx, r.Date, r.Ticker, r.Currency, r.Price, r.Quantity)
	default:
		p.logger.Debug().Str("date", r.Date.String()).Str("transaction", r.Transaction).Msg("ignored transaction")
	}
	return nil
}
