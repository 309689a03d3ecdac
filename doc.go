// Package portfolios replays brokerage transaction records against
// historical security prices to value a personal investment portfolio.
//
// The core functionalities include:
//   - Replay: normalized transaction rows from one or more exports are merged,
//     ordered by date and kind, and applied in a single pass.
//   - Cash Ledger: a signed wallet of cash movements, the external payments
//     used as the return-rate denominator, and the dividends received.
//   - Lot Tracking: per ticker costed lots kept under three views, the
//     all-time average, FIFO and LIFO.
//   - Valuation: daily market value series, growth against net deposits,
//     per-year performance and benchmark comparison.
//
// Price data comes from a Provider. Securities adjust historical prices and
// quantities for stock splits so that every figure is expressed in current
// share terms.
//
// This package serves as the foundational logic for the `folio` command-line
// tool.
package portfolios
