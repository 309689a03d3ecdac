package portfolios

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPrice is returned when a security has no close on or before a date.
	ErrNoPrice = errors.New("no price available")
	// ErrUnknownTicker is returned by providers that do not know a ticker.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrNoData is returned when a provider has no data for the requested range.
	ErrNoData = errors.New("no data")
	// ErrMalformedRow is returned when a row lacks a field its kind requires.
	ErrMalformedRow = errors.New("malformed row")
)

// RowError reports the row that failed during a replay.
type RowError struct {
	Index int // position of the row in the replay input, counting across batches
	Row   Row
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s %s %s): %v", e.Index, e.Row.Date, e.Row.Transaction, e.Row.Ticker, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
