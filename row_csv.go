package portfolios

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// csvColumns are the normalized column names. Dollars is optional.
var csvColumns = []string{"Date", "Transaction", "Ticker", "Currency", "Price", "Quantity", "Dollars"}

// ReadRows reads a normalized transaction table.
//
// The first record is a header naming the columns
// Date,Transaction,Ticker,Currency,Price,Quantity and optionally Dollars, in
// any order and case. Empty cells are missing values. An empty Date yields a
// zero date, which replay drops.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int)
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvColumns[:6] {
		if _, ok := index[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("missing column %q in CSV header", name)
		}
	}
	cell := func(record []string, name string) string {
		i, ok := index[strings.ToLower(name)]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parseRecord(func(name string) string { return cell(record, name) })
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(cell func(string) string) (row Row, err error) {
	if s := cell("Date"); s != "" {
		if row.Date, err = date.Parse(s); err != nil {
			return row, err
		}
	}
	row.Transaction = cell("Transaction")
	row.Ticker = cell("Ticker")
	row.Currency = cell("Currency")
	if row.Price, err = parseNullDecimal(cell("Price")); err != nil {
		return row, fmt.Errorf("invalid Price: %w", err)
	}
	qty, err := parseNullDecimal(cell("Quantity"))
	if err != nil {
		return row, fmt.Errorf("invalid Quantity: %w", err)
	}
	row.Quantity = qty.Decimal
	if row.Dollars, err = parseNullDecimal(cell("Dollars")); err != nil {
		return row, fmt.Errorf("invalid Dollars: %w", err)
	}
	return row, nil
}

// parseNullDecimal parses amounts like "1,234.50" or "$12". Empty is null.
func parseNullDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.NewReplacer(",", "", "$", "").Replace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
