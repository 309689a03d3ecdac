package portfolios

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in       string
		want     Kind
		priority int
	}{
		{"deposit", KindDeposit, 1},
		{"Deposit", KindDeposit, 1},
		{"Contribution", KindDeposit, 1},
		{"Funds Received", KindDeposit, 1},
		{"Conversion (incoming)", KindDeposit, 1},
		{"buy", KindBuy, 2},
		{"BUY", KindBuy, 2},
		{"Reinvestment", KindReinvestment, 2},
		{"dividend", KindDividend, 3},
		{"Dividend", KindDividend, 3},
		{"sell", KindSell, 4},
		{"Sell", KindSell, 4},
		{"withdraw", KindWithdraw, 5},
		{"Distribution", KindWithdraw, 5},
		{"contribution", KindUnknown, 6}, // broker kinds are case-sensitive
		{"Transfer", KindUnknown, 6},
		{"", KindUnknown, 6},
	}
	for _, tt := range tests {
		got := ParseKind(tt.in)
		assert.Equal(t, tt.want, got, "ParseKind(%q)", tt.in)
		assert.Equal(t, tt.priority, got.Priority(), "ParseKind(%q).Priority()", tt.in)
	}
}

func TestReadRows(t *testing.T) {
	in := `Transaction,Date,Ticker,Currency,Price,Quantity,Dollars
deposit,2020-01-02,,USD,1,1000,
Buy,2020-01-03,TST,USD,50.5,"1,000",
Contribution,1/6/2020,,USD,,,"$2,500.00"
buy,,TST,USD,,3,
`
	rows, err := ReadRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, day("2020-01-02"), rows[0].Date)
	assert.Equal(t, "deposit", rows[0].Transaction)
	assert.True(t, rows[0].Price.Valid)
	assert.False(t, rows[0].Dollars.Valid)

	assert.Equal(t, "TST", rows[1].Ticker)
	assert.True(t, rows[1].Price.Decimal.Equal(num(50.5)))
	assert.True(t, rows[1].Quantity.Equal(num(1000)))

	assert.Equal(t, day("2020-01-06"), rows[2].Date)
	assert.False(t, rows[2].Price.Valid)
	assert.True(t, rows[2].Quantity.IsZero())
	assert.True(t, rows[2].Dollars.Decimal.Equal(num(2500)))

	assert.True(t, rows[3].Date.IsZero())
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows(strings.NewReader("Date,Transaction,Ticker\n"))
	assert.ErrorContains(t, err, "missing column")

	_, err = ReadRows(strings.NewReader("Date,Transaction,Ticker,Currency,Price,Quantity\n2020-01-02,buy,A,USD,abc,1\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadRows(strings.NewReader(""))
	assert.Error(t, err)
}
