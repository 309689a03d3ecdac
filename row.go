package portfolios

import (
	"strings"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// Row is a normalized transaction record as produced by a broker export
// normalizer.
type Row struct {
	Date        date.Date
	Transaction string
	Ticker      string
	Currency    string
	Price       decimal.NullDecimal // optional, resolved from prices when missing
	Quantity    decimal.Decimal
	Dollars     decimal.NullDecimal // cash amount for broker cash rows
}

// Kind is the normalized kind of a transaction row.
type Kind int

const (
	KindUnknown Kind = iota
	KindDeposit
	KindWithdraw
	KindBuy
	KindSell
	KindDividend
	KindReinvestment
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdraw:
		return "withdraw"
	case KindBuy:
		return "buy"
	case KindSell:
		return "sell"
	case KindDividend:
		return "dividend"
	case KindReinvestment:
		return "reinvestment"
	default:
		return "unknown"
	}
}

// Priority orders same-day rows: cash in, purchases, dividends, sales, cash out.
func (k Kind) Priority() int {
	switch k {
	case KindDeposit:
		return 1
	case KindBuy, KindReinvestment:
		return 2
	case KindDividend:
		return 3
	case KindSell:
		return 4
	case KindWithdraw:
		return 5
	default:
		return 6
	}
}

// rowKind describes how a transaction string is applied.
type rowKind struct {
	kind    Kind
	dollars bool // amount is read from Dollars at a unit price of 1
}

// brokerKinds are matched case-sensitively.
var brokerKinds = map[string]rowKind{
	"Contribution":          {KindDeposit, true},
	"Funds Received":        {KindDeposit, true},
	"Conversion (incoming)": {KindDeposit, true},
	"Distribution":          {KindWithdraw, true},
	"Dividend":              {KindDividend, true},
	"Reinvestment":          {KindReinvestment, false},
	"Buy":                   {KindBuy, false},
	"Sell":                  {KindSell, false},
}

// genericKinds are matched case-insensitively.
var genericKinds = map[string]Kind{
	"deposit":  KindDeposit,
	"withdraw": KindWithdraw,
	"buy":      KindBuy,
	"sell":     KindSell,
	"dividend": KindDividend,
}

func classify(transaction string) rowKind {
	if rk, ok := brokerKinds[transaction]; ok {
		return rk
	}
	return rowKind{kind: genericKinds[strings.ToLower(strings.TrimSpace(transaction))]}
}

// ParseKind returns the normalized kind of a transaction string, KindUnknown
// when it is not recognized.
func ParseKind(transaction string) Kind { return classify(transaction).kind }

// Kind returns the normalized kind of the row.
func (r Row) Kind() Kind { return ParseKind(r.Transaction) }
