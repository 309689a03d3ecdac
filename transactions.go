package portfolios

import (
	"github.com/etnz/portfolios/date"
)

// Transaction is an entry of the portfolio's append-only transaction log.
//
// Prices and quantities of Buy and Sell are split-adjusted to current share
// terms. Cash transactions carry the exchange rate as price and the amount
// as quantity.
type Transaction interface {
	What() Kind      // What returns the kind of the transaction (e.g., buy, sell).
	When() date.Date // When returns the date on which the transaction occurred.
	Symbol() string  // Symbol returns the ticker, empty for cash movements and interest.
	Units() Quantity
	UnitPrice() Money
	// TradeValue is price times quantity.
	TradeValue() Money
}

type baseTx struct {
	Date     date.Date `json:"date"`
	Ticker   string    `json:"ticker,omitempty"`
	Currency string    `json:"currency,omitempty"` // currency as recorded by the broker
	Price    Money     `json:"price"`
	Quantity Quantity  `json:"quantity"`
}

func (t baseTx) When() date.Date   { return t.Date }
func (t baseTx) Symbol() string    { return t.Ticker }
func (t baseTx) Units() Quantity   { return t.Quantity }
func (t baseTx) UnitPrice() Money  { return t.Price }
func (t baseTx) TradeValue() Money { return t.Price.Mul(t.Quantity) }

// Deposit is cash coming into the portfolio.
type Deposit struct{ baseTx }

// Withdraw is cash leaving the portfolio.
type Withdraw struct{ baseTx }

// Buy is a purchase of shares.
type Buy struct{ baseTx }

// Sell is a sale of shares.
type Sell struct{ baseTx }

// Dividend is a dividend, or interest when Ticker is empty.
type Dividend struct{ baseTx }

func (Deposit) What() Kind  { return KindDeposit }
func (Withdraw) What() Kind { return KindWithdraw }
func (Buy) What() Kind      { return KindBuy }
func (Sell) What() Kind     { return KindSell }
func (Dividend) What() Kind { return KindDividend }

// NewDeposit creates a deposit of quantity at the exchange rate price.
func NewDeposit(on date.Date, currency string, price Money, quantity Quantity) Deposit {
	return Deposit{baseTx{Date: on, Currency: currency, Price: price, Quantity: quantity}}
}

// NewWithdraw creates a withdrawal of quantity at the exchange rate price.
func NewWithdraw(on date.Date, currency string, price Money, quantity Quantity) Withdraw {
	return Withdraw{baseTx{Date: on, Currency: currency, Price: price, Quantity: quantity}}
}

// NewBuy creates a purchase of quantity shares of ticker at price.
func NewBuy(on date.Date, ticker, currency string, price Money, quantity Quantity) Buy {
	return Buy{baseTx{Date: on, Ticker: ticker, Currency: currency, Price: price, Quantity: quantity}}
}

// NewSell creates a sale of quantity shares of ticker at price.
func NewSell(on date.Date, ticker, currency string, price Money, quantity Quantity) Sell {
	return Sell{baseTx{Date: on, Ticker: ticker, Currency: currency, Price: price, Quantity: quantity}}
}

// NewDividend creates a dividend payment for ticker, interest when ticker is empty.
func NewDividend(on date.Date, ticker, currency string, price Money, quantity Quantity) Dividend {
	return Dividend{baseTx{Date: on, Ticker: ticker, Currency: currency, Price: price, Quantity: quantity}}
}

// signedUnits returns the change in held shares caused by tx.
func signedUnits(tx Transaction) Quantity {
	switch tx.What() {
	case KindBuy:
		return tx.Units()
	case KindSell:
		return tx.Units().Neg()
	default:
		return Quantity{}
	}
}
