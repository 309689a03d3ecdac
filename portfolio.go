package portfolios

import (
	"context"
	"fmt"
	"slices"

	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
)

// lookbackDays is the minimum history loaded before the last trading day.
const lookbackDays = 7

// registry is a set of securities keyed by ticker that remembers insertion
// order.
type registry struct {
	m     map[string]*Security
	order []string
}

func newRegistry() registry { return registry{m: make(map[string]*Security)} }

func (r *registry) has(ticker string) bool {
	_, ok := r.m[ticker]
	return ok
}

func (r *registry) add(s *Security) {
	if r.has(s.Ticker()) {
		return
	}
	r.m[s.Ticker()] = s
	r.order = append(r.order, s.Ticker())
}

func (r *registry) remove(ticker string) {
	delete(r.m, ticker)
	r.order = slices.DeleteFunc(r.order, func(t string) bool { return t == ticker })
}

// WarningKind classifies consistency warnings.
type WarningKind int

const (
	NegativePosition WarningKind = iota
	NegativeCash
)

func (k WarningKind) String() string {
	switch k {
	case NegativePosition:
		return "negative position"
	case NegativeCash:
		return "negative cash"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal consistency problem found while applying operations.
type Warning struct {
	Date   date.Date
	Kind   WarningKind
	Ticker string          // empty for cash warnings
	Amount decimal.Decimal // the offending quantity or balance
}

func (w Warning) String() string {
	if w.Ticker == "" {
		return fmt.Sprintf("%s: %s %s", w.Date, w.Kind, w.Amount)
	}
	return fmt.Sprintf("%s: %s %s %s", w.Date, w.Kind, w.Ticker, w.Amount)
}

// Portfolio is a named portfolio replayed from its transactions.
//
// It is not safe for concurrent use.
type Portfolio struct {
	name     string
	currency string
	provider Provider
	logger   *Logger
	today    date.Date

	sellClampFactor decimal.Decimal
	zeroEpsilon     decimal.Decimal
	continueOnError bool

	securities map[string]*Security // every security ever referenced
	active     registry
	archive    registry
	firstDates map[string]date.Date // earliest known transaction per ticker
	loadedFrom map[string]date.Date // start of the loaded price range per ticker

	lots     *LotTracker
	cash     *CashLedger
	log      []Transaction
	warnings []Warning
}

// Option configures a Portfolio.
type Option func(*Portfolio)

// WithLogger sets the logger, silent by default.
func WithLogger(l *Logger) Option { return func(p *Portfolio) { p.logger = l } }

// WithToday sets the valuation date, today by default.
func WithToday(d date.Date) Option { return func(p *Portfolio) { p.today = d } }

// WithSellClampFactor sets the ratio within which a sell quantity is snapped
// to the held quantity.
func WithSellClampFactor(f decimal.Decimal) Option {
	return func(p *Portfolio) { p.sellClampFactor = f }
}

// WithZeroEpsilon sets the quantity under which a position is considered closed.
func WithZeroEpsilon(e decimal.Decimal) Option { return func(p *Portfolio) { p.zeroEpsilon = e } }

// WithContinueOnError makes Replay apply every row even after a failure.
func WithContinueOnError() Option { return func(p *Portfolio) { p.continueOnError = true } }

// New returns an empty portfolio valued in currency, loading prices from
// provider.
func New(name, currency string, provider Provider, opts ...Option) *Portfolio {
	p := &Portfolio{
		name:            name,
		currency:        currency,
		provider:        provider,
		logger:          NewSilentLogger(),
		today:           date.Today(),
		sellClampFactor: decimal.RequireFromString("1.0001"),
		zeroEpsilon:     decimal.RequireFromString("0.0001"),
		securities:      make(map[string]*Security),
		active:          newRegistry(),
		archive:         newRegistry(),
		firstDates:      make(map[string]date.Date),
		loadedFrom:      make(map[string]date.Date),
		lots:            NewLotTracker(),
		cash:            NewCashLedger(currency),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Portfolio) Name() string       { return p.name }
func (p *Portfolio) Currency() string   { return p.currency }
func (p *Portfolio) Today() date.Date   { return p.today }
func (p *Portfolio) Lots() *LotTracker  { return p.lots }
func (p *Portfolio) Cash() *CashLedger  { return p.cash }
func (p *Portfolio) Warnings() []Warning { return slices.Clone(p.warnings) }

// Transactions returns a copy of the transaction log in application order.
func (p *Portfolio) Transactions() []Transaction { return slices.Clone(p.log) }

// Active returns the tickers currently held, in order of first purchase.
func (p *Portfolio) Active() []string { return slices.Clone(p.active.order) }

// Archived returns every ticker ever held, in order of first purchase.
func (p *Portfolio) Archived() []string { return slices.Clone(p.archive.order) }

// Security returns the security of ticker if it was ever referenced.
func (p *Portfolio) Security(ticker string) (*Security, bool) {
	s, ok := p.securities[ticker]
	return s, ok
}

// Balance returns the cash balance on day.
func (p *Portfolio) Balance(on date.Date) Money { return p.cash.Balance(on) }

func (p *Portfolio) money(d decimal.Decimal) Money { return M(d, p.currency) }

func (p *Portfolio) warn(w Warning) {
	p.warnings = append(p.warnings, w)
	p.logger.Warn().Str("date", w.Date.String()).Str("ticker", w.Ticker).Str("amount", w.Amount.String()).Msg(w.Kind.String())
}

// hint records day as a transaction date for ticker, used to choose how far
// back to load prices.
func (p *Portfolio) hint(ticker string, day date.Date) {
	if ticker == "" || day.IsZero() {
		return
	}
	if first, ok := p.firstDates[ticker]; !ok || day.Before(first) {
		p.firstDates[ticker] = day
	}
}

// security returns the security of ticker, loading it on first reference.
// A security is reloaded when on is earlier than the range already loaded.
func (p *Portfolio) security(ctx context.Context, ticker string, on date.Date) (*Security, error) {
	p.hint(ticker, on)
	from := date.Min(p.firstDates[ticker], date.LastTradingDay(p.today).Add(-lookbackDays))
	s, ok := p.securities[ticker]
	if ok && !from.Before(p.loadedFrom[ticker]) {
		return s, nil
	}
	data, err := p.provider.Load(ctx, ticker, from, p.today)
	if err != nil {
		return nil, fmt.Errorf("cannot load %s from %s: %w", ticker, from, err)
	}
	p.loadedFrom[ticker] = from
	if ok {
		s.SetData(data)
		p.logger.Debug().Str("ticker", ticker).Str("from", from.String()).Int("bars", len(data.Bars)).Msg("reloaded security")
		return s, nil
	}
	s = NewSecurity(ticker, data)
	p.securities[ticker] = s
	p.logger.Debug().Str("ticker", ticker).Str("from", from.String()).Int("bars", len(data.Bars)).Msg("added security")
	return s, nil
}

// held returns the net quantity of ticker from the transaction log.
func (p *Portfolio) held(ticker string) Quantity {
	var q Quantity
	for _, tx := range p.log {
		if tx.Symbol() == ticker {
			q = q.Add(signedUnits(tx))
		}
	}
	return q
}

// Deposit adds price × quantity to the cash and the payments in.
func (p *Portfolio) Deposit(on date.Date, currency string, price, quantity decimal.Decimal) {
	tx := NewDeposit(on, currency, p.money(price), Q(quantity))
	p.cash.Deposit(on, tx.TradeValue())
	p.log = append(p.log, tx)
	p.logger.Debug().Str("date", on.String()).Str("amount", tx.TradeValue().String()).Str("balance", p.cash.Balance(p.today).String()).Msg("deposit")
}

// Withdraw takes price × quantity out of the cash. A negative resulting
// balance is reported as a warning.
func (p *Portfolio) Withdraw(on date.Date, currency string, price, quantity decimal.Decimal) {
	tx := NewWithdraw(on, currency, p.money(price), Q(quantity))
	p.cash.Withdraw(on, tx.TradeValue())
	p.log = append(p.log, tx)
	balance := p.cash.Balance(on)
	p.logger.Debug().Str("date", on.String()).Str("amount", tx.TradeValue().String()).Str("balance", balance.String()).Msg("withdraw")
	if balance.IsNegative() {
		p.warn(Warning{Date: on, Kind: NegativeCash, Amount: balance.Decimal()})
	}
}

// Dividend adds price × quantity to the cash and to the dividends of ticker.
// An empty ticker records interest.
func (p *Portfolio) Dividend(on date.Date, ticker, currency string, price, quantity decimal.Decimal) {
	tx := NewDividend(on, ticker, currency, p.money(price), Q(quantity))
	p.cash.Dividend(on, ticker, tx.TradeValue())
	p.log = append(p.log, tx)
	msg := "dividend"
	if ticker == "" {
		msg = "interest"
	}
	p.logger.Debug().Str("date", on.String()).Str("ticker", ticker).Str("amount", tx.TradeValue().String()).Msg(msg)
}

// tradePrice resolves the split-adjusted quantity and unit price of a trade.
func (p *Portfolio) tradePrice(s *Security, on date.Date, price decimal.NullDecimal, quantity decimal.Decimal) (Quantity, Money, error) {
	if price.Valid {
		qty, px := s.Adjust(on, quantity, price.Decimal)
		return Q(qty), p.money(px), nil
	}
	px, err := s.PriceAt(on)
	if err != nil {
		return Quantity{}, Money{}, err
	}
	qty, _ := s.Adjust(on, quantity, decimal.Zero)
	return Q(qty), p.money(px), nil
}

// Buy purchases quantity shares of ticker. When price is null the close of
// the day is used. The ticker joins the active and archive registries.
func (p *Portfolio) Buy(ctx context.Context, on date.Date, ticker, currency string, price decimal.NullDecimal, quantity decimal.Decimal) error {
	s, err := p.security(ctx, ticker, on)
	if err != nil {
		return err
	}
	qty, px, err := p.tradePrice(s, on, price, quantity)
	if err != nil {
		return err
	}
	p.active.add(s)
	p.archive.add(s)

	tx := NewBuy(on, ticker, currency, px, qty)
	p.lots.Buy(ticker, qty, px)
	p.cash.Trade(on, tx.TradeValue().Neg())
	p.log = append(p.log, tx)
	p.logger.Debug().Str("date", on.String()).Str("ticker", ticker).Str("quantity", qty.String()).Str("balance", p.cash.Balance(p.today).String()).Msg("buy")
	return nil
}

// Sell sells quantity shares of ticker. When price is null the close of the
// day is used.
//
// A quantity within the clamp factor of the held quantity is replaced by the
// held quantity. Selling more is reported as a negative position. When the
// position is closed the ticker leaves the active registry.
func (p *Portfolio) Sell(ctx context.Context, on date.Date, ticker, currency string, price decimal.NullDecimal, quantity decimal.Decimal) error {
	s, err := p.security(ctx, ticker, on)
	if err != nil {
		return err
	}
	qty, px, err := p.tradePrice(s, on, price, quantity.Abs())
	if err != nil {
		return err
	}

	p.archive.add(s)

	net := p.held(ticker)
	factor := Q(p.sellClampFactor)
	if net.LessThanOrEqual(qty.Mul(factor)) && qty.LessThanOrEqual(net.Mul(factor)) {
		qty = net
	}

	tx := NewSell(on, ticker, currency, px, qty)
	p.lots.Sell(ticker, qty)
	p.cash.Trade(on, tx.TradeValue())
	p.log = append(p.log, tx)
	p.logger.Debug().Str("date", on.String()).Str("ticker", ticker).Str("quantity", qty.String()).Str("balance", p.cash.Balance(p.today).String()).Msg("sell")

	remaining := net.Sub(qty)
	if remaining.LessThan(Q(p.zeroEpsilon.Neg())) {
		p.warn(Warning{Date: on, Kind: NegativePosition, Ticker: ticker, Amount: remaining.Decimal()})
	}
	if remaining.LessThanOrEqual(Q(p.zeroEpsilon)) && p.active.has(ticker) {
		p.active.remove(ticker)
		p.logger.Debug().Str("ticker", ticker).Msg("position closed")
	}
	return nil
}
