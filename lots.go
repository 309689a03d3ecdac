package portfolios

// lot is a quantity of shares acquired at the same unit price.
type lot struct {
	Quantity Quantity
	Price    Money // unit price
}

// evictPolicy selects which lots a sale removes.
type evictPolicy int

const (
	keepAll   evictPolicy = iota // never evicts, used by the average view
	evictHead                    // oldest lots first (FIFO)
	evictTail                    // newest lots first (LIFO)
)

// lotQueue is an ordered list of costed lots, oldest first.
type lotQueue struct {
	policy evictPolicy
	lots   []lot
}

// push appends a lot at the tail.
func (q *lotQueue) push(quantity Quantity, price Money) {
	if !quantity.IsPositive() {
		return
	}
	q.lots = append(q.lots, lot{Quantity: quantity, Price: price})
}

// pop removes quantity shares according to the queue policy, partially
// consuming a lot if needed. It returns the quantity that could not be
// removed because the queue ran out of lots.
func (q *lotQueue) pop(quantity Quantity) (missing Quantity) {
	if q.policy == keepAll {
		return Quantity{}
	}
	for quantity.IsPositive() && len(q.lots) > 0 {
		i := 0
		if q.policy == evictTail {
			i = len(q.lots) - 1
		}
		current := q.lots[i]
		if current.Quantity.GreaterThan(quantity) {
			// Partial sale from this lot
			q.lots[i].Quantity = current.Quantity.Sub(quantity)
			return Quantity{}
		}
		// Full sale of this lot
		quantity = quantity.Sub(current.Quantity)
		if q.policy == evictTail {
			q.lots = q.lots[:i]
		} else {
			q.lots = q.lots[1:]
		}
	}
	if quantity.IsPositive() {
		return quantity
	}
	return Quantity{}
}

// Held returns the total quantity of the lots.
func (q *lotQueue) Held() Quantity {
	var total Quantity
	for _, l := range q.lots {
		total = total.Add(l.Quantity)
	}
	return total
}

// Average returns the quantity weighted mean unit price, zero for an empty
// queue.
func (q *lotQueue) Average() Money {
	var value Money
	var total Quantity
	for _, l := range q.lots {
		value = value.Add(l.Price.Mul(l.Quantity))
		total = total.Add(l.Quantity)
	}
	if total.IsZero() {
		return value
	}
	return value.Div(total)
}

// lotBook holds the three views of one ticker.
type lotBook struct {
	all, fifo, lifo lotQueue
}

func newLotBook() *lotBook {
	return &lotBook{
		all:  lotQueue{policy: keepAll},
		fifo: lotQueue{policy: evictHead},
		lifo: lotQueue{policy: evictTail},
	}
}

func (b *lotBook) view(method CostBasisMethod) *lotQueue {
	switch method {
	case FIFO:
		return &b.fifo
	case LIFO:
		return &b.lifo
	default:
		return &b.all
	}
}

// LotTracker keeps costed lots for every ticker under the average, FIFO and
// LIFO views.
//
// The average view is pushed on every buy and never reduced by sales: it is
// the average unit price of every share ever bought.
type LotTracker struct {
	books map[string]*lotBook
}

// NewLotTracker returns an empty tracker.
func NewLotTracker() *LotTracker {
	return &LotTracker{books: make(map[string]*lotBook)}
}

func (t *LotTracker) book(ticker string) *lotBook {
	b, ok := t.books[ticker]
	if !ok {
		b = newLotBook()
		t.books[ticker] = b
	}
	return b
}

// Buy records quantity shares of ticker bought at the unit price.
func (t *LotTracker) Buy(ticker string, quantity Quantity, price Money) {
	b := t.book(ticker)
	b.all.push(quantity, price)
	b.fifo.push(quantity, price)
	b.lifo.push(quantity, price)
}

// Sell removes quantity shares of ticker from the FIFO head and the LIFO
// tail. It returns the quantity that exceeded the lots held.
func (t *LotTracker) Sell(ticker string, quantity Quantity) (missing Quantity) {
	b := t.book(ticker)
	missing = b.fifo.pop(quantity)
	b.lifo.pop(quantity)
	return missing
}

// Cost returns the average unit cost of ticker under method.
func (t *LotTracker) Cost(ticker string, method CostBasisMethod) Money {
	b, ok := t.books[ticker]
	if !ok {
		return Money{}
	}
	return b.view(method).Average()
}

// Held returns the quantity of ticker covered by the lots of method.
func (t *LotTracker) Held(ticker string, method CostBasisMethod) Quantity {
	b, ok := t.books[ticker]
	if !ok {
		return Quantity{}
	}
	return b.view(method).Held()
}

func (t *LotTracker) AverageCost(ticker string) Money { return t.Cost(ticker, AverageCost) }
func (t *LotTracker) FIFOCost(ticker string) Money    { return t.Cost(ticker, FIFO) }
func (t *LotTracker) LIFOCost(ticker string) Money    { return t.Cost(ticker, LIFO) }
