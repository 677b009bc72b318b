package matching

import (
	"github.com/shopspring/decimal"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// Matcher runs order execution against a security's book. It is stateless;
// all state lives in the security, its book and the owning parties. The
// caller serializes access per security.
type Matcher struct{}

// NewMatcher creates a matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Execute runs an order through continuous matching: match against the
// opposite side in priority order, then queue any remainder. Buy remainders
// reserve their full value from the broker before queuing. Failed attempts
// (credit, minimum execution quantity) leave no trace.
func (m *Matcher) Execute(order *Order) *MatchResult {
	book := order.Security.Book()

	result := m.match(book, order)
	if result.Outcome == OutcomeNotEnoughCredit || result.Outcome == OutcomeNotSatisfied {
		return result
	}

	if order.TotalQuantity() > 0 {
		if order.Side == protocol.SideBuy {
			if !order.Broker.HasEnoughCredit(order.Value()) {
				m.rollback(book, order, result.Trades)
				return notEnoughCreditResult()
			}
			order.Broker.DecreaseCreditBy(order.Value())
		}
		book.Enqueue(order)
	}
	order.UnmarkFirstEntry()

	m.applyPositions(result.Trades)
	return result
}

// match runs the continuous matching loop. Trades execute at the resting
// order's price. The buyer's broker is charged per trade; the seller's
// broker is paid per trade. On failure everything is undone.
func (m *Matcher) match(book *OrderBook, order *Order) *MatchResult {
	var trades []*Trade
	prevQuantity := order.TotalQuantity()

	for order.RemainingQuantity() > 0 {
		resting := book.BestOf(order.Side.Opposite())
		if resting == nil || !order.Matches(resting) {
			break
		}

		quantity := min(order.RemainingQuantity(), resting.RemainingQuantity())
		trade := m.newTrade(order, resting, resting.Price, quantity)

		if order.Side == protocol.SideBuy {
			if !order.Broker.HasEnoughCredit(trade.Value()) {
				m.rollback(book, order, trades)
				return notEnoughCreditResult()
			}
			trade.DecreaseBuyersCredit()
		}
		trade.IncreaseSellersCredit()
		trades = append(trades, trade)

		m.applyQuantities(book, order, resting)
	}

	if order.IsFirstEntry() && !order.MinExecSatisfied(prevQuantity) {
		m.rollback(book, order, trades)
		return notSatisfiedResult()
	}

	return executedResult(order, trades)
}

func (m *Matcher) newTrade(order, resting *Order, price decimal.Decimal, quantity int64) *Trade {
	if order.Side == protocol.SideBuy {
		return NewTrade(order.Security, price, quantity, order, resting)
	}
	return NewTrade(order.Security, price, quantity, resting, order)
}

// applyQuantities consumes matched quantity from the incoming and resting
// orders and maintains the book: a fully displayed-consumed resting iceberg
// replenishes and requeues at the back of its price level.
func (m *Matcher) applyQuantities(book *OrderBook, order, resting *Order) {
	restingQuantity := resting.RemainingQuantity()
	if order.RemainingQuantity() >= restingQuantity {
		order.DecreaseQuantity(restingQuantity)
		resting.DecreaseQuantity(restingQuantity)
		book.RemoveFirst(resting.Side)
		if resting.IsIceberg() && resting.TotalQuantity() > 0 {
			book.Enqueue(resting)
		}
	} else {
		resting.DecreaseQuantity(order.RemainingQuantity())
		order.MakeQuantityZero()
	}
}

// rollback undoes a failed match attempt: credit movements are reversed and
// consumed resting orders are reinstated from their pre-trade snapshots in
// reverse removal order, rebuilding the book exactly. The incoming order is
// discarded by the caller, so its consumed quantity is not restored.
func (m *Matcher) rollback(book *OrderBook, order *Order, trades []*Trade) {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.Value())
	}

	if order.Side == protocol.SideBuy {
		order.Broker.IncreaseCreditBy(total)
		for i := len(trades) - 1; i >= 0; i-- {
			trades[i].Sell.Broker.DecreaseCreditBy(trades[i].Value())
			book.RestoreSellOrder(trades[i].Sell)
		}
	} else {
		order.Broker.DecreaseCreditBy(total)
		for i := len(trades) - 1; i >= 0; i-- {
			book.RestoreBuyOrder(trades[i].Buy)
		}
	}
}

// EnqueueInAuction rests an order without matching, the only entry path
// while a security runs in auction state. Buy orders reserve their full
// value up front so the auction round never needs a credit check.
func (m *Matcher) EnqueueInAuction(order *Order) *MatchResult {
	if order.Side == protocol.SideBuy {
		if !order.Broker.HasEnoughCredit(order.Value()) {
			return notEnoughCreditResult()
		}
		order.Broker.DecreaseCreditBy(order.Value())
	}
	order.Security.Book().Enqueue(order)
	order.UnmarkFirstEntry()
	return executedResult(order, nil)
}

// AuctionMatch crosses the candidate book at the fixed opening price. The
// candidate book shares order records with the live book, so consumed
// quantity propagates; fully consumed orders are removed from both views and
// replenished icebergs requeue at the back of both. Buyers reserved at their
// limit price, so each trade refunds them the surplus over the opening
// price.
func (m *Matcher) AuctionMatch(security *Security, candidate *OrderBook, openingPrice decimal.Decimal) []*Trade {
	var trades []*Trade

	for {
		buy := candidate.BestOf(protocol.SideBuy)
		sell := candidate.BestOf(protocol.SideSell)
		if buy == nil || sell == nil {
			break
		}

		quantity := min(buy.RemainingQuantity(), sell.RemainingQuantity())
		trade := NewTrade(security, openingPrice, quantity, buy, sell)
		trade.IncreaseSellersCredit()
		surplus := buy.Price.Sub(openingPrice).Mul(decimal.NewFromInt(quantity))
		buy.Broker.IncreaseCreditBy(surplus)
		trades = append(trades, trade)

		m.consumeInAuction(candidate, security.Book(), buy, quantity)
		m.consumeInAuction(candidate, security.Book(), sell, quantity)
	}

	m.applyPositions(trades)
	return trades
}

func (m *Matcher) consumeInAuction(candidate, live *OrderBook, order *Order, quantity int64) {
	order.DecreaseQuantity(quantity)
	if order.RemainingQuantity() > 0 {
		return
	}
	candidate.RemoveFirst(order.Side)
	live.RemoveByOrderID(order.Side, order.OrderID)
	if order.IsIceberg() && order.TotalQuantity() > 0 {
		candidate.Enqueue(order)
		live.Enqueue(order)
	}
}

func (m *Matcher) applyPositions(trades []*Trade) {
	for _, t := range trades {
		t.Buy.Shareholder.IncPosition(t.Security, t.Quantity)
		t.Sell.Shareholder.DecPosition(t.Security, t.Quantity)
	}
}
