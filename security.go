package matching

import (
	"github.com/shopspring/decimal"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// Security is one tradable instrument: its resting book, its parked stop
// orders and its matching state. All access is serialized by the engine, so
// none of the state is locked.
type Security struct {
	ISIN     string
	TickSize decimal.Decimal
	LotSize  int64

	state          protocol.MatchingState
	lastTradePrice decimal.Decimal
	book           *OrderBook
	stopBuys       *stopOrderStore
	stopSells      *stopOrderStore
}

// NewSecurity creates a security in continuous matching state. Zero tick or
// lot sizes fall back to 1.
func NewSecurity(isin string, tickSize decimal.Decimal, lotSize int64) *Security {
	if !tickSize.IsPositive() {
		tickSize = decimal.NewFromInt(1)
	}
	if lotSize <= 0 {
		lotSize = 1
	}
	return &Security{
		ISIN:      isin,
		TickSize:  tickSize,
		LotSize:   lotSize,
		state:     protocol.StateContinuous,
		book:      NewOrderBook(),
		stopBuys:  newBuyStopStore(),
		stopSells: newSellStopStore(),
	}
}

// Book returns the security's order book.
func (s *Security) Book() *OrderBook {
	return s.book
}

// State returns the current matching state.
func (s *Security) State() protocol.MatchingState {
	return s.state
}

// IsAuction reports whether the security currently matches by auction.
func (s *Security) IsAuction() bool {
	return s.state == protocol.StateAuction
}

// SetState switches the matching state. The caller runs any pending auction
// round before switching away from auction state.
func (s *Security) SetState(state protocol.MatchingState) {
	s.state = state
}

// LastTradePrice returns the price of the most recent trade, zero if the
// security has never traded.
func (s *Security) LastTradePrice() decimal.Decimal {
	return s.lastTradePrice
}

// SetLastTradePrice seeds the reference price, used when bootstrapping a
// security from market data.
func (s *Security) SetLastTradePrice(price decimal.Decimal) {
	s.lastTradePrice = price
}

// UpdateLastTradePrice moves the reference price to the last of the given
// trades.
func (s *Security) UpdateLastTradePrice(trades []*Trade) {
	if len(trades) > 0 {
		s.lastTradePrice = trades[len(trades)-1].Price
	}
}

func (s *Security) stopStoreOf(side protocol.Side) *stopOrderStore {
	if side == protocol.SideBuy {
		return s.stopBuys
	}
	return s.stopSells
}

// FindOrder returns the live order with the given id, resting or parked,
// or nil.
func (s *Security) FindOrder(side protocol.Side, orderID uint64) *Order {
	if order := s.book.FindByOrderID(side, orderID); order != nil {
		return order
	}
	return s.stopStoreOf(side).find(orderID)
}

// StopOrderCount returns the number of parked stop orders.
func (s *Security) StopOrderCount() int {
	return s.stopBuys.len() + s.stopSells.len()
}

// NewOrder runs an enter-order request: position check for sells, parking
// for untriggered stop orders (buy stops must be affordable outright but
// reserve nothing), then continuous matching or auction enqueue.
func (s *Security) NewOrder(rq *protocol.EnterOrderRq, broker *Broker, shareholder *Shareholder, matcher *Matcher) *MatchResult {
	if rq.Side == protocol.SideSell &&
		!shareholder.HasEnoughPositionsOn(s, s.committedSellQuantity(shareholder)+rq.Quantity) {
		return notEnoughPositionsResult()
	}

	order := NewOrder(rq, s, broker, shareholder)

	if order.IsStopOrder() {
		if order.Side == protocol.SideBuy && !broker.HasEnoughCredit(order.Value()) {
			return notEnoughCreditResult()
		}
		// a never-traded security has a zero reference price, which already
		// triggers any sell stop while no buy stop can be
		if !order.StopTriggered(s.lastTradePrice) {
			s.stopStoreOf(order.Side).add(rq.RequestID, order)
			return parkedResult(order)
		}
		order.ClearStopPrice()
		result := matcher.Execute(order)
		result.Activated = true
		return result
	}

	if s.IsAuction() {
		return matcher.EnqueueInAuction(order)
	}
	return matcher.Execute(order)
}

// UpdateOrder runs an update request against a resting or parked order.
// Returns rejection reasons instead of a result when the update is invalid.
func (s *Security) UpdateOrder(rq *protocol.EnterOrderRq, matcher *Matcher) (*MatchResult, []string) {
	order := s.FindOrder(rq.Side, rq.OrderID)
	if order == nil {
		return nil, []string{MsgOrderIDNotFound}
	}
	if reasons := s.verifyUpdate(rq, order); len(reasons) > 0 {
		return nil, reasons
	}

	if rq.Side == protocol.SideSell {
		committed := s.committedSellQuantity(order.Shareholder) - order.TotalQuantity()
		if !order.Shareholder.HasEnoughPositionsOn(s, committed+rq.Quantity) {
			return notEnoughPositionsResult(), nil
		}
	}

	if s.stopStoreOf(order.Side).find(order.OrderID) != nil {
		return s.updateParkedOrder(rq, order, matcher), nil
	}
	return s.updateBookOrder(rq, order, matcher), nil
}

func (s *Security) verifyUpdate(rq *protocol.EnterOrderRq, order *Order) []string {
	var reasons []string
	if order.MinExecQuantity != rq.MinExecQuantity {
		reasons = append(reasons, MsgCannotChangeMinExecQuantity)
	}
	if order.IsIceberg() && rq.PeakSize <= 0 {
		reasons = append(reasons, MsgInvalidPeakSize)
	}
	if !order.IsIceberg() && rq.PeakSize != 0 {
		reasons = append(reasons, MsgCannotSpecifyPeakSizeForNonIceberg)
	}

	if s.stopStoreOf(order.Side).find(order.OrderID) != nil {
		if s.IsAuction() {
			reasons = append(reasons, MsgCannotUpdateStopOrderInAuction)
		}
		if !rq.StopPrice.IsPositive() {
			reasons = append(reasons, MsgCannotChangeStopOrderIdentity)
		}
	} else if rq.StopPrice.IsPositive() {
		reasons = append(reasons, MsgCannotChangeStopPriceForActivated)
	}
	return reasons
}

// updateParkedOrder re-parks a stop order under its new terms and the
// updating request id, or activates it at once when the new stop price is
// already triggered. Buy stops stay unreserved, so only an outright
// affordability check applies.
func (s *Security) updateParkedOrder(rq *protocol.EnterOrderRq, order *Order, matcher *Matcher) *MatchResult {
	store := s.stopStoreOf(order.Side)

	if order.Side == protocol.SideBuy {
		newValue := rq.Price.Mul(decimal.NewFromInt(rq.Quantity))
		if !order.Broker.HasEnoughCredit(newValue) {
			return notEnoughCreditResult()
		}
	}

	store.remove(order.OrderID)
	order.UpdateFromRequest(rq)
	order.StopPrice = rq.StopPrice

	if order.StopTriggered(s.lastTradePrice) {
		order.ClearStopPrice()
		result := matcher.Execute(order)
		result.Activated = true
		return result
	}

	store.add(rq.RequestID, order)
	return parkedResult(order)
}

// updateBookOrder applies an update to a resting order. Updates that keep
// priority mutate in place; updates that lose priority re-enter matching as
// a fresh order, and on failure the original is requeued.
func (s *Security) updateBookOrder(rq *protocol.EnterOrderRq, order *Order, matcher *Matcher) *MatchResult {
	losesPriority := order.LosesPriorityOn(rq)

	if order.Side == protocol.SideBuy {
		order.Broker.IncreaseCreditBy(order.Value())
	}
	original := order.Snapshot()
	order.UpdateFromRequest(rq)

	if !losesPriority {
		if order.Side == protocol.SideBuy {
			order.Broker.DecreaseCreditBy(order.Value())
		}
		return executedResult(order, nil)
	}

	s.book.RemoveByOrderID(order.Side, order.OrderID)
	order.MarkNew()

	var result *MatchResult
	if s.IsAuction() {
		result = matcher.EnqueueInAuction(order)
	} else {
		result = matcher.Execute(order)
	}

	if result.Outcome == OutcomeNotEnoughCredit || result.Outcome == OutcomeNotSatisfied {
		revived := *original
		s.book.Enqueue(&revived)
		if revived.Side == protocol.SideBuy {
			revived.Broker.DecreaseCreditBy(revived.Value())
		}
	}
	return result
}

// DeleteOrder removes a resting or parked order. Resting buy orders refund
// their reservation; parked buy stops never reserved, so nothing moves.
func (s *Security) DeleteOrder(rq *protocol.DeleteOrderRq) []string {
	store := s.stopStoreOf(rq.Side)
	if store.find(rq.OrderID) != nil {
		if s.IsAuction() {
			return []string{MsgCannotDeleteStopOrderInAuction}
		}
		store.remove(rq.OrderID)
		return nil
	}

	order := s.book.FindByOrderID(rq.Side, rq.OrderID)
	if order == nil {
		return []string{MsgOrderIDNotFound}
	}
	if order.Side == protocol.SideBuy {
		order.Broker.IncreaseCreditBy(order.Value())
	}
	s.book.RemoveByOrderID(rq.Side, rq.OrderID)
	return nil
}

// TakeTriggeredStops removes and returns, in trigger order (buys first),
// every parked order whose stop price is met by the last trade price. Stop
// prices are cleared; the orders behave as ordinary limit orders afterwards.
func (s *Security) TakeTriggeredStops() []stopEntry {
	entries := s.stopBuys.triggered(s.lastTradePrice)
	entries = append(entries, s.stopSells.triggered(s.lastTradePrice)...)
	for _, e := range entries {
		s.stopStoreOf(e.order.Side).remove(e.order.OrderID)
		e.order.ClearStopPrice()
	}
	return entries
}

// committedSellQuantity sums the quantity the shareholder already promised
// to sell on this security, resting and parked alike, so a stop order can
// never activate into an oversold position.
func (s *Security) committedSellQuantity(sh *Shareholder) int64 {
	total := s.book.TotalSellQuantityByShareholder(sh)
	for _, e := range s.stopSells.entries() {
		if e.order.Shareholder == sh {
			total += e.order.TotalQuantity()
		}
	}
	return total
}

// tradableQuantityAt returns the quantity that would cross if the book
// opened at the given price.
func (s *Security) tradableQuantityAt(price decimal.Decimal) int64 {
	return min(
		s.book.TotalBuyQuantityAtOrAbove(price),
		s.book.TotalSellQuantityAtOrBelow(price),
	)
}

// CalculateOpeningPrice finds the equilibrium of the current book: the tick
// price maximizing tradable quantity, ties broken toward the last trade
// price. When nothing can cross it reports the last trade price with zero
// tradable quantity.
func (s *Security) CalculateOpeningPrice() (decimal.Decimal, int64) {
	bestBuy := s.book.BestOf(protocol.SideBuy)
	bestSell := s.book.BestOf(protocol.SideSell)
	if bestBuy == nil || bestSell == nil {
		return s.lastTradePrice, 0
	}

	bestPrice := decimal.Zero
	var bestQuantity int64

	consider := func(price decimal.Decimal) {
		quantity := s.tradableQuantityAt(price)
		if quantity > bestQuantity {
			bestPrice, bestQuantity = price, quantity
			return
		}
		if quantity == bestQuantity && quantity > 0 && s.lastTradePrice.IsPositive() &&
			price.Sub(s.lastTradePrice).Abs().LessThan(bestPrice.Sub(s.lastTradePrice).Abs()) {
			bestPrice = price
		}
	}

	if s.lastTradePrice.IsPositive() {
		consider(s.lastTradePrice)
	}
	// tradable quantity is zero below the best sell and above the best buy,
	// so only the overlap needs scanning
	for price := bestSell.Price; price.LessThanOrEqual(bestBuy.Price); price = price.Add(s.TickSize) {
		consider(price)
	}

	if bestQuantity == 0 {
		return s.lastTradePrice, 0
	}
	return bestPrice, bestQuantity
}

// candidateBook collects the orders willing to trade at the opening price,
// sharing order records with the live book so consumption propagates.
func (s *Security) candidateBook(openingPrice decimal.Decimal) *OrderBook {
	candidate := NewOrderBook()
	s.book.buy.forEach(func(o *Order) bool {
		if o.Price.LessThan(openingPrice) {
			return false
		}
		candidate.buy.insert(o, false)
		return true
	})
	s.book.sell.forEach(func(o *Order) bool {
		if o.Price.GreaterThan(openingPrice) {
			return false
		}
		candidate.sell.insert(o, false)
		return true
	})
	return candidate
}

// OpenAuction runs one auction round: discover the opening price, cross the
// candidate orders at it, and move the reference price. Returns the opening
// price, the tradable quantity found, and the trades.
func (s *Security) OpenAuction(matcher *Matcher) (decimal.Decimal, int64, []*Trade) {
	openingPrice, tradable := s.CalculateOpeningPrice()
	if tradable == 0 {
		return openingPrice, 0, nil
	}
	trades := matcher.AuctionMatch(s, s.candidateBook(openingPrice), openingPrice)
	s.UpdateLastTradePrice(trades)
	return openingPrice, tradable, trades
}
