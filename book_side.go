package matching

import (
	"container/list"

	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// priceLevel holds the FIFO of resting orders at one price.
type priceLevel struct {
	price  decimal.Decimal
	orders *list.List
}

// bookSide is one side of an order book: a skip list of price levels kept in
// priority order (buy descending, sell ascending), with per-level FIFOs and
// an order-id index.
//
// Levels carry no aggregated quantities. Order quantities mutate in place
// while matching, and the same order records are shared with auction
// candidate views, so sums are always computed by iteration.
type bookSide struct {
	side       protocol.Side
	levels     *skiplist.SkipList
	levelIndex map[string]*skiplist.Element
	elems      map[uint64]*list.Element
}

// newBuySide creates the bid side, sorted by price in descending order
// (highest price first).
func newBuySide() *bookSide {
	return &bookSide{
		side: protocol.SideBuy,
		levels: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(decimal.Decimal)
			d2, _ := rhs.(decimal.Decimal)

			if d1.LessThan(d2) {
				return 1
			} else if d1.GreaterThan(d2) {
				return -1
			}

			return 0
		})),
		levelIndex: make(map[string]*skiplist.Element),
		elems:      make(map[uint64]*list.Element),
	}
}

// newSellSide creates the ask side, sorted by price in ascending order
// (lowest price first).
func newSellSide() *bookSide {
	return &bookSide{
		side: protocol.SideSell,
		levels: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			d1, _ := lhs.(decimal.Decimal)
			d2, _ := rhs.(decimal.Decimal)

			if d1.GreaterThan(d2) {
				return 1
			} else if d1.LessThan(d2) {
				return -1
			}

			return 0
		})),
		levelIndex: make(map[string]*skiplist.Element),
		elems:      make(map[uint64]*list.Element),
	}
}

// insert queues an order at its price level, at the back by default or at
// the front when restoring rolled-back state.
func (s *bookSide) insert(order *Order, front bool) {
	key := order.Price.String()
	el, ok := s.levelIndex[key]
	if !ok {
		level := &priceLevel{price: order.Price, orders: list.New()}
		el = s.levels.Set(order.Price, level)
		s.levelIndex[key] = el
	}

	level, _ := el.Value.(*priceLevel)
	if front {
		s.elems[order.OrderID] = level.orders.PushFront(order)
	} else {
		s.elems[order.OrderID] = level.orders.PushBack(order)
	}
}

// find returns the resting order with the given id, or nil.
func (s *bookSide) find(orderID uint64) *Order {
	el, ok := s.elems[orderID]
	if !ok {
		return nil
	}
	order, _ := el.Value.(*Order)
	return order
}

// remove takes the order with the given id out of the book. It cleans up the
// price level if it becomes empty. Returns nil if the order is not resting.
func (s *bookSide) remove(orderID uint64) *Order {
	el, ok := s.elems[orderID]
	if !ok {
		return nil
	}
	order, _ := el.Value.(*Order)

	key := order.Price.String()
	levelEl := s.levelIndex[key]
	level, _ := levelEl.Value.(*priceLevel)
	level.orders.Remove(el)
	delete(s.elems, orderID)

	if level.orders.Len() == 0 {
		s.levels.RemoveElement(levelEl)
		delete(s.levelIndex, key)
	}

	return order
}

// peekBest returns the order at the front of the best price level without
// removing it.
func (s *bookSide) peekBest() *Order {
	el := s.levels.Front()
	if el == nil {
		return nil
	}
	level, _ := el.Value.(*priceLevel)
	order, _ := level.orders.Front().Value.(*Order)
	return order
}

// popBest removes and returns the order at the front of the best price level.
func (s *bookSide) popBest() *Order {
	order := s.peekBest()
	if order != nil {
		s.remove(order.OrderID)
	}
	return order
}

// worstPrice returns the price of the worst level on this side, with false
// if the side is empty.
func (s *bookSide) worstPrice() (decimal.Decimal, bool) {
	el := s.levels.Back()
	if el == nil {
		return decimal.Zero, false
	}
	level, _ := el.Value.(*priceLevel)
	return level.price, true
}

// orderCount returns the number of resting orders on this side.
func (s *bookSide) orderCount() int {
	return len(s.elems)
}

// forEach visits every resting order in priority order. Returning false
// stops the walk.
func (s *bookSide) forEach(fn func(*Order) bool) {
	for el := s.levels.Front(); el != nil; el = el.Next() {
		level, _ := el.Value.(*priceLevel)
		for node := level.orders.Front(); node != nil; node = node.Next() {
			order, _ := node.Value.(*Order)
			if !fn(order) {
				return
			}
		}
	}
}

// ordersInPriority returns all resting orders in priority order.
func (s *bookSide) ordersInPriority() []*Order {
	result := make([]*Order, 0, len(s.elems))
	s.forEach(func(o *Order) bool {
		result = append(result, o)
		return true
	})
	return result
}
