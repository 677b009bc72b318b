package matching

import (
	"github.com/shopspring/decimal"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// DepthItem is one aggregated price level of a market depth view. Quantity
// only counts displayed quantities; iceberg hidden remainders stay hidden.
type DepthItem struct {
	Price    decimal.Decimal
	Quantity int64
	Orders   int
}

// OrderBook is the resting-order state of one security: a buy side and a
// sell side in price/time priority.
type OrderBook struct {
	buy  *bookSide
	sell *bookSide
}

// NewOrderBook creates an empty book.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		buy:  newBuySide(),
		sell: newSellSide(),
	}
}

func (b *OrderBook) sideOf(side protocol.Side) *bookSide {
	if side == protocol.SideBuy {
		return b.buy
	}
	return b.sell
}

// Enqueue rests an order at the back of its price level.
func (b *OrderBook) Enqueue(order *Order) {
	order.Queue()
	b.sideOf(order.Side).insert(order, false)
}

// BestOf returns the best-priority order on the given side, or nil.
func (b *OrderBook) BestOf(side protocol.Side) *Order {
	return b.sideOf(side).peekBest()
}

// RemoveFirst removes the best-priority order on the given side.
func (b *OrderBook) RemoveFirst(side protocol.Side) *Order {
	return b.sideOf(side).popBest()
}

// FindByOrderID returns the resting order with the given id, or nil.
func (b *OrderBook) FindByOrderID(side protocol.Side, orderID uint64) *Order {
	return b.sideOf(side).find(orderID)
}

// RemoveByOrderID takes the order with the given id out of the book and
// returns it, or nil if it is not resting.
func (b *OrderBook) RemoveByOrderID(side protocol.Side, orderID uint64) *Order {
	return b.sideOf(side).remove(orderID)
}

// RestoreBuyOrder reinstates a buy order from its pre-trade snapshot at the
// front of its price level. Callers restore in reverse removal order, which
// rebuilds the original FIFO exactly.
func (b *OrderBook) RestoreBuyOrder(snapshot *Order) {
	b.restore(b.buy, snapshot)
}

// RestoreSellOrder reinstates a sell order from its pre-trade snapshot at
// the front of its price level.
func (b *OrderBook) RestoreSellOrder(snapshot *Order) {
	b.restore(b.sell, snapshot)
}

func (b *OrderBook) restore(side *bookSide, snapshot *Order) {
	side.remove(snapshot.OrderID)
	revived := *snapshot
	revived.Status = StatusQueued
	side.insert(&revived, true)
}

// TotalBuyQuantityAtOrAbove sums the total quantity (hidden parts included)
// of buy orders willing to trade at the given price.
func (b *OrderBook) TotalBuyQuantityAtOrAbove(price decimal.Decimal) int64 {
	var total int64
	b.buy.forEach(func(o *Order) bool {
		if o.Price.LessThan(price) {
			return false
		}
		total += o.TotalQuantity()
		return true
	})
	return total
}

// TotalSellQuantityAtOrBelow sums the total quantity of sell orders willing
// to trade at the given price.
func (b *OrderBook) TotalSellQuantityAtOrBelow(price decimal.Decimal) int64 {
	var total int64
	b.sell.forEach(func(o *Order) bool {
		if o.Price.GreaterThan(price) {
			return false
		}
		total += o.TotalQuantity()
		return true
	})
	return total
}

// TotalSellQuantityByShareholder sums the total quantity the shareholder
// already committed to resting sell orders on this book.
func (b *OrderBook) TotalSellQuantityByShareholder(sh *Shareholder) int64 {
	var total int64
	b.sell.forEach(func(o *Order) bool {
		if o.Shareholder == sh {
			total += o.TotalQuantity()
		}
		return true
	})
	return total
}

// WorstBuyPrice returns the lowest queued buy price, false if none.
func (b *OrderBook) WorstBuyPrice() (decimal.Decimal, bool) {
	return b.buy.worstPrice()
}

// WorstSellPrice returns the highest queued sell price, false if none.
func (b *OrderBook) WorstSellPrice() (decimal.Decimal, bool) {
	return b.sell.worstPrice()
}

// BuyOrders returns the buy side in priority order.
func (b *OrderBook) BuyOrders() []*Order {
	return b.buy.ordersInPriority()
}

// SellOrders returns the sell side in priority order.
func (b *OrderBook) SellOrders() []*Order {
	return b.sell.ordersInPriority()
}

// OrderCount returns the number of resting orders on both sides.
func (b *OrderBook) OrderCount() int {
	return b.buy.orderCount() + b.sell.orderCount()
}

// Depth returns the aggregated market depth of one side up to limit levels.
func (b *OrderBook) Depth(side protocol.Side, limit int) []DepthItem {
	s := b.sideOf(side)
	result := make([]DepthItem, 0, limit)

	for el := s.levels.Front(); el != nil && len(result) < limit; el = el.Next() {
		level, _ := el.Value.(*priceLevel)
		item := DepthItem{Price: level.price}
		for node := level.orders.Front(); node != nil; node = node.Next() {
			order, _ := node.Value.(*Order)
			item.Quantity += order.RemainingQuantity()
			item.Orders++
		}
		result = append(result, item)
	}

	return result
}
