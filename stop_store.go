package matching

import (
	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// stopOrderKey orders parked stop orders by trigger priority: stop price
// first, then arrival (request id) among equal stop prices.
type stopOrderKey struct {
	stopPrice decimal.Decimal
	requestID uint64
}

// stopEntry pairs a parked order with the request id that created it.
type stopEntry struct {
	requestID uint64
	order     *Order
}

// stopOrderStore keeps stop orders of one side sorted in trigger order. Buy
// stops trigger when the last trade price rises to them, so they sort by
// ascending stop price; sell stops sort descending. The triggered orders of
// a store are always a prefix of its iteration order.
type stopOrderStore struct {
	orders    *treemap.TreeMap[stopOrderKey, *Order]
	byOrderID map[uint64]stopOrderKey
}

// newBuyStopStore creates a store sorted by ascending stop price.
func newBuyStopStore() *stopOrderStore {
	return &stopOrderStore{
		orders: treemap.NewWithKeyCompare[stopOrderKey, *Order](func(a, b stopOrderKey) bool {
			if !a.stopPrice.Equal(b.stopPrice) {
				return a.stopPrice.LessThan(b.stopPrice)
			}
			return a.requestID < b.requestID
		}),
		byOrderID: make(map[uint64]stopOrderKey),
	}
}

// newSellStopStore creates a store sorted by descending stop price.
func newSellStopStore() *stopOrderStore {
	return &stopOrderStore{
		orders: treemap.NewWithKeyCompare[stopOrderKey, *Order](func(a, b stopOrderKey) bool {
			if !a.stopPrice.Equal(b.stopPrice) {
				return a.stopPrice.GreaterThan(b.stopPrice)
			}
			return a.requestID < b.requestID
		}),
		byOrderID: make(map[uint64]stopOrderKey),
	}
}

// add parks an order under the request id that created it.
func (s *stopOrderStore) add(requestID uint64, order *Order) {
	key := stopOrderKey{stopPrice: order.StopPrice, requestID: requestID}
	s.orders.Set(key, order)
	s.byOrderID[order.OrderID] = key
}

// find returns the parked order with the given order id, or nil.
func (s *stopOrderStore) find(orderID uint64) *Order {
	key, ok := s.byOrderID[orderID]
	if !ok {
		return nil
	}
	order, _ := s.orders.Get(key)
	return order
}

// remove takes the parked order with the given order id out of the store.
func (s *stopOrderStore) remove(orderID uint64) *Order {
	key, ok := s.byOrderID[orderID]
	if !ok {
		return nil
	}
	order, _ := s.orders.Get(key)
	s.orders.Del(key)
	delete(s.byOrderID, orderID)
	return order
}

func (s *stopOrderStore) len() int {
	return s.orders.Len()
}

// triggered returns, in trigger order, the parked entries whose stop price
// is met by the last trade price.
func (s *stopOrderStore) triggered(lastTradePrice decimal.Decimal) []stopEntry {
	var result []stopEntry
	for it := s.orders.Iterator(); it.Valid(); it.Next() {
		if !it.Value().StopTriggered(lastTradePrice) {
			break
		}
		result = append(result, stopEntry{requestID: it.Key().requestID, order: it.Value()})
	}
	return result
}

// entries returns all parked entries in trigger order.
func (s *stopOrderStore) entries() []stopEntry {
	result := make([]stopEntry, 0, s.orders.Len())
	for it := s.orders.Iterator(); it.Valid(); it.Next() {
		result = append(result, stopEntry{requestID: it.Key().requestID, order: it.Value()})
	}
	return result
}
