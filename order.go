package matching

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// OrderStatus tracks where an order is in its lifecycle.
type OrderStatus uint8

const (
	// StatusNew marks an order that has not been queued yet. A new iceberg
	// order exposes its full quantity while matching on entry.
	StatusNew OrderStatus = 0
	// StatusQueued marks an order resting in the book. A queued iceberg
	// order only exposes its displayed quantity.
	StatusQueued OrderStatus = 1
	// StatusSnapshot marks an immutable point-in-time copy used for trade
	// recording and rollback. Snapshots never alias the live order.
	StatusSnapshot OrderStatus = 2
)

// Order is the state of an order known to one security. Plain and iceberg
// orders share the record; peakSize > 0 enables the iceberg display
// behavior. StopPrice > 0 marks a stop-limit order before activation.
type Order struct {
	OrderID     uint64
	Security    *Security
	Side        protocol.Side
	Quantity    int64
	Price       decimal.Decimal
	Broker      *Broker
	Shareholder *Shareholder
	EntryTime   time.Time
	Status      OrderStatus

	// MinExecQuantity is only enforced on the order's first match attempt.
	MinExecQuantity int64

	// StopPrice is zero for ordinary orders. It is cleared on activation.
	StopPrice decimal.Decimal

	peakSize   int64
	displayed  int64
	firstEntry bool
}

// NewOrder builds an order from an enter-order request. A positive peak size
// makes it an iceberg order.
func NewOrder(rq *protocol.EnterOrderRq, security *Security, broker *Broker, shareholder *Shareholder) *Order {
	entryTime := rq.EntryTime
	if entryTime.IsZero() {
		entryTime = time.Now()
	}
	return &Order{
		OrderID:         rq.OrderID,
		Security:        security,
		Side:            rq.Side,
		Quantity:        rq.Quantity,
		Price:           rq.Price,
		Broker:          broker,
		Shareholder:     shareholder,
		EntryTime:       entryTime,
		Status:          StatusNew,
		MinExecQuantity: rq.MinExecQuantity,
		StopPrice:       rq.StopPrice,
		peakSize:        rq.PeakSize,
		firstEntry:      true,
	}
}

// IsIceberg reports whether the order carries iceberg display behavior.
func (o *Order) IsIceberg() bool {
	return o.peakSize > 0
}

// IsStopOrder reports whether the order has an unactivated stop trigger.
func (o *Order) IsStopOrder() bool {
	return o.StopPrice.IsPositive()
}

// PeakSize returns the iceberg peak size (zero for plain orders).
func (o *Order) PeakSize() int64 {
	return o.peakSize
}

// DisplayedQuantity returns the currently displayed iceberg quantity.
func (o *Order) DisplayedQuantity() int64 {
	return o.displayed
}

// RemainingQuantity returns the matchable quantity: the displayed quantity
// for a queued iceberg order, the full remaining quantity otherwise.
func (o *Order) RemainingQuantity() int64 {
	if o.IsIceberg() && o.Status != StatusNew {
		return o.displayed
	}
	return o.Quantity
}

// TotalQuantity returns the full remaining quantity, hidden part included.
func (o *Order) TotalQuantity() int64 {
	return o.Quantity
}

// Value returns price x remaining total quantity, the credit needed to rest
// this order on the buy side.
func (o *Order) Value() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

// DecreaseQuantity consumes matched quantity. Decreasing more than is
// matchable is a programming error, not a recoverable outcome.
func (o *Order) DecreaseQuantity(amount int64) {
	if o.IsIceberg() && o.Status != StatusNew {
		if amount > o.displayed {
			logger.Error("iceberg order decreased below displayed quantity",
				zap.Uint64("order_id", o.OrderID), zap.Int64("amount", amount),
				zap.Int64("displayed", o.displayed))
			panic("matching: order quantity decreased below zero")
		}
		o.Quantity -= amount
		o.displayed -= amount
		return
	}
	if amount > o.Quantity {
		logger.Error("order decreased below remaining quantity",
			zap.Uint64("order_id", o.OrderID), zap.Int64("amount", amount),
			zap.Int64("quantity", o.Quantity))
		panic("matching: order quantity decreased below zero")
	}
	o.Quantity -= amount
}

// MakeQuantityZero consumes the whole order.
func (o *Order) MakeQuantityZero() {
	o.Quantity = 0
	o.displayed = 0
}

// Replenish refills the displayed quantity from the hidden remainder.
func (o *Order) Replenish() {
	o.displayed = min(o.Quantity, o.peakSize)
}

// Queue marks the order as resting and sets up the iceberg display.
func (o *Order) Queue() {
	if o.IsIceberg() {
		o.Replenish()
	}
	o.Status = StatusQueued
}

// MarkNew returns the order to the incoming state, so a re-entered iceberg
// matches with its full quantity again.
func (o *Order) MarkNew() {
	o.Status = StatusNew
}

// Matches reports whether the order's limit accepts the other side's price.
func (o *Order) Matches(other *Order) bool {
	if o.Side == protocol.SideBuy {
		return o.Price.GreaterThanOrEqual(other.Price)
	}
	return o.Price.LessThanOrEqual(other.Price)
}

// StopTriggered evaluates the stop trigger against the last trade price:
// buy orders activate when stop <= last, sell orders when stop >= last.
func (o *Order) StopTriggered(lastTradePrice decimal.Decimal) bool {
	if o.Side == protocol.SideBuy {
		return o.StopPrice.LessThanOrEqual(lastTradePrice)
	}
	return o.StopPrice.GreaterThanOrEqual(lastTradePrice)
}

// ClearStopPrice drops the stop attribute; the order behaves as an ordinary
// limit order afterwards.
func (o *Order) ClearStopPrice() {
	o.StopPrice = decimal.Zero
}

// IsFirstEntry reports whether the order has never attempted a match.
func (o *Order) IsFirstEntry() bool {
	return o.firstEntry
}

// UnmarkFirstEntry records that a match attempt happened; the minimum
// execution quantity is not enforced on later attempts.
func (o *Order) UnmarkFirstEntry() {
	o.firstEntry = false
}

// MinExecSatisfied reports whether the first match attempt filled at least
// the minimum execution quantity, given the quantity before the attempt.
func (o *Order) MinExecSatisfied(prevQuantity int64) bool {
	return o.MinExecQuantity == 0 || prevQuantity-o.Quantity >= o.MinExecQuantity
}

// LosesPriorityOn reports whether applying the update request forfeits the
// order's queue position.
func (o *Order) LosesPriorityOn(rq *protocol.EnterOrderRq) bool {
	return rq.Quantity > o.Quantity ||
		!rq.Price.Equal(o.Price) ||
		(o.IsIceberg() && rq.PeakSize > o.peakSize)
}

// UpdateFromRequest applies the updatable fields of an update request.
func (o *Order) UpdateFromRequest(rq *protocol.EnterOrderRq) {
	o.Quantity = rq.Quantity
	o.Price = rq.Price
	if !o.IsIceberg() {
		return
	}
	if rq.PeakSize > o.peakSize {
		o.displayed = min(o.Quantity, rq.PeakSize)
	} else if rq.PeakSize < o.peakSize {
		o.displayed = min(o.displayed, rq.PeakSize)
	}
	o.peakSize = rq.PeakSize
}

// Snapshot returns an immutable deep copy of the order. The copy shares the
// broker/shareholder/security handles (those are identities, not state) but
// never aliases the live order itself.
func (o *Order) Snapshot() *Order {
	return o.SnapshotWithQuantity(o.Quantity)
}

// SnapshotWithQuantity returns a snapshot carrying the given remaining
// quantity, used to record the pre-trade state of an order.
func (o *Order) SnapshotWithQuantity(quantity int64) *Order {
	cpy := *o
	cpy.Status = StatusSnapshot
	cpy.Quantity = quantity
	if cpy.IsIceberg() {
		if o.Status == StatusQueued {
			// keep the actual displayed quantity so a rollback restore
			// rebuilds a mid-replenish iceberg exactly
			cpy.displayed = min(o.displayed, quantity)
		} else {
			cpy.displayed = min(quantity, cpy.peakSize)
		}
	}
	return &cpy
}
