package protocol

import "github.com/shopspring/decimal"

// Event is implemented by every notification the engine emits. The engine
// only produces events as data; publication (Kafka, in-memory, ...) is the
// caller's concern.
type Event interface {
	// EventType returns a stable name used as the wire discriminator.
	EventType() string
}

// TradeDTO is the wire representation of a single trade inside an
// OrderExecutedEvent.
type TradeDTO struct {
	SecurityISIN string          `json:"security_isin"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	BuyOrderID   uint64          `json:"buy_order_id"`
	SellOrderID  uint64          `json:"sell_order_id"`
}

// OrderAcceptedEvent signals that a new order request passed validation and
// was taken in (queued, matched, or stored as an inactive stop order).
type OrderAcceptedEvent struct {
	RequestID uint64 `json:"request_id"`
	OrderID   uint64 `json:"order_id"`
}

func (OrderAcceptedEvent) EventType() string { return "order_accepted" }

// OrderUpdatedEvent signals that an update request was applied.
type OrderUpdatedEvent struct {
	RequestID uint64 `json:"request_id"`
	OrderID   uint64 `json:"order_id"`
}

func (OrderUpdatedEvent) EventType() string { return "order_updated" }

// OrderDeletedEvent signals that an order was removed on request.
type OrderDeletedEvent struct {
	RequestID uint64 `json:"request_id"`
	OrderID   uint64 `json:"order_id"`
}

func (OrderDeletedEvent) EventType() string { return "order_deleted" }

// OrderRejectedEvent carries the aggregated rejection reasons for a request.
type OrderRejectedEvent struct {
	RequestID uint64   `json:"request_id"`
	OrderID   uint64   `json:"order_id"`
	Reasons   []string `json:"reasons"`
}

func (OrderRejectedEvent) EventType() string { return "order_rejected" }

// OrderExecutedEvent reports the trades produced by one match attempt.
type OrderExecutedEvent struct {
	RequestID uint64     `json:"request_id"`
	OrderID   uint64     `json:"order_id"`
	Trades    []TradeDTO `json:"trades"`
}

func (OrderExecutedEvent) EventType() string { return "order_executed" }

// OrderActivatedEvent signals that a stop order's trigger fired.
type OrderActivatedEvent struct {
	RequestID uint64 `json:"request_id"`
	OrderID   uint64 `json:"order_id"`
}

func (OrderActivatedEvent) EventType() string { return "order_activated" }

// TradeEvent reports a single trade crossed during an auction round.
type TradeEvent struct {
	SecurityISIN string          `json:"security_isin"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	BuyOrderID   uint64          `json:"buy_order_id"`
	SellOrderID  uint64          `json:"sell_order_id"`
}

func (TradeEvent) EventType() string { return "trade" }

// OpeningPriceEvent reports the current equilibrium price and the quantity
// tradable at it. Published after every request touching a security in
// auction state.
type OpeningPriceEvent struct {
	SecurityISIN     string          `json:"security_isin"`
	OpeningPrice     decimal.Decimal `json:"opening_price"`
	TradableQuantity int64           `json:"tradable_quantity"`
}

func (OpeningPriceEvent) EventType() string { return "opening_price" }

// SecurityStateChangedEvent signals a matching-state transition.
type SecurityStateChangedEvent struct {
	SecurityISIN string        `json:"security_isin"`
	State        MatchingState `json:"state"`
}

func (SecurityStateChangedEvent) EventType() string { return "security_state_changed" }
