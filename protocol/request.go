package protocol

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request is the standard carrier for requests entering the engine.
// MarketID-style routing uses the security ISIN: all requests for one ISIN
// are processed by the same worker, in arrival order.
type Request struct {
	// SecurityISIN is the target security for this request (routing header).
	SecurityISIN string `json:"security_isin"`

	// Type identifies the payload type for fast routing.
	Type RequestType `json:"type"`

	// Payload contains the serialized business data (e.g. JSON bytes of
	// EnterOrderRq). Lazy deserialization keeps routing cheap.
	Payload []byte `json:"payload"`
}

// EnterOrderRq is the payload for entering or updating an order.
type EnterOrderRq struct {
	RequestID     uint64          `json:"request_id"`
	EntryType     OrderEntryType  `json:"entry_type"`
	SecurityISIN  string          `json:"security_isin"`
	OrderID       uint64          `json:"order_id"`
	Side          Side            `json:"side"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	BrokerID      uint64          `json:"broker_id"`
	ShareholderID uint64          `json:"shareholder_id"`

	// PeakSize > 0 marks the order as an iceberg order.
	PeakSize int64 `json:"peak_size,omitempty"`

	// MinExecQuantity is only meaningful on the order's first match attempt.
	MinExecQuantity int64 `json:"min_exec_quantity,omitempty"`

	// StopPrice > 0 marks the order as a stop-limit order.
	StopPrice decimal.Decimal `json:"stop_price,omitempty"`

	EntryTime time.Time `json:"entry_time"`
}

// IsIcebergRq reports whether the request describes an iceberg order.
func (rq *EnterOrderRq) IsIcebergRq() bool {
	return rq.PeakSize > 0
}

// IsStopOrderRq reports whether the request describes a stop-limit order.
func (rq *EnterOrderRq) IsStopOrderRq() bool {
	return rq.StopPrice.IsPositive()
}

// HasMinExecQuantity reports whether a minimum execution quantity was specified.
func (rq *EnterOrderRq) HasMinExecQuantity() bool {
	return rq.MinExecQuantity > 0
}

// DeleteOrderRq is the payload for cancelling an existing order.
type DeleteOrderRq struct {
	RequestID    uint64 `json:"request_id"`
	SecurityISIN string `json:"security_isin"`
	Side         Side   `json:"side"`
	OrderID      uint64 `json:"order_id"`
}

// ChangeMatchingStateRq is the payload for switching a security between
// continuous and auction matching.
type ChangeMatchingStateRq struct {
	SecurityISIN string        `json:"security_isin"`
	TargetState  MatchingState `json:"target_state"`
}
