package matching

import (
	"github.com/shopspring/decimal"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// Trade records one execution between a buy and a sell order. Buy and Sell
// are pre-trade snapshots, so a rollback can reinstate the exact book state.
type Trade struct {
	Security *Security
	Price    decimal.Decimal
	Quantity int64
	Buy      *Order
	Sell     *Order
}

// NewTrade records an execution. The snapshots are taken before either live
// order is decremented.
func NewTrade(security *Security, price decimal.Decimal, quantity int64, buy, sell *Order) *Trade {
	return &Trade{
		Security: security,
		Price:    price,
		Quantity: quantity,
		Buy:      buy.SnapshotWithQuantity(buy.TotalQuantity()),
		Sell:     sell.SnapshotWithQuantity(sell.TotalQuantity()),
	}
}

// Value returns price x quantity of the trade.
func (t *Trade) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// DecreaseBuyersCredit charges the buyer's broker for the trade.
func (t *Trade) DecreaseBuyersCredit() {
	t.Buy.Broker.DecreaseCreditBy(t.Value())
}

// IncreaseSellersCredit pays the seller's broker for the trade.
func (t *Trade) IncreaseSellersCredit() {
	t.Sell.Broker.IncreaseCreditBy(t.Value())
}

// DTO converts the trade for event publication.
func (t *Trade) DTO() protocol.TradeDTO {
	return protocol.TradeDTO{
		SecurityISIN: t.Security.ISIN,
		Price:        t.Price,
		Quantity:     t.Quantity,
		BuyOrderID:   t.Buy.OrderID,
		SellOrderID:  t.Sell.OrderID,
	}
}

// MatchingOutcome summarizes how a match attempt ended.
type MatchingOutcome uint8

const (
	// OutcomeExecuted means the attempt produced trades (possibly queuing a
	// remainder).
	OutcomeExecuted MatchingOutcome = iota
	// OutcomeAccepted means no trades happened; the order was queued or, for
	// an untriggered stop order, parked.
	OutcomeAccepted
	// OutcomeNotEnoughCredit means the buyer's broker could not fund the
	// attempt; all effects were rolled back.
	OutcomeNotEnoughCredit
	// OutcomeNotEnoughPositions means the seller's shareholder does not hold
	// enough shares.
	OutcomeNotEnoughPositions
	// OutcomeNotSatisfied means the first attempt filled less than the
	// minimum execution quantity; all effects were rolled back.
	OutcomeNotSatisfied
	// OutcomeParked means a stop order was accepted and parked, waiting for
	// its trigger.
	OutcomeParked
)

// MatchResult is the outcome of one match attempt. Activated reports that
// the request put a stop order straight into matching (its trigger was
// already met).
type MatchResult struct {
	Outcome   MatchingOutcome
	Remainder *Order
	Trades    []*Trade
	Activated bool
}

func executedResult(remainder *Order, trades []*Trade) *MatchResult {
	outcome := OutcomeExecuted
	if len(trades) == 0 {
		outcome = OutcomeAccepted
	}
	return &MatchResult{Outcome: outcome, Remainder: remainder, Trades: trades}
}

func notEnoughCreditResult() *MatchResult {
	return &MatchResult{Outcome: OutcomeNotEnoughCredit}
}

func notEnoughPositionsResult() *MatchResult {
	return &MatchResult{Outcome: OutcomeNotEnoughPositions}
}

func notSatisfiedResult() *MatchResult {
	return &MatchResult{Outcome: OutcomeNotSatisfied}
}

func parkedResult(order *Order) *MatchResult {
	return &MatchResult{Outcome: OutcomeParked, Remainder: order}
}
