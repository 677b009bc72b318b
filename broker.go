package matching

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Broker funds buy orders across securities. Credit mutations are only
// performed by request handling, which is serialized per security; the
// rollback procedure keeps them atomic with the owning request.
type Broker struct {
	BrokerID uint64
	credit   decimal.Decimal
}

// NewBroker creates a broker with the given initial credit.
func NewBroker(id uint64, credit decimal.Decimal) *Broker {
	return &Broker{BrokerID: id, credit: credit}
}

// Credit returns the broker's current credit.
func (b *Broker) Credit() decimal.Decimal {
	return b.credit
}

// HasEnoughCredit reports whether the broker can fund the given value.
func (b *Broker) HasEnoughCredit(value decimal.Decimal) bool {
	return b.credit.GreaterThanOrEqual(value)
}

// IncreaseCreditBy adds value to the broker's credit.
func (b *Broker) IncreaseCreditBy(value decimal.Decimal) {
	b.credit = b.credit.Add(value)
}

// DecreaseCreditBy subtracts value from the broker's credit. Driving credit
// below zero is a defect: every decrease must be guarded by HasEnoughCredit
// or undo a matching increase.
func (b *Broker) DecreaseCreditBy(value decimal.Decimal) {
	next := b.credit.Sub(value)
	if next.IsNegative() {
		logger.Error("broker credit driven below zero",
			zap.Uint64("broker_id", b.BrokerID),
			zap.String("credit", b.credit.String()),
			zap.String("value", value.String()))
		panic("matching: broker credit driven below zero")
	}
	b.credit = next
}
