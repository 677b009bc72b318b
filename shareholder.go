package matching

import "go.uber.org/zap"

// Shareholder owns share positions across securities, keyed by ISIN.
type Shareholder struct {
	ShareholderID uint64
	positions     map[string]int64
}

// NewShareholder creates a shareholder with no positions.
func NewShareholder(id uint64) *Shareholder {
	return &Shareholder{
		ShareholderID: id,
		positions:     make(map[string]int64),
	}
}

// PositionOn returns the shareholder's position on the given security.
func (sh *Shareholder) PositionOn(security *Security) int64 {
	return sh.positions[security.ISIN]
}

// HasEnoughPositionsOn reports whether the shareholder holds at least the
// total quantity needed on the given security.
func (sh *Shareholder) HasEnoughPositionsOn(security *Security, totalNeeded int64) bool {
	return sh.positions[security.ISIN] >= totalNeeded
}

// IncPosition adds quantity to the shareholder's position.
func (sh *Shareholder) IncPosition(security *Security, quantity int64) {
	sh.positions[security.ISIN] += quantity
}

// DecPosition subtracts quantity from the shareholder's position. Positions
// never go negative: sell orders are position-checked on entry.
func (sh *Shareholder) DecPosition(security *Security, quantity int64) {
	next := sh.positions[security.ISIN] - quantity
	if next < 0 {
		logger.Error("shareholder position driven below zero",
			zap.Uint64("shareholder_id", sh.ShareholderID),
			zap.String("isin", security.ISIN),
			zap.Int64("quantity", quantity))
		panic("matching: shareholder position driven below zero")
	}
	sh.positions[security.ISIN] = next
}
