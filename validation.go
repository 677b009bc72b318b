package matching

import (
	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// validateEnterOrder collects every static defect of an enter-order request.
// All reasons are reported at once so the caller fixes the request in one
// round trip.
func validateEnterOrder(rq *protocol.EnterOrderRq, security *Security, broker *Broker, shareholder *Shareholder) []string {
	var reasons []string

	if rq.OrderID == 0 {
		reasons = append(reasons, MsgInvalidOrderID)
	}
	if rq.Quantity <= 0 {
		reasons = append(reasons, MsgOrderQuantityNotPositive)
	}
	if !rq.Price.IsPositive() {
		reasons = append(reasons, MsgOrderPriceNotPositive)
	}

	if security == nil {
		reasons = append(reasons, MsgUnknownSecurityISIN)
	} else {
		if rq.Quantity > 0 && rq.Quantity%security.LotSize != 0 {
			reasons = append(reasons, MsgQuantityNotMultipleOfLotSize)
		}
		if rq.Price.IsPositive() && !rq.Price.Mod(security.TickSize).IsZero() {
			reasons = append(reasons, MsgPriceNotMultipleOfTickSize)
		}
	}
	if broker == nil {
		reasons = append(reasons, MsgUnknownBrokerID)
	}
	if shareholder == nil {
		reasons = append(reasons, MsgUnknownShareholderID)
	}

	if rq.PeakSize < 0 || (rq.PeakSize > 0 && rq.PeakSize >= rq.Quantity) {
		reasons = append(reasons, MsgInvalidPeakSize)
	}

	if rq.MinExecQuantity < 0 {
		reasons = append(reasons, MsgMinExecQuantityNegative)
	}
	if rq.MinExecQuantity > rq.Quantity {
		reasons = append(reasons, MsgMinExecQuantityBiggerThanQuantity)
	}

	if rq.StopPrice.IsNegative() {
		reasons = append(reasons, MsgStopPriceNegative)
	}
	if rq.IsStopOrderRq() {
		if rq.IsIcebergRq() {
			reasons = append(reasons, MsgStopOrderCannotBeIceberg)
		}
		if rq.HasMinExecQuantity() {
			reasons = append(reasons, MsgStopOrderCannotHaveMinExecQuantity)
		}
	}

	if security != nil && security.IsAuction() && rq.EntryType == protocol.NewOrder {
		if rq.HasMinExecQuantity() {
			reasons = append(reasons, MsgMinExecQuantityInAuctionState)
		}
		if rq.IsStopOrderRq() {
			reasons = append(reasons, MsgCannotAddStopOrderInAuctionState)
		}
	}

	return reasons
}

// validateDeleteOrder collects the static defects of a delete request.
func validateDeleteOrder(rq *protocol.DeleteOrderRq, security *Security) []string {
	var reasons []string
	if rq.OrderID == 0 {
		reasons = append(reasons, MsgInvalidOrderID)
	}
	if security == nil {
		reasons = append(reasons, MsgUnknownSecurityISIN)
	}
	return reasons
}
