package matching

// Rejection reasons aggregated into OrderRejectedEvent. These are data, not
// errors: a rejected request is a normal outcome reported once to the caller.
const (
	MsgInvalidOrderID                     = "invalid order id"
	MsgOrderIDNotFound                    = "order id not found"
	MsgUnknownSecurityISIN                = "unknown security isin"
	MsgUnknownBrokerID                    = "unknown broker id"
	MsgUnknownShareholderID               = "unknown shareholder id"
	MsgOrderQuantityNotPositive           = "order quantity is not positive"
	MsgOrderPriceNotPositive              = "order price is not positive"
	MsgQuantityNotMultipleOfLotSize       = "quantity is not a multiple of security lot size"
	MsgPriceNotMultipleOfTickSize         = "price is not a multiple of security tick size"
	MsgInvalidPeakSize                    = "invalid peak size"
	MsgCannotSpecifyPeakSizeForNonIceberg = "cannot specify peak size for a non-iceberg order"
	MsgMinExecQuantityNegative            = "minimum execution quantity is negative"
	MsgMinExecQuantityBiggerThanQuantity  = "minimum execution quantity is bigger than order quantity"
	MsgCannotChangeMinExecQuantity        = "cannot change minimum execution quantity on update"
	MsgMinExecQuantityInAuctionState      = "cannot have minimum execution quantity in auction state"
	MsgStopOrderCannotBeIceberg           = "stop order cannot be an iceberg order"
	MsgStopOrderCannotHaveMinExecQuantity = "stop order cannot have minimum execution quantity"
	MsgStopPriceNegative                  = "stop price is negative"
	MsgCannotChangeStopPriceForActivated  = "cannot specify stop price for an activated order"
	MsgCannotChangeStopOrderIdentity      = "cannot change identity fields of a stop order before activation"
	MsgCannotAddStopOrderInAuctionState   = "cannot add stop order in auction state"
	MsgCannotUpdateStopOrderInAuction     = "cannot update stop order in auction state"
	MsgCannotDeleteStopOrderInAuction     = "cannot delete stop order in auction state"
	MsgBuyerHasNotEnoughCredit            = "buyer broker has not enough credit"
	MsgSellerHasNotEnoughPositions        = "seller shareholder has not enough positions"
	MsgMinExecQuantityNotSatisfied        = "minimum execution quantity is not satisfied"
)
