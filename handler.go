package matching

import (
	"go.uber.org/zap"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// Handlers turns validated requests into security operations and publishes
// the resulting events. One Handlers instance serves all securities; the
// engine serializes requests per security before they reach it.
type Handlers struct {
	securities   *SecurityRepository
	brokers      *BrokerRepository
	shareholders *ShareholderRepository
	matcher      *Matcher
	publisher    EventPublisher
}

// NewHandlers wires the request handlers.
func NewHandlers(securities *SecurityRepository, brokers *BrokerRepository,
	shareholders *ShareholderRepository, publisher EventPublisher) *Handlers {
	return &Handlers{
		securities:   securities,
		brokers:      brokers,
		shareholders: shareholders,
		matcher:      NewMatcher(),
		publisher:    publisher,
	}
}

// HandleEnterOrder processes a new-order or update request end to end:
// validation, matching, event publication and the stop-order activation
// cascade the outcome may set off.
func (h *Handlers) HandleEnterOrder(rq *protocol.EnterOrderRq) {
	security := h.securities.FindByISIN(rq.SecurityISIN)
	broker := h.brokers.FindByID(rq.BrokerID)
	shareholder := h.shareholders.FindByID(rq.ShareholderID)

	if reasons := validateEnterOrder(rq, security, broker, shareholder); len(reasons) > 0 {
		h.reject(rq.RequestID, rq.OrderID, reasons)
		return
	}

	var result *MatchResult
	if rq.EntryType == protocol.NewOrder {
		result = security.NewOrder(rq, broker, shareholder, h.matcher)
	} else {
		var reasons []string
		result, reasons = security.UpdateOrder(rq, h.matcher)
		if len(reasons) > 0 {
			h.reject(rq.RequestID, rq.OrderID, reasons)
			return
		}
	}

	switch result.Outcome {
	case OutcomeNotEnoughCredit:
		h.reject(rq.RequestID, rq.OrderID, []string{MsgBuyerHasNotEnoughCredit})
		return
	case OutcomeNotEnoughPositions:
		h.reject(rq.RequestID, rq.OrderID, []string{MsgSellerHasNotEnoughPositions})
		return
	case OutcomeNotSatisfied:
		h.reject(rq.RequestID, rq.OrderID, []string{MsgMinExecQuantityNotSatisfied})
		return
	}

	if rq.EntryType == protocol.NewOrder {
		h.publisher.Publish(protocol.OrderAcceptedEvent{RequestID: rq.RequestID, OrderID: rq.OrderID})
	} else {
		h.publisher.Publish(protocol.OrderUpdatedEvent{RequestID: rq.RequestID, OrderID: rq.OrderID})
	}
	if result.Activated {
		h.publisher.Publish(protocol.OrderActivatedEvent{RequestID: rq.RequestID, OrderID: rq.OrderID})
	}
	if len(result.Trades) > 0 {
		h.publisher.Publish(protocol.OrderExecutedEvent{
			RequestID: rq.RequestID,
			OrderID:   rq.OrderID,
			Trades:    tradeDTOs(result.Trades),
		})
		security.UpdateLastTradePrice(result.Trades)
	}

	if security.IsAuction() {
		h.publishOpeningPrice(security)
	}
	h.activateTriggeredStops(security)
}

// HandleDeleteOrder processes a cancel request.
func (h *Handlers) HandleDeleteOrder(rq *protocol.DeleteOrderRq) {
	security := h.securities.FindByISIN(rq.SecurityISIN)
	if reasons := validateDeleteOrder(rq, security); len(reasons) > 0 {
		h.reject(rq.RequestID, rq.OrderID, reasons)
		return
	}

	if reasons := security.DeleteOrder(rq); len(reasons) > 0 {
		h.reject(rq.RequestID, rq.OrderID, reasons)
		return
	}

	h.publisher.Publish(protocol.OrderDeletedEvent{RequestID: rq.RequestID, OrderID: rq.OrderID})
	if security.IsAuction() {
		h.publishOpeningPrice(security)
	}
}

// HandleChangeMatchingState switches a security's matching state. Leaving
// auction state first runs the auction round; its trades move the reference
// price, which may trigger parked stop orders into the new state.
func (h *Handlers) HandleChangeMatchingState(rq *protocol.ChangeMatchingStateRq) {
	security := h.securities.FindByISIN(rq.SecurityISIN)
	if security == nil {
		logger.Warn("state change for unknown security", zap.String("isin", rq.SecurityISIN))
		return
	}

	if security.IsAuction() {
		_, _, trades := security.OpenAuction(h.matcher)
		for _, t := range trades {
			h.publisher.Publish(protocol.TradeEvent{
				SecurityISIN: t.Security.ISIN,
				Price:        t.Price,
				Quantity:     t.Quantity,
				BuyOrderID:   t.Buy.OrderID,
				SellOrderID:  t.Sell.OrderID,
			})
		}
	}

	security.SetState(rq.TargetState)
	h.publisher.Publish(protocol.SecurityStateChangedEvent{
		SecurityISIN: rq.SecurityISIN,
		State:        rq.TargetState,
	})

	h.activateTriggeredStops(security)
}

// activateTriggeredStops drains the stop orders triggered by the current
// reference price. Executions can move the price and trigger further stops,
// so the drain loops until a pass finds nothing. The price only moves toward
// untriggered stops, never away, so every pass shrinks the parked set and
// the loop terminates.
func (h *Handlers) activateTriggeredStops(security *Security) {
	for {
		entries := security.TakeTriggeredStops()
		if len(entries) == 0 {
			return
		}

		for _, e := range entries {
			h.publisher.Publish(protocol.OrderActivatedEvent{RequestID: e.requestID, OrderID: e.order.OrderID})

			var result *MatchResult
			if security.IsAuction() {
				result = h.matcher.EnqueueInAuction(e.order)
			} else {
				result = h.matcher.Execute(e.order)
			}

			if result.Outcome == OutcomeNotEnoughCredit {
				// parked buys are checked but never reserved, so the broker
				// may have spent the credit in the meantime
				h.reject(e.requestID, e.order.OrderID, []string{MsgBuyerHasNotEnoughCredit})
				continue
			}

			if len(result.Trades) > 0 {
				h.publisher.Publish(protocol.OrderExecutedEvent{
					RequestID: e.requestID,
					OrderID:   e.order.OrderID,
					Trades:    tradeDTOs(result.Trades),
				})
				security.UpdateLastTradePrice(result.Trades)
			}
		}
	}
}

func (h *Handlers) publishOpeningPrice(security *Security) {
	price, quantity := security.CalculateOpeningPrice()
	h.publisher.Publish(protocol.OpeningPriceEvent{
		SecurityISIN:     security.ISIN,
		OpeningPrice:     price,
		TradableQuantity: quantity,
	})
}

func (h *Handlers) reject(requestID, orderID uint64, reasons []string) {
	h.publisher.Publish(protocol.OrderRejectedEvent{
		RequestID: requestID,
		OrderID:   orderID,
		Reasons:   reasons,
	})
}

func tradeDTOs(trades []*Trade) []protocol.TradeDTO {
	dtos := make([]protocol.TradeDTO, 0, len(trades))
	for _, t := range trades {
		dtos = append(dtos, t.DTO())
	}
	return dtos
}
