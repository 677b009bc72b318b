package matching

import (
	"github.com/shopspring/decimal"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

// fixture wires one security with funded parties, in-memory event capture
// and request handlers.
type fixture struct {
	security     *Security
	buyerBroker  *Broker
	sellerBroker *Broker
	buyer        *Shareholder
	seller       *Shareholder
	matcher      *Matcher
	publisher    *MemoryEventPublisher
	handlers     *Handlers
}

func newFixture() *fixture {
	security := NewSecurity("IRO1TEST0001", decimal.NewFromInt(1), 1)
	buyerBroker := NewBroker(1, decimal.NewFromInt(1_000_000))
	sellerBroker := NewBroker(2, decimal.NewFromInt(1_000_000))
	buyer := NewShareholder(11)
	seller := NewShareholder(12)
	seller.IncPosition(security, 100_000)

	securities := NewSecurityRepository()
	securities.Add(security)
	brokers := NewBrokerRepository()
	brokers.Add(buyerBroker)
	brokers.Add(sellerBroker)
	shareholders := NewShareholderRepository()
	shareholders.Add(buyer)
	shareholders.Add(seller)

	publisher := NewMemoryEventPublisher()
	handlers := NewHandlers(securities, brokers, shareholders, publisher)

	return &fixture{
		security:     security,
		buyerBroker:  buyerBroker,
		sellerBroker: sellerBroker,
		buyer:        buyer,
		seller:       seller,
		matcher:      handlers.matcher,
		publisher:    publisher,
		handlers:     handlers,
	}
}

func (f *fixture) buyRq(orderID uint64, quantity, price int64) *protocol.EnterOrderRq {
	return &protocol.EnterOrderRq{
		RequestID:     orderID,
		EntryType:     protocol.NewOrder,
		SecurityISIN:  f.security.ISIN,
		OrderID:       orderID,
		Side:          protocol.SideBuy,
		Quantity:      quantity,
		Price:         decimal.NewFromInt(price),
		BrokerID:      f.buyerBroker.BrokerID,
		ShareholderID: f.buyer.ShareholderID,
	}
}

func (f *fixture) sellRq(orderID uint64, quantity, price int64) *protocol.EnterOrderRq {
	return &protocol.EnterOrderRq{
		RequestID:     orderID,
		EntryType:     protocol.NewOrder,
		SecurityISIN:  f.security.ISIN,
		OrderID:       orderID,
		Side:          protocol.SideSell,
		Quantity:      quantity,
		Price:         decimal.NewFromInt(price),
		BrokerID:      f.sellerBroker.BrokerID,
		ShareholderID: f.seller.ShareholderID,
	}
}

// enter runs a request straight through the security, bypassing event
// publication.
func (f *fixture) enter(rq *protocol.EnterOrderRq) *MatchResult {
	broker := f.buyerBroker
	shareholder := f.buyer
	if rq.Side == protocol.SideSell {
		broker = f.sellerBroker
		shareholder = f.seller
	}
	if rq.BrokerID == f.sellerBroker.BrokerID {
		broker = f.sellerBroker
	}
	return f.security.NewOrder(rq, broker, shareholder, f.matcher)
}

func (f *fixture) eventTypes() []string {
	events := f.publisher.Events()
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType())
	}
	return types
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
