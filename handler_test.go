package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

func TestHandleEnterOrderEvents(t *testing.T) {
	t.Run("accepted then executed", func(t *testing.T) {
		f := newFixture()
		f.handlers.HandleEnterOrder(f.sellRq(1, 10, 100))
		f.publisher.Reset()

		f.handlers.HandleEnterOrder(f.buyRq(2, 10, 100))

		require.Equal(t, []string{"order_accepted", "order_executed"}, f.eventTypes())
		executed, ok := f.publisher.Get(1).(protocol.OrderExecutedEvent)
		require.True(t, ok)
		assert.Equal(t, uint64(2), executed.OrderID)
		require.Len(t, executed.Trades, 1)
		assert.Equal(t, int64(10), executed.Trades[0].Quantity)
		assert.True(t, f.security.LastTradePrice().Equal(dec(100)))
	})

	t.Run("validation failure publishes one rejection with all reasons", func(t *testing.T) {
		f := newFixture()
		rq := f.buyRq(0, -1, 100)
		f.handlers.HandleEnterOrder(rq)

		require.Equal(t, []string{"order_rejected"}, f.eventTypes())
		rejected, ok := f.publisher.Get(0).(protocol.OrderRejectedEvent)
		require.True(t, ok)
		assert.Contains(t, rejected.Reasons, MsgInvalidOrderID)
		assert.Contains(t, rejected.Reasons, MsgOrderQuantityNotPositive)
	})

	t.Run("credit rejection names the buyer", func(t *testing.T) {
		f := newFixture()
		poor := NewBroker(9, dec(10))
		f.handlers.brokers.Add(poor)
		rq := f.buyRq(1, 10, 100)
		rq.BrokerID = poor.BrokerID
		f.handlers.HandleEnterOrder(rq)

		rejected, ok := f.publisher.Get(0).(protocol.OrderRejectedEvent)
		require.True(t, ok)
		assert.Equal(t, []string{MsgBuyerHasNotEnoughCredit}, rejected.Reasons)
	})

	t.Run("auction entry publishes the opening price", func(t *testing.T) {
		f := newFixture()
		f.security.SetState(protocol.StateAuction)
		f.handlers.HandleEnterOrder(f.sellRq(1, 10, 100))
		f.publisher.Reset()

		f.handlers.HandleEnterOrder(f.buyRq(2, 10, 100))

		require.Equal(t, []string{"order_accepted", "opening_price"}, f.eventTypes())
		opening, ok := f.publisher.Get(1).(protocol.OpeningPriceEvent)
		require.True(t, ok)
		assert.True(t, opening.OpeningPrice.Equal(dec(100)))
		assert.Equal(t, int64(10), opening.TradableQuantity)
	})
}

func TestHandleDeleteOrderEvents(t *testing.T) {
	f := newFixture()
	f.handlers.HandleEnterOrder(f.buyRq(1, 10, 100))
	f.publisher.Reset()

	f.handlers.HandleDeleteOrder(&protocol.DeleteOrderRq{
		RequestID: 2, SecurityISIN: f.security.ISIN, Side: protocol.SideBuy, OrderID: 1,
	})
	require.Equal(t, []string{"order_deleted"}, f.eventTypes())

	f.publisher.Reset()
	f.handlers.HandleDeleteOrder(&protocol.DeleteOrderRq{
		RequestID: 3, SecurityISIN: f.security.ISIN, Side: protocol.SideBuy, OrderID: 1,
	})
	require.Equal(t, []string{"order_rejected"}, f.eventTypes())
}

func TestHandleChangeMatchingState(t *testing.T) {
	t.Run("leaving auction runs the round and publishes trades", func(t *testing.T) {
		f := newFixture()
		f.security.SetState(protocol.StateAuction)
		f.security.SetLastTradePrice(dec(380))
		f.handlers.HandleEnterOrder(f.buyRq(1, 120, 400))
		f.handlers.HandleEnterOrder(f.sellRq(2, 120, 370))
		f.publisher.Reset()

		f.handlers.HandleChangeMatchingState(&protocol.ChangeMatchingStateRq{
			SecurityISIN: f.security.ISIN,
			TargetState:  protocol.StateContinuous,
		})

		require.Equal(t, []string{"trade", "security_state_changed"}, f.eventTypes())
		trade, ok := f.publisher.Get(0).(protocol.TradeEvent)
		require.True(t, ok)
		assert.True(t, trade.Price.Equal(dec(380)))
		assert.Equal(t, int64(120), trade.Quantity)
		assert.Equal(t, protocol.StateContinuous, f.security.State())
	})

	t.Run("auction trades trigger parked stops into the new state", func(t *testing.T) {
		f := newFixture()
		f.security.SetLastTradePrice(dec(100))

		stop := f.buyRq(1, 10, 130)
		stop.StopPrice = dec(110)
		f.handlers.HandleEnterOrder(stop)

		f.handlers.HandleChangeMatchingState(&protocol.ChangeMatchingStateRq{
			SecurityISIN: f.security.ISIN,
			TargetState:  protocol.StateAuction,
		})
		f.handlers.HandleEnterOrder(f.buyRq(2, 20, 120))
		f.handlers.HandleEnterOrder(f.sellRq(3, 20, 115))
		f.publisher.Reset()

		// auction opens at 115, the trade triggers the parked stop, and the
		// activated order rests in the reopened continuous book
		f.handlers.HandleChangeMatchingState(&protocol.ChangeMatchingStateRq{
			SecurityISIN: f.security.ISIN,
			TargetState:  protocol.StateContinuous,
		})

		require.Equal(t, []string{"trade", "security_state_changed", "order_activated"}, f.eventTypes())
		assert.Equal(t, 0, f.security.StopOrderCount())
		activated := f.security.Book().FindByOrderID(protocol.SideBuy, 1)
		require.NotNil(t, activated)
		assert.False(t, activated.IsStopOrder())
	})

	t.Run("auction to auction transports activated stops without matching", func(t *testing.T) {
		f := newFixture()
		f.security.SetLastTradePrice(dec(100))

		stop := f.buyRq(1, 10, 130)
		stop.StopPrice = dec(110)
		f.handlers.HandleEnterOrder(stop)

		f.handlers.HandleChangeMatchingState(&protocol.ChangeMatchingStateRq{
			SecurityISIN: f.security.ISIN,
			TargetState:  protocol.StateAuction,
		})
		f.handlers.HandleEnterOrder(f.buyRq(2, 20, 120))
		f.handlers.HandleEnterOrder(f.sellRq(3, 30, 115))
		f.publisher.Reset()

		f.handlers.HandleChangeMatchingState(&protocol.ChangeMatchingStateRq{
			SecurityISIN: f.security.ISIN,
			TargetState:  protocol.StateAuction,
		})

		require.Equal(t, []string{"trade", "security_state_changed", "order_activated"}, f.eventTypes())
		// enqueued without matching the leftover sell at 115, reserving credit
		activated := f.security.Book().FindByOrderID(protocol.SideBuy, 1)
		require.NotNil(t, activated)
		assert.NotNil(t, f.security.Book().FindByOrderID(protocol.SideSell, 3))
		assert.True(t, f.buyerBroker.Credit().Equal(dec(1_000_000-20*115-10*130)))
	})
}
