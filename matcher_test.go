package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

func TestContinuousMatching(t *testing.T) {
	t.Run("incoming buy trades at resting prices and queues the remainder", func(t *testing.T) {
		f := newFixture()
		f.enter(f.sellRq(1, 30, 100))
		f.enter(f.sellRq(2, 20, 105))

		result := f.enter(f.buyRq(3, 60, 105))

		require.Equal(t, OutcomeExecuted, result.Outcome)
		require.Len(t, result.Trades, 2)
		assert.True(t, result.Trades[0].Price.Equal(dec(100)))
		assert.Equal(t, int64(30), result.Trades[0].Quantity)
		assert.True(t, result.Trades[1].Price.Equal(dec(105)))
		assert.Equal(t, int64(20), result.Trades[1].Quantity)

		remainder := f.security.Book().FindByOrderID(protocol.SideBuy, 3)
		require.NotNil(t, remainder)
		assert.Equal(t, int64(10), remainder.TotalQuantity())

		// 30x100 + 20x105 paid, 10x105 reserved for the remainder
		spent := dec(30*100 + 20*105 + 10*105)
		assert.True(t, f.buyerBroker.Credit().Equal(dec(1_000_000).Sub(spent)))
		assert.True(t, f.sellerBroker.Credit().Equal(dec(1_000_000).Add(dec(30*100+20*105))))

		assert.Equal(t, int64(50), f.buyer.PositionOn(f.security))
		assert.Equal(t, int64(100_000-50), f.seller.PositionOn(f.security))
	})

	t.Run("incoming sell pays the seller without touching buyer reservations", func(t *testing.T) {
		f := newFixture()
		f.enter(f.buyRq(1, 40, 100))
		reserved := f.buyerBroker.Credit()

		result := f.enter(f.sellRq(2, 40, 95))

		require.Equal(t, OutcomeExecuted, result.Outcome)
		require.Len(t, result.Trades, 1)
		assert.True(t, result.Trades[0].Price.Equal(dec(100)))
		assert.True(t, f.buyerBroker.Credit().Equal(reserved))
		assert.True(t, f.sellerBroker.Credit().Equal(dec(1_000_000).Add(dec(40*100))))
		assert.Nil(t, f.security.Book().BestOf(protocol.SideSell))
	})

	t.Run("no cross leaves both sides resting", func(t *testing.T) {
		f := newFixture()
		f.enter(f.sellRq(1, 10, 110))
		result := f.enter(f.buyRq(2, 10, 100))

		assert.Equal(t, OutcomeAccepted, result.Outcome)
		assert.Empty(t, result.Trades)
		assert.NotNil(t, f.security.Book().FindByOrderID(protocol.SideBuy, 2))
		assert.NotNil(t, f.security.Book().FindByOrderID(protocol.SideSell, 1))
	})
}

func TestCreditRollback(t *testing.T) {
	t.Run("failure on a later trade undoes the earlier ones", func(t *testing.T) {
		f := newFixture()
		poor := NewBroker(9, dec(3_500))
		f.enter(f.sellRq(1, 30, 100))
		f.enter(f.sellRq(2, 20, 105))
		sellerCredit := f.sellerBroker.Credit()

		rq := f.buyRq(3, 60, 105)
		rq.BrokerID = poor.BrokerID
		// first trade 30x100=3000 is affordable, second 20x105=2100 is not
		result := f.security.NewOrder(rq, poor, f.buyer, f.matcher)

		require.Equal(t, OutcomeNotEnoughCredit, result.Outcome)
		assert.True(t, poor.Credit().Equal(dec(3_500)))
		assert.True(t, f.sellerBroker.Credit().Equal(sellerCredit))

		// book restored exactly
		sells := f.security.Book().SellOrders()
		require.Len(t, sells, 2)
		assert.Equal(t, uint64(1), sells[0].OrderID)
		assert.Equal(t, int64(30), sells[0].TotalQuantity())
		assert.Equal(t, uint64(2), sells[1].OrderID)
		assert.Equal(t, int64(20), sells[1].TotalQuantity())
		assert.Equal(t, int64(0), f.buyer.PositionOn(f.security))
	})

	t.Run("remainder reservation failure also rolls back", func(t *testing.T) {
		f := newFixture()
		poor := NewBroker(9, dec(3_000))
		f.enter(f.sellRq(1, 30, 100))

		rq := f.buyRq(2, 40, 100)
		rq.BrokerID = poor.BrokerID
		// the 30x100 trade takes all credit, nothing left for the 10x100 remainder
		result := f.security.NewOrder(rq, poor, f.buyer, f.matcher)

		require.Equal(t, OutcomeNotEnoughCredit, result.Outcome)
		assert.True(t, poor.Credit().Equal(dec(3_000)))
		require.NotNil(t, f.security.Book().FindByOrderID(protocol.SideSell, 1))
		assert.Equal(t, int64(30), f.security.Book().FindByOrderID(protocol.SideSell, 1).TotalQuantity())
	})
}

func TestSellerPositions(t *testing.T) {
	f := newFixture()
	f.seller.DecPosition(f.security, 100_000)
	f.seller.IncPosition(f.security, 50)

	result := f.enter(f.sellRq(1, 40, 100))
	require.Equal(t, OutcomeAccepted, result.Outcome)

	// 40 already committed, only 10 left
	result = f.enter(f.sellRq(2, 20, 100))
	assert.Equal(t, OutcomeNotEnoughPositions, result.Outcome)

	result = f.enter(f.sellRq(3, 10, 100))
	assert.Equal(t, OutcomeAccepted, result.Outcome)
}

func TestMinimumExecutionQuantity(t *testing.T) {
	t.Run("unsatisfied first attempt is rolled back", func(t *testing.T) {
		f := newFixture()
		f.enter(f.sellRq(1, 30, 100))

		rq := f.buyRq(2, 100, 100)
		rq.MinExecQuantity = 50
		result := f.enter(rq)

		require.Equal(t, OutcomeNotSatisfied, result.Outcome)
		assert.True(t, f.buyerBroker.Credit().Equal(dec(1_000_000)))
		require.NotNil(t, f.security.Book().FindByOrderID(protocol.SideSell, 1))
		assert.Equal(t, int64(30), f.security.Book().FindByOrderID(protocol.SideSell, 1).TotalQuantity())
		assert.Nil(t, f.security.Book().FindByOrderID(protocol.SideBuy, 2))
	})

	t.Run("satisfied first attempt queues the remainder", func(t *testing.T) {
		f := newFixture()
		f.enter(f.sellRq(1, 60, 100))

		rq := f.buyRq(2, 100, 100)
		rq.MinExecQuantity = 50
		result := f.enter(rq)

		require.Equal(t, OutcomeExecuted, result.Outcome)
		remainder := f.security.Book().FindByOrderID(protocol.SideBuy, 2)
		require.NotNil(t, remainder)
		assert.Equal(t, int64(40), remainder.TotalQuantity())
		assert.False(t, remainder.IsFirstEntry())
	})
}
