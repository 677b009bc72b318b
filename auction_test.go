package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmd-nemati/SE1-TinyMe/protocol"
)

func TestCalculateOpeningPrice(t *testing.T) {
	t.Run("empty side yields no opening price", func(t *testing.T) {
		f := newFixture()
		f.enter(f.buyRq(1, 10, 100))

		price, quantity := f.security.CalculateOpeningPrice()
		assert.True(t, price.IsZero())
		assert.Equal(t, int64(0), quantity)
	})

	t.Run("no overlap yields no opening price", func(t *testing.T) {
		f := newFixture()
		f.enter(f.buyRq(1, 10, 100))
		f.enter(f.sellRq(2, 10, 120))

		price, quantity := f.security.CalculateOpeningPrice()
		assert.True(t, price.IsZero())
		assert.Equal(t, int64(0), quantity)
	})

	t.Run("no cross reports the reference price with zero quantity", func(t *testing.T) {
		f := newFixture()
		f.security.SetLastTradePrice(dec(100))
		f.enter(f.buyRq(1, 10, 90))
		f.enter(f.sellRq(2, 10, 120))

		price, quantity := f.security.CalculateOpeningPrice()
		assert.True(t, price.Equal(dec(100)))
		assert.Equal(t, int64(0), quantity)
	})

	t.Run("picks the price maximizing tradable quantity", func(t *testing.T) {
		f := newFixture()
		f.security.SetLastTradePrice(dec(160))
		f.enter(f.buyRq(1, 50, 170))
		f.enter(f.sellRq(2, 80, 165))

		price, quantity := f.security.CalculateOpeningPrice()
		// everything in [165, 170] trades 50; 165 is closest to 160
		assert.True(t, price.Equal(dec(165)))
		assert.Equal(t, int64(50), quantity)
	})

	t.Run("ties break toward the last trade price", func(t *testing.T) {
		f := newFixture()
		f.security.SetLastTradePrice(dec(100))
		f.enter(f.buyRq(1, 10, 110))
		f.enter(f.sellRq(2, 10, 90))

		price, quantity := f.security.CalculateOpeningPrice()
		assert.True(t, price.Equal(dec(100)))
		assert.Equal(t, int64(10), quantity)
	})

	t.Run("counts iceberg hidden quantity", func(t *testing.T) {
		f := newFixture()
		rq := f.sellRq(1, 100, 100)
		rq.PeakSize = 10
		f.enter(rq)
		f.enter(f.buyRq(2, 80, 100))

		price, quantity := f.security.CalculateOpeningPrice()
		assert.True(t, price.Equal(dec(100)))
		assert.Equal(t, int64(80), quantity)
	})
}

func TestOpenAuction(t *testing.T) {
	t.Run("crosses at the opening price and refunds buyer surplus", func(t *testing.T) {
		f := newFixture()
		f.security.SetState(protocol.StateAuction)
		f.security.SetLastTradePrice(dec(380))

		require.Equal(t, OutcomeAccepted, f.enter(f.buyRq(1, 120, 400)).Outcome)
		require.Equal(t, OutcomeAccepted, f.enter(f.sellRq(2, 120, 370)).Outcome)
		// buy reserved at the limit price
		require.True(t, f.buyerBroker.Credit().Equal(dec(1_000_000-120*400)))

		openingPrice, tradable, trades := f.security.OpenAuction(f.matcher)

		assert.True(t, openingPrice.Equal(dec(380)))
		assert.Equal(t, int64(120), tradable)
		require.Len(t, trades, 1)
		assert.True(t, trades[0].Price.Equal(dec(380)))
		assert.Equal(t, int64(120), trades[0].Quantity)

		// surplus (400-380)x120 returned to the buyer
		assert.True(t, f.buyerBroker.Credit().Equal(dec(1_000_000-120*380)))
		assert.True(t, f.sellerBroker.Credit().Equal(dec(1_000_000+120*380)))
		assert.Equal(t, int64(120), f.buyer.PositionOn(f.security))
		assert.Equal(t, 0, f.security.Book().OrderCount())
		assert.True(t, f.security.LastTradePrice().Equal(dec(380)))
	})

	t.Run("leaves non-crossing orders in the book", func(t *testing.T) {
		f := newFixture()
		f.security.SetState(protocol.StateAuction)
		f.security.SetLastTradePrice(dec(100))

		f.enter(f.buyRq(1, 50, 100))
		f.enter(f.buyRq(2, 50, 90))
		f.enter(f.sellRq(3, 30, 100))
		f.enter(f.sellRq(4, 30, 120))

		_, _, trades := f.security.OpenAuction(f.matcher)

		require.Len(t, trades, 1)
		assert.Equal(t, int64(30), trades[0].Quantity)
		remainder := f.security.Book().FindByOrderID(protocol.SideBuy, 1)
		require.NotNil(t, remainder)
		assert.Equal(t, int64(20), remainder.TotalQuantity())
		assert.NotNil(t, f.security.Book().FindByOrderID(protocol.SideBuy, 2))
		assert.Nil(t, f.security.Book().FindByOrderID(protocol.SideSell, 3))
		assert.NotNil(t, f.security.Book().FindByOrderID(protocol.SideSell, 4))
	})

	t.Run("icebergs replenish during the round", func(t *testing.T) {
		f := newFixture()
		f.security.SetState(protocol.StateAuction)
		f.security.SetLastTradePrice(dec(100))

		iceberg := f.sellRq(1, 30, 100)
		iceberg.PeakSize = 10
		f.enter(iceberg)
		f.enter(f.buyRq(2, 30, 100))

		_, _, trades := f.security.OpenAuction(f.matcher)

		require.Len(t, trades, 3)
		var total int64
		for _, trade := range trades {
			total += trade.Quantity
		}
		assert.Equal(t, int64(30), total)
		assert.Equal(t, 0, f.security.Book().OrderCount())
	})
}
