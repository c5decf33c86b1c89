package depth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedge/edgescan/internal/domain"
)

func ladder() domain.DepthLadder {
	return domain.DepthLadder{
		Venue:  "binance",
		Symbol: "BTC/USDT",
		Bids: []domain.PriceLevel{
			{Price: 100.0, Size: 5},
			{Price: 99.5, Size: 5},
			{Price: 99.0, Size: 10},
		},
		Asks: []domain.PriceLevel{
			{Price: 100.5, Size: 5},
			{Price: 101.0, Size: 5},
			{Price: 101.5, Size: 10},
		},
	}
}

func TestBuySlippageBpsWalksAsksAscending(t *testing.T) {
	l := ladder()
	mid := 100.25

	slip, ok := BuySlippageBps(l, mid, 500) // fully filled by the first level (5 * 100.5 = 502.5)
	require.True(t, ok)
	assert.GreaterOrEqual(t, slip, 0.0)
}

func TestBuySlippageBpsTooThin(t *testing.T) {
	l := ladder()
	_, ok := BuySlippageBps(l, 100.25, 1_000_000)
	assert.False(t, ok)
}

func TestSellSlippageBpsWalksBidsDescending(t *testing.T) {
	l := ladder()
	mid := 100.25

	slip, ok := SellSlippageBps(l, mid, 500)
	require.True(t, ok)
	assert.GreaterOrEqual(t, slip, 0.0)
}

func TestSlippageMonotoneNonDecreasingInSize(t *testing.T) {
	l := ladder()
	mid := 100.25

	small, ok := BuySlippageBps(l, mid, 400)
	require.True(t, ok)
	large, ok := BuySlippageBps(l, mid, 900)
	require.True(t, ok)

	assert.LessOrEqual(t, small, large)
}

func TestClosestTier(t *testing.T) {
	tiers := []Tier{
		{SizeUSD: 1000, SlipBps: 1.0},
		{SizeUSD: 5000, SlipBps: 3.0},
		{SizeUSD: 10000, SlipBps: 6.0},
	}

	best, ok := ClosestTier(tiers, 4500)
	require.True(t, ok)
	assert.Equal(t, 5000.0, best.SizeUSD)

	_, ok = ClosestTier(nil, 100)
	assert.False(t, ok)
}
