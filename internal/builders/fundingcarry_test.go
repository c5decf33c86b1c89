package builders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedge/edgescan/internal/domain"
)

func fundingSnap(venue, symbol string, rate, minutesToFunding float64) domain.FundingSnapshot {
	return domain.FundingSnapshot{Venue: venue, Symbol: symbol, FundingRate: rate, MinutesToFunding: minutesToFunding}
}

func TestBuildFundingCarryLongsLowerFundingVenue(t *testing.T) {
	venues := map[string][]domain.FundingSnapshot{
		"binance": {fundingSnap("binance", "BTC/USDT", 0.0001, 30)},
		"bybit":   {fundingSnap("bybit", "BTC/USDT", 0.0010, 30)},
	}

	out := BuildFundingCarry(time.Now(), venues, 10_000, DefaultConfig())
	require.Len(t, out, 1) // only short-high/long-low clears the gate, reverse is negative

	c := out[0]
	assert.Equal(t, "binance", c.BuyVenue.Venue)
	assert.Equal(t, domain.SideLong, c.BuyVenue.Side)
	assert.Equal(t, "bybit", c.SellVenue.Venue)
	assert.Equal(t, domain.SideShort, c.SellVenue.Side)
	assert.Greater(t, c.GrossEdgeBps, 0.0)
}

func TestBuildFundingCarrySkipsEqualRates(t *testing.T) {
	venues := map[string][]domain.FundingSnapshot{
		"binance": {fundingSnap("binance", "BTC/USDT", 0.0005, 30)},
		"bybit":   {fundingSnap("bybit", "BTC/USDT", 0.0005, 30)},
	}
	out := BuildFundingCarry(time.Now(), venues, 10_000, DefaultConfig())
	assert.Len(t, out, 0)
}
