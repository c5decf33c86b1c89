package builders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedge/edgescan/internal/domain"
)

func spotQuote(venue, symbol string, bid, ask float64) SpotVenueQuote {
	return SpotVenueQuote{
		Venue: venue,
		Quote: domain.NormalizedQuote{
			Venue: venue, Symbol: symbol, Market: domain.MarketSpot,
			BidPrice: bid, AskPrice: ask,
		},
	}
}

func TestBuildCexCexEmitsOnlyTheProfitableDirection(t *testing.T) {
	now := time.Now()
	// coinbase's bid sits well above binance's ask: buy-binance/sell-coinbase
	// clears the gate; the reverse direction is a crossed-book loss and is
	// correctly dropped.
	venues := map[string][]SpotVenueQuote{
		"binance":  {spotQuote("binance", "BTC/USDT", 100.0, 100.1)},
		"coinbase": {spotQuote("coinbase", "BTC/USDT", 101.0, 101.1)},
	}

	out := BuildCexCex(now, venues, 10_000, DefaultConfig())
	require.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, domain.StrategyCexCex, c.StrategyType)
	assert.Equal(t, "binance", c.BuyVenue.Venue)
	assert.Equal(t, "coinbase", c.SellVenue.Venue)
	assert.Greater(t, c.GrossEdgeBps, 0.0)
}

func TestBuildCexCexFiltersBelowMinGrossEdge(t *testing.T) {
	now := time.Now()
	// both venues quote an overlapping spread wide enough that neither
	// direction's (sell.bid - buy.ask) crosses, let alone clears the gate.
	venues := map[string][]SpotVenueQuote{
		"binance":  {spotQuote("binance", "BTC/USDT", 100.00, 100.05)},
		"coinbase": {spotQuote("coinbase", "BTC/USDT", 100.01, 100.06)},
	}
	out := BuildCexCex(now, venues, 10_000, DefaultConfig())
	assert.Len(t, out, 0)
}

func TestBuildCexCexSkipsSymbolOnlyOnOneVenue(t *testing.T) {
	now := time.Now()
	venues := map[string][]SpotVenueQuote{
		"binance": {spotQuote("binance", "BTC/USDT", 100.0, 100.1)},
	}
	out := BuildCexCex(now, venues, 10_000, DefaultConfig())
	assert.Len(t, out, 0)
}

func TestDepthPairSlippageRequiresBothLadders(t *testing.T) {
	buy := spotQuote("binance", "BTC/USDT", 100.0, 100.1)
	sell := spotQuote("coinbase", "BTC/USDT", 100.2, 100.3)

	_, ok := depthPairSlippage(buy, sell, 1000)
	assert.False(t, ok)

	buy.Ladder = &domain.DepthLadder{
		Asks: []domain.PriceLevel{{Price: 100.1, Size: 100}},
	}
	sell.Ladder = &domain.DepthLadder{
		Bids: []domain.PriceLevel{{Price: 100.2, Size: 100}},
	}
	slip, ok := depthPairSlippage(buy, sell, 1000)
	require.True(t, ok)
	assert.GreaterOrEqual(t, slip, 0.80) // includes the fixed 0.80 bps tier-crossing term
}
