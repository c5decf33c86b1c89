package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVenueRoleTagWithInstrument(t *testing.T) {
	v := VenueRole{Venue: "binance", Instrument: InstrumentPerp, Side: SideLong}
	assert.Equal(t, "long_binance_perp", v.Tag())
}

func TestVenueRoleTagUnknownInstrumentOmitsSuffix(t *testing.T) {
	v := VenueRole{Venue: "jupiter", Instrument: InstrumentUnknown, Side: SideBuy}
	assert.Equal(t, "buy_jupiter", v.Tag())

	v2 := VenueRole{Venue: "jupiter", Side: SideSell}
	assert.Equal(t, "sell_jupiter", v2.Tag())
}

func TestVenueRoleMarshalJSONEmitsTagString(t *testing.T) {
	v := VenueRole{Venue: "bybit", Instrument: InstrumentPerp, Side: SideShort}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `"short_bybit_perp"`, string(b))
}

func TestCandidateVenueTagsDelegateToRoles(t *testing.T) {
	c := Candidate{
		BuyVenue:  VenueRole{Venue: "binance", Instrument: InstrumentSpot, Side: SideBuy},
		SellVenue: VenueRole{Venue: "coinbase", Instrument: InstrumentSpot, Side: SideSell},
	}
	assert.Equal(t, "buy_binance_spot", c.BuyVenueTag())
	assert.Equal(t, "sell_coinbase_spot", c.SellVenueTag())
}

func TestNormalizedQuoteMidAndSpread(t *testing.T) {
	q := NormalizedQuote{BidPrice: 100, AskPrice: 101}
	assert.InDelta(t, 100.5, q.MidPrice(), 1e-9)
	assert.InDelta(t, (1.0/100.5)*1e4, q.SpreadBps(), 1e-6)
}

func TestNormalizedQuoteSpreadBpsZeroMid(t *testing.T) {
	q := NormalizedQuote{BidPrice: 0, AskPrice: 0}
	assert.Equal(t, 0.0, q.SpreadBps())
}

func TestNormalizedQuoteValid(t *testing.T) {
	assert.True(t, NormalizedQuote{BidPrice: 100, AskPrice: 101}.Valid())
	assert.False(t, NormalizedQuote{BidPrice: 0, AskPrice: 101}.Valid())
	assert.False(t, NormalizedQuote{BidPrice: 101, AskPrice: 100}.Valid())
	assert.False(t, NormalizedQuote{BidPrice: 100, AskPrice: 100}.Valid())
}

func TestBasisMarkToSpotBps(t *testing.T) {
	b := BasisObservation{SpotMid: 100, PerpMark: 100.5}
	assert.InDelta(t, 50.0, b.BasisMarkToSpotBps(), 1e-9)
}

func TestBasisMarkToSpotBpsZeroSpot(t *testing.T) {
	b := BasisObservation{SpotMid: 0, PerpMark: 100}
	assert.Equal(t, 0.0, b.BasisMarkToSpotBps())
}
