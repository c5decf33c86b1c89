package domain

import (
	"encoding/json"
	"time"
)

// StrategyType is a tagged sum type over the four candidate-builder
// families. Friction formulas dispatch on this rather than on string
// comparisons against venue tags.
type StrategyType string

const (
	StrategyCexCex           StrategyType = "cex_cex"
	StrategyCexDex           StrategyType = "cex_dex"
	StrategyFundingCarry     StrategyType = "funding_carry_cex_cex"
	StrategyPerpSpotBasis    StrategyType = "perp_spot_basis"
)

// Instrument is the instrument role a venue tag encodes.
type Instrument string

const (
	InstrumentSpot    Instrument = "spot"
	InstrumentPerp    Instrument = "perp"
	InstrumentDex     Instrument = "dex"
	InstrumentUnknown Instrument = "unknown"
)

// Side is the directional role a venue leg plays in a candidate.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
	SideBuy   Side = "buy"
	SideSell  Side = "sell"
)

// VenueRole is the structured form of the legacy tagged-string venue
// encoding (e.g. "long_binance_perp"). The scorer and fee/constraint
// lookups consume this; a display tag is emitted only for presentation.
type VenueRole struct {
	Venue      string
	Instrument Instrument
	Side       Side
}

// Tag renders the legacy display form, e.g. "long_binance_perp".
func (v VenueRole) Tag() string {
	if v.Instrument == "" || v.Instrument == InstrumentUnknown {
		return string(v.Side) + "_" + v.Venue
	}
	return string(v.Side) + "_" + v.Venue + "_" + string(v.Instrument)
}

// MarshalJSON renders a VenueRole as the tagged display string for
// buy_venue/sell_venue (e.g. "long_binance_perp"), not a nested object.
func (v VenueRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Tag())
}

// Candidate is a strategy-specific arbitrage opportunity with explicit
// gross-edge and friction components, prior to execution-profile/fee-table/
// constraint-book overlay.
type Candidate struct {
	DetectedAt       time.Time    `json:"detected_at"`
	StrategyType     StrategyType `json:"strategy_type"`
	Symbol           string       `json:"symbol"`
	BuyVenue         VenueRole    `json:"buy_venue"`
	SellVenue        VenueRole    `json:"sell_venue"`
	GrossEdgeBps     float64      `json:"gross_edge_bps"`
	FeesBps          float64      `json:"fees_bps"`
	SlippageBps      float64      `json:"slippage_bps"`
	LatencyRiskBps   float64      `json:"latency_risk_bps"`
	TransferDelayMin float64      `json:"transfer_delay_min"`
	SizeUSD          float64      `json:"size_usd"`
	Notes            string       `json:"notes,omitempty"`
}

// BuyVenueTag and SellVenueTag render the legacy tagged-string form for
// display/JSON, matching the buy_venue/sell_venue encoding.
func (c Candidate) BuyVenueTag() string  { return c.BuyVenue.Tag() }
func (c Candidate) SellVenueTag() string { return c.SellVenue.Tag() }
