package builders

import (
	"math"
	"time"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// BuildPerpSpotBasis emits a same-venue perp-vs-spot candidate, choosing
// direction by the sign of the mark-to-spot basis.
func BuildPerpSpotBasis(now time.Time, obs domain.BasisObservation, minutesToFunding, sizeUSD float64, prepositioned bool, cfg Config) (domain.Candidate, bool) {
	basis := obs.BasisMarkToSpotBps()
	fundingBps := obs.FundingRate * 1e4

	var fundingEdge float64
	var buyRole, sellRole domain.VenueRole
	if basis >= 0 {
		// Perp premium: long spot, short perp.
		fundingEdge = fundingBps
		buyRole = domain.VenueRole{Venue: obs.Venue, Instrument: domain.InstrumentSpot, Side: domain.SideBuy}
		sellRole = domain.VenueRole{Venue: obs.Venue, Instrument: domain.InstrumentPerp, Side: domain.SideShort}
	} else {
		// Perp discount: long perp, short spot.
		fundingEdge = -fundingBps
		buyRole = domain.VenueRole{Venue: obs.Venue, Instrument: domain.InstrumentPerp, Side: domain.SideLong}
		sellRole = domain.VenueRole{Venue: obs.Venue, Instrument: domain.InstrumentSpot, Side: domain.SideSell}
	}

	captureRatio := clampUnit(cfg.BasisCaptureRatio)
	gross := math.Abs(basis)*captureRatio + fundingEdge
	if gross < cfg.MinGrossEdgeBps {
		return domain.Candidate{}, false
	}

	fees := 2 * (defaultTaker("spot") + defaultTaker("perp"))
	slippage := 2 * (defaultPerSideSlipBps + defaultPerSideSlipBps)
	latency := 0.7 + (minutesToFunding/60)*0.2 + math.Abs(basis)*0.015

	transferDelay := cfg.ColdTransferDelayMin
	if prepositioned {
		transferDelay = cfg.PrepositionedTransferDelayMin
	}

	return domain.Candidate{
		DetectedAt:       now,
		StrategyType:     domain.StrategyPerpSpotBasis,
		Symbol:           obs.Symbol,
		BuyVenue:         buyRole,
		SellVenue:        sellRole,
		GrossEdgeBps:     gross,
		FeesBps:          fees,
		SlippageBps:      slippage,
		LatencyRiskBps:   latency,
		TransferDelayMin: transferDelay,
		SizeUSD:          sizeUSD,
	}, true
}
