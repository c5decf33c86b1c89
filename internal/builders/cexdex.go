package builders

import (
	"math"
	"time"

	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/friction"
	"github.com/cryptoedge/edgescan/internal/snapshot"
)

// DexRoute is the two-sided DEX pricing derived from a router quote at the
// requested USD notional.
type DexRoute struct {
	DexMid      float64
	DexBid      float64
	DexAsk      float64
	SpreadBps   float64
	ImpactBps   float64
}

// DeriveDexRoute converts raw router quotes (buy side and sell side) into
// the DexRoute fields: dex_bid = out_usdc/base_in; dex_ask = size_usd/out_base;
// dex_mid = avg; spread = max(0, ...).
func DeriveDexRoute(sizeUSD float64, buyQuote, sellQuote snapshot.DexQuote) DexRoute {
	var dexBid, dexAsk float64
	if sellQuote.BaseIn > 0 {
		dexBid = sellQuote.OutUSDC / sellQuote.BaseIn
	}
	if buyQuote.OutBase > 0 {
		dexAsk = sizeUSD / buyQuote.OutBase
	}
	dexMid := (dexBid + dexAsk) / 2
	spread := 0.0
	if dexMid > 0 {
		spread = math.Max(0, (dexAsk-dexBid)/dexMid*1e4)
	}
	impact := (buyQuote.PriceImpactBps + sellQuote.PriceImpactBps) / 2
	return DexRoute{DexMid: dexMid, DexBid: dexBid, DexAsk: dexAsk, SpreadBps: spread, ImpactBps: impact}
}

// PassesGuards applies the reference-deviation and crossed-book guards.
func (r DexRoute) PassesGuards(cexMid float64, cfg Config) bool {
	if cexMid <= 0 || r.DexMid <= 0 {
		return false
	}
	deviationBps := math.Abs(r.DexMid-cexMid) / cexMid * 1e4
	if deviationBps > cfg.MaxRefDeviationBps {
		return false
	}
	rawSpread := (r.DexAsk - r.DexBid) / r.DexMid * 1e4
	if rawSpread < cfg.CrossedBookGuardBps {
		return false
	}
	return true
}

// BuildCexDex emits both-direction CEX/DEX candidates for a token that has
// CEX quotes and a priced DEX route.
func BuildCexDex(now time.Time, token string, cexQuotes map[string]domain.NormalizedQuote, route DexRoute,
	networkModel *friction.Model, chain string, sizeUSD float64, cfg Config) []domain.Candidate {

	var out []domain.Candidate
	for venue, cex := range cexQuotes {
		cexMid := cex.MidPrice()
		if !route.PassesGuards(cexMid, cfg) {
			continue
		}

		override := networkModel.OverrideFor(venue, chain)
		dexFees := override.TotalFeeBps()

		// Buy DEX, sell CEX.
		if grossBuyDex := (cex.BidPrice - route.DexAsk) / route.DexAsk * 1e4; grossBuyDex >= cfg.MinGrossEdgeBps {
			out = append(out, buildCexDexCandidate(now, token, venue, cex, route, dexFees, grossBuyDex, sizeUSD, cfg, true))
		}

		// Buy CEX, sell DEX.
		if grossBuyCex := (route.DexBid - cex.AskPrice) / cex.AskPrice * 1e4; grossBuyCex >= cfg.MinGrossEdgeBps {
			out = append(out, buildCexDexCandidate(now, token, venue, cex, route, dexFees, grossBuyCex, sizeUSD, cfg, false))
		}
	}
	return out
}

func buildCexDexCandidate(now time.Time, token, venue string, cex domain.NormalizedQuote, route DexRoute,
	dexFees, gross, sizeUSD float64, cfg Config, buyIsDex bool) domain.Candidate {

	fees := dexFees + defaultTaker("spot")
	slippage := 0.55*cex.SpreadBps() + 0.65*route.SpreadBps + 0.5*route.ImpactBps + 0.8
	latency := 2.4 + math.Max(0, 10-gross)*0.08

	var buyRole, sellRole domain.VenueRole
	if buyIsDex {
		buyRole = domain.VenueRole{Venue: "jupiter", Instrument: domain.InstrumentDex, Side: domain.SideBuy}
		sellRole = domain.VenueRole{Venue: venue, Instrument: domain.InstrumentSpot, Side: domain.SideSell}
	} else {
		buyRole = domain.VenueRole{Venue: venue, Instrument: domain.InstrumentSpot, Side: domain.SideBuy}
		sellRole = domain.VenueRole{Venue: "jupiter", Instrument: domain.InstrumentDex, Side: domain.SideSell}
	}

	return domain.Candidate{
		DetectedAt:       now,
		StrategyType:     domain.StrategyCexDex,
		Symbol:           token,
		BuyVenue:         buyRole,
		SellVenue:        sellRole,
		GrossEdgeBps:     gross,
		FeesBps:          fees,
		SlippageBps:      slippage,
		LatencyRiskBps:   latency,
		TransferDelayMin: cfg.CexDexTransferDelayMin,
		SizeUSD:          sizeUSD,
	}
}
