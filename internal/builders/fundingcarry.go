package builders

import (
	"math"
	"time"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// BuildFundingCarry emits both long/short assignments for every symbol
// present on both input perp venues.
func BuildFundingCarry(now time.Time, venues map[string][]domain.FundingSnapshot, sizeUSD float64, cfg Config) []domain.Candidate {
	bySymbol := make(map[string]map[string]domain.FundingSnapshot)
	for venueName, snaps := range venues {
		for _, s := range snaps {
			if bySymbol[s.Symbol] == nil {
				bySymbol[s.Symbol] = make(map[string]domain.FundingSnapshot)
			}
			bySymbol[s.Symbol][venueName] = s
		}
	}

	var out []domain.Candidate
	for symbol, byVenue := range bySymbol {
		venueNames := make([]string, 0, len(byVenue))
		for v := range byVenue {
			venueNames = append(venueNames, v)
		}
		for i := 0; i < len(venueNames); i++ {
			for j := 0; j < len(venueNames); j++ {
				if i == j {
					continue
				}
				longVenue, shortVenue := venueNames[i], venueNames[j]
				long := byVenue[longVenue]
				short := byVenue[shortVenue]

				c, ok := buildFundingCarryAssignment(now, symbol, long, short, sizeUSD, cfg)
				if ok {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func buildFundingCarryAssignment(now time.Time, symbol string, long, short domain.FundingSnapshot, sizeUSD float64, cfg Config) (domain.Candidate, bool) {
	gross := (short.FundingRate - long.FundingRate) * 1e4
	if gross < cfg.MinGrossEdgeBps {
		return domain.Candidate{}, false
	}

	holdMinutes := math.Max(long.MinutesToFunding, short.MinutesToFunding)
	skewMin := math.Abs(long.MinutesToFunding - short.MinutesToFunding)

	fees := 2 * (defaultTaker("perp") + defaultTaker("perp"))
	slippage := 2 * (defaultPerSideSlipBps + defaultPerSideSlipBps)
	latency := 0.75 + (holdMinutes/60)*0.35 + math.Max(0, skewMin-5)*0.06

	return domain.Candidate{
		DetectedAt:       now,
		StrategyType:     domain.StrategyFundingCarry,
		Symbol:           symbol,
		BuyVenue:         domain.VenueRole{Venue: long.Venue, Instrument: domain.InstrumentPerp, Side: domain.SideLong},
		SellVenue:        domain.VenueRole{Venue: short.Venue, Instrument: domain.InstrumentPerp, Side: domain.SideShort},
		GrossEdgeBps:     gross,
		FeesBps:          fees,
		SlippageBps:      slippage,
		LatencyRiskBps:   latency,
		TransferDelayMin: 0,
		SizeUSD:          sizeUSD,
	}, true
}
