package builders

import (
	"math"
	"time"

	"github.com/cryptoedge/edgescan/internal/depth"
	"github.com/cryptoedge/edgescan/internal/domain"
)

// SpotVenueQuote pairs a normalized spot quote with its optional depth
// ladder at the candidate's requested size.
type SpotVenueQuote struct {
	Venue  string
	Quote  domain.NormalizedQuote
	Ladder *domain.DepthLadder // nil if unavailable
}

// BuildCexCex emits both-direction cross-venue spot candidates for every
// symbol present on both input venue sets
func BuildCexCex(now time.Time, venues map[string][]SpotVenueQuote, sizeUSD float64, cfg Config) []domain.Candidate {
	bySymbol := make(map[string]map[string]SpotVenueQuote) // symbol -> venue -> quote
	for venueName, quotes := range venues {
		for _, vq := range quotes {
			if bySymbol[vq.Quote.Symbol] == nil {
				bySymbol[vq.Quote.Symbol] = make(map[string]SpotVenueQuote)
			}
			bySymbol[vq.Quote.Symbol][venueName] = vq
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
				buyVenue, sellVenue := venueNames[i], venueNames[j]
				buy := byVenue[buyVenue]
				sell := byVenue[sellVenue]

				c, ok := buildCexCexDirection(now, symbol, buy, sell, sizeUSD, cfg)
				if ok {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func buildCexCexDirection(now time.Time, symbol string, buy, sell SpotVenueQuote, sizeUSD float64, cfg Config) (domain.Candidate, bool) {
	grossEdge := (sell.Quote.BidPrice - buy.Quote.AskPrice) / buy.Quote.AskPrice * 1e4
	if grossEdge < cfg.MinGrossEdgeBps {
		return domain.Candidate{}, false
	}

	fees := defaultTaker("spot") + defaultTaker("spot")

	slip, ok := depthPairSlippage(buy, sell, sizeUSD)
	if !ok {
		slip = 0.55*buy.Quote.SpreadBps() + 0.55*sell.Quote.SpreadBps() + 1.20
	}

	latency := 0.8 + math.Max(0, 8-grossEdge)*0.10

	return domain.Candidate{
		DetectedAt:       now,
		StrategyType:     domain.StrategyCexCex,
		Symbol:           symbol,
		BuyVenue:         domain.VenueRole{Venue: buy.Venue, Instrument: domain.InstrumentSpot, Side: domain.SideBuy},
		SellVenue:        domain.VenueRole{Venue: sell.Venue, Instrument: domain.InstrumentSpot, Side: domain.SideSell},
		GrossEdgeBps:     grossEdge,
		FeesBps:          fees,
		SlippageBps:      slip,
		LatencyRiskBps:   latency,
		TransferDelayMin: cfg.CexCexTransferDelayMin,
		SizeUSD:          sizeUSD,
	}, true
}

// depthPairSlippage computes buy_depth_slip + sell_depth_slip + 0.80 when
// both ladders are present and deep enough to fill sizeUSD.
func depthPairSlippage(buy, sell SpotVenueQuote, sizeUSD float64) (float64, bool) {
	if buy.Ladder == nil || sell.Ladder == nil {
		return 0, false
	}
	buySlip, ok1 := depth.BuySlippageBps(*buy.Ladder, buy.Quote.MidPrice(), sizeUSD)
	sellSlip, ok2 := depth.SellSlippageBps(*sell.Ladder, sell.Quote.MidPrice(), sizeUSD)
	if !ok1 || !ok2 {
		return 0, false
	}
	return buySlip + sellSlip + 0.80, true
}
