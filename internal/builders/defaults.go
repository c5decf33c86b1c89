package builders

// defaultTakerBps is the built-in fallback taker fee used by candidate
// builders before any FeeTable overlay is applied.
var defaultTakerBps = map[string]float64{
	"spot": 8.0,
	"perp": 4.0,
}

func defaultTaker(instrument string) float64 {
	if bps, ok := defaultTakerBps[instrument]; ok {
		return bps
	}
	return defaultTakerBps["spot"]
}

// defaultPerSideSlipBps is a coarse built-in slippage estimate per venue
// leg, used for every leg by the funding-carry and perp/spot basis
// builders; neither consults a depth ladder.
const defaultPerSideSlipBps = 1.5
