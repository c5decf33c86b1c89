// Package depth implements size-aware slippage estimation by walking a
// DepthLadder with a tiered buy/sell slippage formula.
package depth

import (
	"math"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// BuySlippageBps walks asks ascending, accumulating quote spent, until
// sizeUSD of notional is filled. Returns ok=false if the ladder is too
// thin to fill the requested size.
func BuySlippageBps(ladder domain.DepthLadder, mid, sizeUSD float64) (slipBps float64, ok bool) {
	if mid <= 0 || sizeUSD <= 0 || len(ladder.Asks) == 0 {
		return 0, false
	}

	remainingUSD := sizeUSD
	var totalQuote, totalBase float64

	for _, lvl := range ladder.Asks {
		if remainingUSD <= 0 {
			break
		}
		levelUSD := lvl.Price * lvl.Size
		fillUSD := math.Min(remainingUSD, levelUSD)
		fillBase := fillUSD / lvl.Price

		totalQuote += fillUSD
		totalBase += fillBase
		remainingUSD -= fillUSD
	}

	if remainingUSD > 0 || totalBase <= 0 {
		return 0, false
	}

	avgExec := totalQuote / totalBase
	slip := (avgExec/mid - 1) * 1e4
	return math.Max(slip, 0), true
}

// SellSlippageBps walks bids descending, accumulating base sold, until
// target_base = sizeUSD/mid is reached. Returns ok=false if the ladder is
// too thin.
func SellSlippageBps(ladder domain.DepthLadder, mid, sizeUSD float64) (slipBps float64, ok bool) {
	if mid <= 0 || sizeUSD <= 0 || len(ladder.Bids) == 0 {
		return 0, false
	}

	targetBase := sizeUSD / mid
	remainingBase := targetBase
	var totalQuote, totalBase float64

	for _, lvl := range ladder.Bids {
		if remainingBase <= 0 {
			break
		}
		fillBase := math.Min(remainingBase, lvl.Size)
		fillUSD := fillBase * lvl.Price

		totalQuote += fillUSD
		totalBase += fillBase
		remainingBase -= fillBase
	}

	if remainingBase > 0 || totalBase <= 0 {
		return 0, false
	}

	avgExec := totalQuote / totalBase
	slip := (1 - avgExec/mid) * 1e4
	return math.Max(slip, 0), true
}

// Tier is one pre-computed (size_usd, slippage_bps) row, for venues that
// publish discrete depth tiers rather than a raw ladder; ClosestTier picks
// the row whose notional is closest to the requested size.
type Tier struct {
	SizeUSD float64
	SlipBps float64
}

// ClosestTier returns the tier whose SizeUSD is nearest to the requested
// notional.
func ClosestTier(tiers []Tier, requested float64) (Tier, bool) {
	if len(tiers) == 0 {
		return Tier{}, false
	}
	best := tiers[0]
	bestDist := math.Abs(best.SizeUSD - requested)
	for _, t := range tiers[1:] {
		d := math.Abs(t.SizeUSD - requested)
		if d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, true
}
