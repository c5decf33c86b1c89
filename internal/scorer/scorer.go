// Package scorer implements the net-edge scorer with risk gating: friction
// arithmetic, multi-dimensional risk scoring, rejection-reason attribution,
// and dominant-drag classification
package scorer

import (
	"math"

	"github.com/cryptoedge/edgescan/internal/constraints"
	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/feetable"
	"github.com/cryptoedge/edgescan/internal/profile"
)

// roundBps / roundRisk implement the emission-boundary rounding: 6 decimals
// for bps/USD fields and 4 for risk; intermediates stay unrounded to
// preserve associativity.
func roundBps(x float64) float64   { return math.Round(x*1e6) / 1e6 }
func roundRisk(x float64) float64  { return math.Round(x*1e4) / 1e4 }

// Scorer applies an ExecutionProfile, an optional FeeTable, and an optional
// ConstraintBook to a Candidate, producing a ScoredOpportunity.
type Scorer struct {
	Profile    profile.Profile
	FeeTable   *feetable.Table // nil disables the fee-table overlay
	Constraints *constraints.Book // nil disables constraint checks
}

// Score evaluates one candidate steps 1-7.
func (s *Scorer) Score(c domain.Candidate) domain.ScoredOpportunity {
	out := domain.ScoredOpportunity{Candidate: c}

	// Step 1: resolve base fees.
	baseFees := c.FeesBps
	if s.FeeTable != nil {
		baseFees = s.FeeTable.Total(c, string(s.Profile.Name))
		out.FeeModelApplied = true
	}

	// Step 2: profile multipliers.
	fees := baseFees * s.Profile.FeeMultiplier
	slippage := c.SlippageBps * s.Profile.SlippageMultiplier
	latency := c.LatencyRiskBps * s.Profile.LatencyMultiplier
	transferDelay := c.TransferDelayMin * s.Profile.TransferDelayMultiplier
	transferRisk := transferDelay * s.Profile.TransferPenaltyBpsPerMin

	// Step 3: borrow contribution via ConstraintBook.
	var borrowCost float64
	var limits constraints.EffectiveLimits
	var inv constraints.InventoryResult
	var lev constraints.LeverageResult
	constraintsEnabled := s.Constraints != nil
	if constraintsEnabled {
		limits = s.Constraints.Resolve(c)
		inv = constraints.CheckInventory(c, limits)
		lev = s.Constraints.CheckLeverage(c, limits)
		holdHours := s.Constraints.HoldHours(c.StrategyType)
		borrowCost = constraints.BorrowCostBps(inv.BorrowUsedUSD, c.SizeUSD, limits.BorrowRateBpsPerHour, holdHours)
	}

	// Step 4: net edge.
	netEdge := c.GrossEdgeBps - fees - slippage - latency - transferRisk - borrowCost

	// Step 5: risk score.
	risk, components := riskScore(fees, slippage, latency, transferRisk, borrowCost, netEdge, constraintsEnabled)

	// Step 6: dominant drag.
	drag := dominantDrag(components)

	out.FeesBpsEffective = roundBps(fees)
	out.SlippageBpsEffective = roundBps(slippage)
	out.LatencyBpsEffective = roundBps(latency)
	out.TransferDelayMinEff = roundBps(transferDelay)
	out.TransferRiskBps = roundBps(transferRisk)
	out.BorrowCostBps = roundBps(borrowCost)
	out.NetEdgeBps = roundBps(netEdge)
	out.RiskScore = roundRisk(risk)
	out.DominantDrag = drag

	if constraintsEnabled {
		out.EffectiveMaxPositionUSD = limits.MaxPositionUSD
		out.LeverageNotionalUSD = roundBps(lev.LeverageNotionalUSD)
		out.LeverageUsed = roundRisk(lev.LeverageUsed)
		out.LeverageCap = limits.MaxLeverage
	}

	// Step 7: qualification + rejection reasons.
	reasons := rejectionReasons(c, netEdge, risk, fees, slippage, latency, transferRisk, borrowCost,
		s.Profile, constraintsEnabled, limits, inv, lev)
	out.RejectionReasons = reasons
	out.IsQualified = len(reasons) == 0

	return out
}

type riskComponents struct {
	fee, slip, latency, transfer, borrow float64
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func riskScore(fees, slippage, latency, transferRisk, borrowCost, netEdge float64, constraintsEnabled bool) (float64, riskComponents) {
	comp := riskComponents{
		fee:      clamp01(fees / 20),
		slip:     clamp01(slippage / 20),
		latency:  clamp01(latency / 12),
		transfer: clamp01(transferRisk / 12),
		borrow:   clamp01(borrowCost / 12),
	}
	edgeBuffer := clamp01((10 - math.Max(netEdge, 0)) / 10)

	var risk float64
	if constraintsEnabled {
		risk = 0.18*comp.fee + 0.22*comp.slip + 0.16*comp.latency + 0.16*comp.transfer + 0.14*comp.borrow + 0.14*edgeBuffer
	} else {
		risk = 0.20*comp.fee + 0.25*comp.slip + 0.20*comp.latency + 0.20*comp.transfer + 0.15*edgeBuffer
	}
	return risk, comp
}

func dominantDrag(c riskComponents) domain.DominantDrag {
	best := domain.DragFees
	bestVal := c.fee
	if c.slip > bestVal {
		best, bestVal = domain.DragSlippage, c.slip
	}
	if c.latency > bestVal {
		best, bestVal = domain.DragLatency, c.latency
	}
	if c.transfer > bestVal {
		best, bestVal = domain.DragTransfer, c.transfer
	}
	if c.borrow > bestVal {
		best, bestVal = domain.DragBorrow, c.borrow
	}
	return best
}

func rejectionReasons(c domain.Candidate, netEdge, risk, fees, slippage, latency, transferRisk, borrowCost float64,
	prof profile.Profile, constraintsEnabled bool, limits constraints.EffectiveLimits,
	inv constraints.InventoryResult, lev constraints.LeverageResult) []domain.RejectionReason {

	var reasons []domain.RejectionReason

	if netEdge < prof.MinNetEdgeBps {
		reasons = append(reasons, domain.ReasonNetEdgeBelowThreshold)
	}
	if risk > prof.MaxRiskScore {
		reasons = append(reasons, domain.ReasonRiskAboveThreshold)
	}
	if fees >= c.GrossEdgeBps {
		reasons = append(reasons, domain.ReasonFeeDominated)
	}
	if slippage >= c.GrossEdgeBps {
		reasons = append(reasons, domain.ReasonSlippageDominated)
	}
	if latency+transferRisk >= c.GrossEdgeBps {
		reasons = append(reasons, domain.ReasonLatencyTransferDominated)
	}
	if borrowCost > 0 && borrowCost >= c.GrossEdgeBps {
		reasons = append(reasons, domain.ReasonBorrowDominated)
	}

	if constraintsEnabled {
		const epsilon = 1e-9
		if c.SizeUSD > limits.MaxPositionUSD+epsilon {
			reasons = append(reasons, domain.ReasonPositionLimitExceeded)
		}
		if inv.InventoryUnavailable {
			reasons = append(reasons, domain.ReasonInventoryUnavailable)
		}
		if inv.BorrowLimitExceeded {
			reasons = append(reasons, domain.ReasonBorrowLimitExceeded)
		}
		if lev.LeverageLimitExceeded {
			reasons = append(reasons, domain.ReasonLeverageLimitExceeded)
		}
	}

	return reasons
}
