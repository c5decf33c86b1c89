package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/profile"
)

func baseCandidate() domain.Candidate {
	return domain.Candidate{
		StrategyType:     domain.StrategyCexCex,
		Symbol:           "BTC/USDT",
		GrossEdgeBps:     20,
		FeesBps:          5,
		SlippageBps:      3,
		LatencyRiskBps:   1,
		TransferDelayMin: 5,
		SizeUSD:          10_000,
	}
}

func TestScoreNetEdgeArithmetic(t *testing.T) {
	prof := profile.Get("taker_default")
	s := &Scorer{Profile: prof}

	out := s.Score(baseCandidate())

	expected := out.GrossEdgeBps - out.FeesBpsEffective - out.SlippageBpsEffective -
		out.LatencyBpsEffective - out.TransferRiskBps - out.BorrowCostBps
	assert.InDelta(t, expected, out.NetEdgeBps, 1e-4)
}

func TestScoreQualifiesWhenAboveThresholds(t *testing.T) {
	prof := profile.Get("taker_default")
	s := &Scorer{Profile: prof}

	c := baseCandidate()
	c.GrossEdgeBps = 30 // comfortably clears MinNetEdgeBps after small frictions
	out := s.Score(c)

	require.True(t, out.IsQualified)
	assert.Empty(t, out.RejectionReasons)
}

func TestScoreRejectsBelowMinNetEdge(t *testing.T) {
	prof := profile.Get("taker_default")
	s := &Scorer{Profile: prof}

	c := baseCandidate()
	c.GrossEdgeBps = 2 // well under MinNetEdgeBps even with small frictions
	out := s.Score(c)

	assert.False(t, out.IsQualified)
	assert.Contains(t, out.RejectionReasons, domain.ReasonNetEdgeBelowThreshold)
}

func TestScoreFeeDominatedReason(t *testing.T) {
	prof := profile.Get("taker_default")
	s := &Scorer{Profile: prof}

	c := baseCandidate()
	c.GrossEdgeBps = 10
	c.FeesBps = 15 // fees alone exceed gross edge
	out := s.Score(c)

	assert.Contains(t, out.RejectionReasons, domain.ReasonFeeDominated)
}

func TestScoreDominantDragPicksLargestComponent(t *testing.T) {
	prof := profile.Get("taker_default")
	s := &Scorer{Profile: prof}

	c := baseCandidate()
	c.SlippageBps = 18
	out := s.Score(c)

	assert.Equal(t, domain.DragSlippage, out.DominantDrag)
}
