package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedge/edgescan/internal/domain"
)

func scoredOpp(symbol string, netEdge float64, qualified bool, reasons ...domain.RejectionReason) domain.ScoredOpportunity {
	return domain.ScoredOpportunity{
		Candidate:        domain.Candidate{Symbol: symbol},
		NetEdgeBps:       netEdge,
		IsQualified:      qualified,
		RejectionReasons: reasons,
	}
}

func TestShortlistSortsQualifiedFirstThenNetEdgeDesc(t *testing.T) {
	in := []domain.ScoredOpportunity{
		scoredOpp("ETH/USDT", 30, true),
		scoredOpp("BTC/USDT", 5, false, domain.ReasonNetEdgeBelowThreshold),
		scoredOpp("SOL/USDT", 10, true),
	}

	out := Shortlist(in)
	require.Len(t, out, 3)
	assert.Equal(t, "ETH/USDT", out[0].Symbol)
	assert.Equal(t, "SOL/USDT", out[1].Symbol)
	assert.Equal(t, "BTC/USDT", out[2].Symbol)
}

func TestShortlistTiebreaksLexicographically(t *testing.T) {
	in := []domain.ScoredOpportunity{
		{Candidate: domain.Candidate{Symbol: "BTC/USDT", SellVenue: domain.VenueRole{Venue: "z"}}, NetEdgeBps: 10, IsQualified: true},
		{Candidate: domain.Candidate{Symbol: "BTC/USDT", SellVenue: domain.VenueRole{Venue: "a"}}, NetEdgeBps: 10, IsQualified: true},
	}
	out := Shortlist(in)
	assert.Equal(t, "a", out[0].SellVenueTag()[len(out[0].SellVenueTag())-1:])
}

func TestBuildTalliesRejectionReasonsAndDominantDrag(t *testing.T) {
	scored := []domain.ScoredOpportunity{
		scoredOpp("ETH/USDT", 20, true),
		{Candidate: domain.Candidate{Symbol: "BTC/USDT"}, NetEdgeBps: -5, IsQualified: false,
			RejectionReasons: []domain.RejectionReason{domain.ReasonNetEdgeBelowThreshold}, DominantDrag: domain.DragFees},
	}

	rep := Build(time.Now(), scored, Inputs{Profile: "taker_default", MinNetEdgeBps: 8, MaxRiskScore: 0.55})

	assert.Equal(t, 2, rep.Counts.Candidates)
	assert.Equal(t, 1, rep.Counts.Qualified)
	assert.Equal(t, 1, rep.Counts.Rejected)
	assert.Equal(t, 1, rep.RejectionReasonCounts[domain.ReasonNetEdgeBelowThreshold])
	assert.Equal(t, 1, rep.DominantDragCounts[domain.DragFees])
	require.Len(t, rep.TopRejected, 1)
	assert.Equal(t, "BTC/USDT", rep.TopRejected[0].Symbol)
}

func TestBuildCapsTopRejectedAtTen(t *testing.T) {
	var scored []domain.ScoredOpportunity
	for i := 0; i < 15; i++ {
		scored = append(scored, scoredOpp("SYM/USDT", float64(i), false, domain.ReasonNetEdgeBelowThreshold))
	}
	rep := Build(time.Now(), scored, Inputs{})
	assert.Len(t, rep.TopRejected, 10)
}
