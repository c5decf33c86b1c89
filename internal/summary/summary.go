// Package summary aggregates a scoring run's rejections and builds the
// ranked shortlist and rejection-summary payload.
package summary

import (
	"sort"
	"time"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// Rules echoes the effective thresholds a run was scored against, for the
// rejection summary's "rules" block.
type Rules struct {
	Profile         string  `json:"profile"`
	MinNetEdgeBps   float64 `json:"min_net_edge_bps"`
	MaxRiskScore    float64 `json:"max_risk_score"`
}

// Counts tallies candidate/qualification outcomes for a run.
type Counts struct {
	Candidates      int  `json:"candidates"`
	Qualified       int  `json:"qualified"`
	Rejected        int  `json:"rejected"`
	FeeModelApplied bool `json:"fee_model_applied"`
}

// Report is the structured rejection-summary payload.
type Report struct {
	GeneratedAt           time.Time                          `json:"generated_at"`
	Input                 string                             `json:"input"`
	ConstraintsPath       string                             `json:"constraints_path"`
	FeeTablePath          string                             `json:"fee_table_path"`
	Profile               string                             `json:"profile"`
	Rules                 Rules                              `json:"rules"`
	Counts                Counts                             `json:"counts"`
	RejectionReasonCounts map[domain.RejectionReason]int     `json:"rejection_reason_counts"`
	DominantDragCounts    map[domain.DominantDrag]int        `json:"dominant_drag_counts"`
	TopRejected           []domain.ScoredOpportunity         `json:"top_rejected"`
	Warnings              []string                           `json:"warnings,omitempty"`
}

// Inputs bundles the run metadata needed to build a Report.
type Inputs struct {
	InputPath       string
	ConstraintsPath string
	FeeTablePath    string
	Profile         string
	MinNetEdgeBps   float64
	MaxRiskScore    float64
	Warnings        []string
}

// Build tallies rejection reasons/dominant drag across non-qualified
// opportunities, lists the top-10 rejected by descending net edge, and
// assembles the rejection-summary payload.
func Build(now time.Time, scored []domain.ScoredOpportunity, in Inputs) Report {
	reasonCounts := make(map[domain.RejectionReason]int)
	dragCounts := make(map[domain.DominantDrag]int)

	var rejected []domain.ScoredOpportunity
	qualified := 0
	feeModelApplied := false

	for _, s := range scored {
		if s.FeeModelApplied {
			feeModelApplied = true
		}
		if s.IsQualified {
			qualified++
			continue
		}
		rejected = append(rejected, s)
		for _, reason := range s.RejectionReasons {
			reasonCounts[reason]++
		}
		dragCounts[s.DominantDrag]++
	}

	sort.SliceStable(rejected, func(i, j int) bool {
		return rejected[i].NetEdgeBps > rejected[j].NetEdgeBps
	})
	topN := rejected
	if len(topN) > 10 {
		topN = topN[:10]
	}

	return Report{
		GeneratedAt:     now,
		Input:           in.InputPath,
		ConstraintsPath: in.ConstraintsPath,
		FeeTablePath:    in.FeeTablePath,
		Profile:         in.Profile,
		Rules: Rules{
			Profile:       in.Profile,
			MinNetEdgeBps: in.MinNetEdgeBps,
			MaxRiskScore:  in.MaxRiskScore,
		},
		Counts: Counts{
			Candidates:      len(scored),
			Qualified:       qualified,
			Rejected:        len(rejected),
			FeeModelApplied: feeModelApplied,
		},
		RejectionReasonCounts: reasonCounts,
		DominantDragCounts:    dragCounts,
		TopRejected:           topN,
		Warnings:              in.Warnings,
	}
}

// Shortlist sorts scored opportunities by (is_qualified desc, net_edge_bps
// desc), ties broken lexicographically on (symbol, buy_venue, sell_venue).
func Shortlist(scored []domain.ScoredOpportunity) []domain.ScoredOpportunity {
	out := make([]domain.ScoredOpportunity, len(scored))
	copy(out, scored)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsQualified != b.IsQualified {
			return a.IsQualified
		}
		if a.NetEdgeBps != b.NetEdgeBps {
			return a.NetEdgeBps > b.NetEdgeBps
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.BuyVenueTag() != b.BuyVenueTag() {
			return a.BuyVenueTag() < b.BuyVenueTag()
		}
		return a.SellVenueTag() < b.SellVenueTag()
	})
	return out
}
