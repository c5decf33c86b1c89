// Package report renders the human-facing markdown dashboard for a scoring
// run: one row per scored opportunity with its route, edge, drag, and
// qualification outcome.
package report

import (
	"fmt"
	"strings"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// path renders the strategy's buy->sell leg as a short route label, e.g.
// "long_binance_perp -> short_bybit_perp".
func path(o domain.ScoredOpportunity) string {
	return o.BuyVenueTag() + " -> " + o.SellVenueTag()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func reasonsCell(reasons []domain.RejectionReason) string {
	if len(reasons) == 0 {
		return "-"
	}
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return strings.Join(out, ", ")
}

func leverageCell(o domain.ScoredOpportunity) string {
	if o.LeverageCap <= 0 {
		return fmt.Sprintf("%.2f/uncapped", o.LeverageUsed)
	}
	return fmt.Sprintf("%.2f/%.2f", o.LeverageUsed, o.LeverageCap)
}

// RenderMarkdown writes the dashboard table: one row per scored opportunity,
// in shortlist order.
func RenderMarkdown(scored []domain.ScoredOpportunity) string {
	var b strings.Builder

	b.WriteString("# Arbitrage Scan Shortlist\n\n")
	b.WriteString("| rank | symbol | path | gross | net | borrow | leverage_notional | leverage_used/cap | risk | drag | qualified | rejection_reasons |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|---|\n")

	for i, o := range scored {
		b.WriteString(fmt.Sprintf(
			"| %d | %s | %s | %.2f | %.2f | %.2f | %.2f | %s | %.4f | %s | %s | %s |\n",
			i+1,
			o.Symbol,
			path(o),
			o.GrossEdgeBps,
			o.NetEdgeBps,
			o.BorrowCostBps,
			o.LeverageNotionalUSD,
			leverageCell(o),
			o.RiskScore,
			o.DominantDrag,
			yesNo(o.IsQualified),
			reasonsCell(o.RejectionReasons),
		))
	}

	return b.String()
}
