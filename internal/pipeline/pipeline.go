// Package pipeline wires the scoring run end to end: bounded
// venue fetch, the four candidate builders, the net-edge scorer, and the
// summariser. One Run call is one scoring run; Run keeps no run data
// between calls, though the Runner's shared Fetcher keeps its per-venue
// circuit-breaker state.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cryptoedge/edgescan/internal/builders"
	"github.com/cryptoedge/edgescan/internal/constraints"
	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/feetable"
	"github.com/cryptoedge/edgescan/internal/friction"
	applog "github.com/cryptoedge/edgescan/internal/log"
	"github.com/cryptoedge/edgescan/internal/profile"
	"github.com/cryptoedge/edgescan/internal/scorer"
	"github.com/cryptoedge/edgescan/internal/snapshot"
	"github.com/cryptoedge/edgescan/internal/summary"
	"github.com/cryptoedge/edgescan/internal/telemetry"
)

// DexTokenSpec names one DEX-routable token to quote against a set of CEX
// venues for the cex_dex builder.
type DexTokenSpec struct {
	Token     string
	Chain     string
	SlippageBps float64
}

// Request bundles everything one scoring run needs: which venues to fetch,
// which DEX tokens to route, the execution profile, and the optional
// fee-table/constraint-book/network-friction overlays.
type Request struct {
	SpotVenues []string
	PerpVenues []string
	DexTokens  []DexTokenSpec

	SizeUSD          float64
	Prepositioned    bool

	Profile      profile.Profile
	FeeTable     *feetable.Table     // nil disables the fee-table overlay
	Constraints  *constraints.Book   // nil disables constraint checks
	NetworkModel *friction.Model     // nil falls back to documented baselines

	BuildersConfig builders.Config

	InputPath       string
	ConstraintsPath string
	FeeTablePath    string
}

// Result is everything a caller needs to render the three output surfaces:
// the JSON shortlist, the markdown dashboard, and the rejection summary.
type Result struct {
	Shortlist []domain.ScoredOpportunity
	Summary   summary.Report
	Warnings  []string
}

// Runner executes scoring runs against a fixed Source, reusing one Fetcher
// (and its per-venue circuit breakers/rate limiters) across runs.
type Runner struct {
	fetcher  *snapshot.Fetcher
	source   snapshot.Source
	metrics  *telemetry.Registry
	progress *applog.ScanProgress // nil disables the interactive stage display
}

func NewRunner(fetcher *snapshot.Fetcher, source snapshot.Source, metrics *telemetry.Registry) *Runner {
	return &Runner{fetcher: fetcher, source: source, metrics: metrics}
}

// WithProgress attaches a stage-display tracker over the fetch/build/score/
// summarise stages, normally only set when stderr is a TTY.
func (rn *Runner) WithProgress(p *applog.ScanProgress) *Runner {
	rn.progress = p
	return rn
}

// Run executes one full scoring pass: fetch -> build -> score -> summarise.
func (rn *Runner) Run(ctx context.Context, req Request) (Result, error) {
	now := time.Now().UTC()
	var warnings []string

	if rn.metrics != nil {
		rn.metrics.ActiveScans.Inc()
		rn.metrics.ScansTotal.Inc()
		defer rn.metrics.ActiveScans.Dec()
	}

	rn.enterStage("fetch")
	fetchTimer := rn.stageTimer("fetch")
	bundle, fetchWarnings := rn.fetcher.Build(ctx, req.SpotVenues, req.PerpVenues)
	fetchTimer()
	warnings = append(warnings, fetchWarnings...)

	rn.enterStage("build")
	buildTimer := rn.stageTimer("build")
	candidates := rn.buildCandidates(ctx, now, bundle, req, &warnings)
	buildTimer()

	if rn.metrics != nil {
		for _, c := range candidates {
			rn.metrics.RecordCandidate(c.StrategyType)
		}
	}

	rn.enterStage("score")
	scoreTimer := rn.stageTimer("score")
	s := &scorer.Scorer{Profile: req.Profile, FeeTable: req.FeeTable, Constraints: req.Constraints}
	scored := make([]domain.ScoredOpportunity, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, s.Score(c))
	}
	scoreTimer()

	if rn.metrics != nil {
		rn.metrics.RecordScored(scored)
	}

	rn.enterStage("summarise")
	summariseTimer := rn.stageTimer("summarise")
	shortlist := summary.Shortlist(scored)
	rep := summary.Build(now, scored, summary.Inputs{
		InputPath:       req.InputPath,
		ConstraintsPath: req.ConstraintsPath,
		FeeTablePath:    req.FeeTablePath,
		Profile:         string(req.Profile.Name),
		MinNetEdgeBps:   req.Profile.MinNetEdgeBps,
		MaxRiskScore:    req.Profile.MaxRiskScore,
		Warnings:        warnings,
	})
	summariseTimer()
	if rn.progress != nil {
		rn.progress.CompleteStage()
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("qualified", rep.Counts.Qualified).
		Int("warnings", len(warnings)).
		Msg("scoring run complete")

	return Result{Shortlist: shortlist, Summary: rep, Warnings: warnings}, nil
}

// enterStage completes the previously running stage (if any) and starts
// the next one on the attached progress display.
func (rn *Runner) enterStage(stage string) {
	if rn.progress == nil {
		return
	}
	rn.progress.StartStage(stage)
}

func (rn *Runner) stageTimer(stage string) func() {
	if rn.metrics == nil {
		return func() {}
	}
	t := rn.metrics.StartStage(stage)
	return t.Stop
}

// buildCandidates runs all four builders over the fetched bundle and any
// on-demand DEX routes Builder-level failures (e.g. a DEX
// quote fetch error) degrade to a warning rather than aborting the run
//.
func (rn *Runner) buildCandidates(ctx context.Context, now time.Time, bundle *snapshot.Bundle, req Request, warnings *[]string) []domain.Candidate {
	var out []domain.Candidate

	spotByVenue := make(map[string][]builders.SpotVenueQuote, len(bundle.SpotQuotes))
	for venue, quotes := range bundle.SpotQuotes {
		vqs := make([]builders.SpotVenueQuote, 0, len(quotes))
		for _, q := range quotes {
			var ladder *domain.DepthLadder
			if bySymbol, ok := bundle.Depth[venue]; ok {
				if l, ok := bySymbol[q.Symbol]; ok {
					ll := l
					ladder = &ll
				}
			}
			vqs = append(vqs, builders.SpotVenueQuote{Venue: venue, Quote: q, Ladder: ladder})
		}
		spotByVenue[venue] = vqs
	}
	out = append(out, builders.BuildCexCex(now, spotByVenue, req.SizeUSD, req.BuildersConfig)...)

	out = append(out, builders.BuildFundingCarry(now, bundle.PerpQuotes, req.SizeUSD, req.BuildersConfig)...)

	out = append(out, rn.buildBasisCandidates(now, bundle, req)...)

	out = append(out, rn.buildDexCandidates(ctx, now, bundle, req, warnings)...)

	return out
}

// buildBasisCandidates pairs same-venue spot+perp quotes into
// BasisObservations for the perp_spot_basis builder.
func (rn *Runner) buildBasisCandidates(now time.Time, bundle *snapshot.Bundle, req Request) []domain.Candidate {
	var out []domain.Candidate
	for venue, spotQuotes := range bundle.SpotQuotes {
		perpQuotes, ok := bundle.PerpQuotes[venue]
		if !ok {
			continue
		}
		perpBySymbol := make(map[string]domain.FundingSnapshot, len(perpQuotes))
		for _, p := range perpQuotes {
			perpBySymbol[p.Symbol] = p
		}
		for _, spot := range spotQuotes {
			perp, ok := perpBySymbol[spot.Symbol]
			if !ok {
				continue
			}
			obs := domain.BasisObservation{
				Venue:       venue,
				Symbol:      spot.Symbol,
				SpotMid:     spot.MidPrice(),
				PerpMark:    perp.MarkPrice,
				FundingRate: perp.FundingRate,
			}
			c, ok := builders.BuildPerpSpotBasis(now, obs, perp.MinutesToFunding, req.SizeUSD, req.Prepositioned, req.BuildersConfig)
			if ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// buildDexCandidates quotes each configured DEX token against every CEX
// venue that carries a matching spot quote Route pricing
// is fetched on demand (not part of the bulk venue fan-out) since it
// depends on the requested USD notional.
func (rn *Runner) buildDexCandidates(ctx context.Context, now time.Time, bundle *snapshot.Bundle, req Request, warnings *[]string) []domain.Candidate {
	var out []domain.Candidate
	if rn.source == nil {
		return out
	}

	for _, spec := range req.DexTokens {
		cexQuotes := make(map[string]domain.NormalizedQuote)
		for venue, quotes := range bundle.SpotQuotes {
			for _, q := range quotes {
				if q.Base == spec.Token || q.Symbol == spec.Token {
					cexQuotes[venue] = q
					break
				}
			}
		}
		if len(cexQuotes) == 0 {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
		buyQuote, errBuy := rn.source.FetchDexQuote(callCtx, spec.Token, req.SizeUSD, spec.SlippageBps)
		sellQuote, errSell := rn.source.FetchDexQuote(callCtx, spec.Token, req.SizeUSD, spec.SlippageBps)
		cancel()
		if errBuy != nil || errSell != nil {
			*warnings = append(*warnings, fmt.Sprintf("token=%s dex route fetch failed", spec.Token))
			continue
		}

		route := builders.DeriveDexRoute(req.SizeUSD, buyQuote, sellQuote)
		out = append(out, builders.BuildCexDex(now, spec.Token, cexQuotes, route, req.NetworkModel, spec.Chain, req.SizeUSD, req.BuildersConfig)...)
	}
	return out
}
