// Command edgescan runs the arbitrage opportunity scanner: fetch venue
// snapshots, build candidates across the four strategy families, score
// them against an execution profile, and emit a shortlist, a markdown
// dashboard, and a rejection summary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cryptoedge/edgescan/internal/builders"
	"github.com/cryptoedge/edgescan/internal/config"
	"github.com/cryptoedge/edgescan/internal/constraints"
	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/feetable"
	"github.com/cryptoedge/edgescan/internal/friction"
	"github.com/cryptoedge/edgescan/internal/httpapi"
	applog "github.com/cryptoedge/edgescan/internal/log"
	"github.com/cryptoedge/edgescan/internal/pipeline"
	"github.com/cryptoedge/edgescan/internal/profile"
	"github.com/cryptoedge/edgescan/internal/report"
	"github.com/cryptoedge/edgescan/internal/snapshot"
	"github.com/cryptoedge/edgescan/internal/telemetry"
)

const (
	appName = "edgescan"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Cross-venue crypto arbitrage opportunity scanner",
		Version: version,
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scoring pass over a snapshot input",
		RunE:  runScan,
	}

	scanCmd.Flags().String("input", "", "path to the JSON snapshot fixture (required)")
	scanCmd.Flags().String("output-json", "", "path to write the JSON shortlist (default: stdout)")
	scanCmd.Flags().String("output-md", "", "path to write the markdown dashboard")
	scanCmd.Flags().String("output-summary", "", "path to write the JSON rejection summary")
	scanCmd.Flags().String("execution-profile", string(profile.TakerDefault), "execution profile: taker_default|maker_inventory|maker_inventory_vip")
	scanCmd.Flags().String("constraints", "", "path to the constraint-book YAML (optional)")
	scanCmd.Flags().String("fee-table", "", "path to the fee-table YAML (optional)")
	scanCmd.Flags().String("providers", "", "path to the venue-adapter operations YAML (optional, enables rate limiting)")
	scanCmd.Flags().Float64("fee-multiplier", 0, "override the profile's fee_multiplier (0 = no override)")
	scanCmd.Flags().Float64("slippage-multiplier", 0, "override the profile's slippage_multiplier")
	scanCmd.Flags().Float64("latency-multiplier", 0, "override the profile's latency_multiplier")
	scanCmd.Flags().Float64("transfer-delay-multiplier", 0, "override the profile's transfer_delay_multiplier")
	scanCmd.Flags().Float64("transfer-penalty-bps-per-min", 0, "override the profile's transfer_penalty_bps_per_min")
	scanCmd.Flags().Float64("min-net-edge-bps", 0, "override the profile's min_net_edge_bps")
	scanCmd.Flags().Float64("max-risk-score", 0, "override the profile's max_risk_score")
	scanCmd.Flags().String("spot-venues", "", "comma-separated spot venues to score")
	scanCmd.Flags().String("perp-venues", "", "comma-separated perp venues to score")
	scanCmd.Flags().String("dex-tokens", "", "comma-separated DEX-routable tokens to score")
	scanCmd.Flags().String("dex-chain", "solana", "chain used for DEX network-friction lookups")
	scanCmd.Flags().Float64("size-usd", 10000, "candidate notional size in USD")
	scanCmd.Flags().Bool("prepositioned", false, "inventory is prepositioned for perp_spot_basis transfer delay")
	scanCmd.Flags().Int("metrics-port", 0, "if set, serve /healthz, /metrics, /shortlist, /summary on this port")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Serve the HTTP endpoints with an empty run state; no scan is run and /shortlist and /summary stay empty",
		RunE:  runMonitorOnly,
	}
	monitorCmd.Flags().Int("port", 8080, "HTTP server port")

	rootCmd.AddCommand(scanCmd, monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("edgescan exited with error")
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	inputPath, _ := cmd.Flags().GetString("input")
	if inputPath == "" {
		return fmt.Errorf("--input is required")
	}

	metrics := telemetry.Init()

	source, err := snapshot.LoadFileSource(inputPath)
	if err != nil {
		return err // unreadable/malformed input is the one terminal error,
	}

	fetchOpts := snapshot.DefaultFetchOptions()
	fetcher := snapshot.NewFetcher(source, fetchOpts).WithMetrics(metrics)

	if providersPath, _ := cmd.Flags().GetString("providers"); providersPath != "" {
		provCfg, err := config.LoadProvidersConfig(providersPath)
		if err != nil {
			logger.Warn().Err(err).Msg("providers config load failed, continuing unthrottled")
		} else {
			fetcher = fetcher.WithRateLimits(provCfg)
		}
	}

	prof, feeTable, constraintBook, err := loadOverlays(cmd)
	if err != nil {
		return err
	}

	constraintsPath, _ := cmd.Flags().GetString("constraints")
	feeTablePath, _ := cmd.Flags().GetString("fee-table")
	sizeUSD, _ := cmd.Flags().GetFloat64("size-usd")
	prepositioned, _ := cmd.Flags().GetBool("prepositioned")
	dexChain, _ := cmd.Flags().GetString("dex-chain")

	spotVenues := snapshot.ParseVenueList(mustString(cmd, "spot-venues"))
	perpVenues := snapshot.ParseVenueList(mustString(cmd, "perp-venues"))
	dexTokens := snapshot.ParseVenueList(mustString(cmd, "dex-tokens"))

	dexSpecs := make([]pipeline.DexTokenSpec, 0, len(dexTokens))
	for _, tok := range dexTokens {
		dexSpecs = append(dexSpecs, pipeline.DexTokenSpec{Token: tok, Chain: dexChain, SlippageBps: 50})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	netModel := buildNetworkModel(ctx, source, dexSpecs, sizeUSD, logger)

	runner := pipeline.NewRunner(fetcher, source, metrics)

	var progress *applog.ScanProgress
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = applog.NewScanProgress("scan "+runID, applog.StageNames)
		runner = runner.WithProgress(progress)
	}

	result, err := runner.Run(ctx, pipeline.Request{
		SpotVenues:      spotVenues,
		PerpVenues:      perpVenues,
		DexTokens:       dexSpecs,
		SizeUSD:         sizeUSD,
		Prepositioned:   prepositioned,
		Profile:         prof,
		FeeTable:        feeTable,
		Constraints:     constraintBook,
		NetworkModel:    netModel,
		BuildersConfig:  builders.DefaultConfig(),
		InputPath:       inputPath,
		ConstraintsPath: constraintsPath,
		FeeTablePath:    feeTablePath,
	})
	if progress != nil {
		if err != nil {
			progress.Fail(err.Error())
		} else {
			progress.Finish()
		}
	}
	if err != nil {
		return err
	}

	if err := writeJSON(cmd, "output-json", result.Shortlist); err != nil {
		return err
	}
	if err := writeMarkdown(cmd, result.Shortlist); err != nil {
		return err
	}
	if err := writeJSON(cmd, "output-summary", result.Summary); err != nil {
		return err
	}

	logger.Info().
		Int("qualified", result.Summary.Counts.Qualified).
		Int("candidates", result.Summary.Counts.Candidates).
		Int("warnings", len(result.Warnings)).
		Msg("scan complete")

	if port, _ := cmd.Flags().GetInt("metrics-port"); port > 0 {
		return serveResult(result, metrics, port)
	}
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// loadOverlays resolves the execution profile (with CLI overrides applied)
// and optionally loads the fee table / constraint book. A missing
// --fee-table or --constraints path simply disables that overlay.
func loadOverlays(cmd *cobra.Command) (profile.Profile, *feetable.Table, *constraints.Book, error) {
	profileName, _ := cmd.Flags().GetString("execution-profile")
	prof := profile.Get(profileName)
	prof = prof.WithOverrides(overridesFromFlags(cmd))

	var feeTable *feetable.Table
	if path, _ := cmd.Flags().GetString("fee-table"); path != "" {
		t, err := feetable.Load(path)
		if err != nil {
			return profile.Profile{}, nil, nil, err
		}
		feeTable = t
	}

	var constraintBook *constraints.Book
	if path, _ := cmd.Flags().GetString("constraints"); path != "" {
		b, err := constraints.Load(path)
		if err != nil {
			return profile.Profile{}, nil, nil, err
		}
		constraintBook = b
	}

	return prof, feeTable, constraintBook, nil
}

// buildNetworkModel fetches a live gas-rate sample for every distinct chain
// referenced by the configured DEX tokens and derives a network-friction
// cost for each. A venue whose chain fetch fails falls back to the
// documented baseline instead of aborting the run, the same fail-soft
// pattern the venue-adapter fetch pool uses.
func buildNetworkModel(ctx context.Context, source snapshot.Source, dexSpecs []pipeline.DexTokenSpec, sizeUSD float64, logger zerolog.Logger) *friction.Model {
	chains := make(map[string]struct{})
	for _, spec := range dexSpecs {
		if spec.Chain != "" {
			chains[spec.Chain] = struct{}{}
		}
	}
	if len(chains) == 0 {
		return nil
	}

	model := &friction.Model{Networks: make(map[string]friction.NetworkCost, len(chains))}
	for chain := range chains {
		stat, err := source.FetchNetworkGas(ctx, chain)
		if err != nil {
			logger.Warn().Str("chain", chain).Err(err).Msg("network gas fetch failed, using fallback cost")
			model.Networks[chain] = friction.Fallback(chain)
			continue
		}
		model.Networks[chain] = friction.DeriveNetworkCost(friction.GasSample{
			Chain:                 stat.Chain,
			PriorityFeeUSDPerUnit: stat.PriorityFeeUSDPerUnit,
			GasPriceUSDPerUnit:    stat.GasPriceUSDPerUnit,
			ComputeUnitsPerLeg:    1,
			LegsPerRoundtrip:      2,
			NativeUSDReference:    1,
			NotionalUSD:           sizeUSD,
		})
	}
	return model
}

func overridesFromFlags(cmd *cobra.Command) profile.Overrides {
	var o profile.Overrides
	setIfNonZero := func(name string, dst **float64) {
		v, _ := cmd.Flags().GetFloat64(name)
		if v != 0 {
			*dst = &v
		}
	}
	setIfNonZero("fee-multiplier", &o.FeeMultiplier)
	setIfNonZero("slippage-multiplier", &o.SlippageMultiplier)
	setIfNonZero("latency-multiplier", &o.LatencyMultiplier)
	setIfNonZero("transfer-delay-multiplier", &o.TransferDelayMultiplier)
	setIfNonZero("transfer-penalty-bps-per-min", &o.TransferPenaltyBpsPerMin)
	setIfNonZero("min-net-edge-bps", &o.MinNetEdgeBps)
	setIfNonZero("max-risk-score", &o.MaxRiskScore)
	return o
}

func writeJSON(cmd *cobra.Command, flag string, v any) error {
	path, _ := cmd.Flags().GetString(flag)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", flag, err)
	}
	if path == "" {
		if flag == "output-json" {
			fmt.Println(string(data))
		}
		return nil
	}
	return os.WriteFile(path, data, 0644)
}

func writeMarkdown(cmd *cobra.Command, shortlist []domain.ScoredOpportunity) error {
	path, _ := cmd.Flags().GetString("output-md")
	if path == "" {
		return nil
	}
	rendered := report.RenderMarkdown(shortlist)
	return os.WriteFile(path, []byte(rendered), 0644)
}

func serveResult(result pipeline.Result, metrics *telemetry.Registry, port int) error {
	state := &httpapi.RunState{}
	state.Update(result.Shortlist, result.Summary, result.Warnings)
	server := httpapi.NewServer(state, metrics, version)

	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("serving scan outputs")
	return http.ListenAndServe(addr, server.Router())
}

func runMonitorOnly(cmd *cobra.Command, args []string) error {
	metrics := telemetry.Init()
	state := &httpapi.RunState{}
	server := httpapi.NewServer(state, metrics, version)
	port, _ := cmd.Flags().GetInt("port")
	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("serving empty monitor endpoint, awaiting first scan")
	return http.ListenAndServe(addr, server.Router())
}
