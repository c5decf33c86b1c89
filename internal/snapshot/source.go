// Package snapshot defines the external collaborator contracts the core
// consumes: already-normalized venue data, a DEX router quote
// function, and a network-gas sampler. HTTP fetch mechanics, credential
// management, and signing ceremonies are deliberately out of scope — callers inject concrete adapters that implement this interface.
package snapshot

import (
	"context"
	"time"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// DexQuote is a single-sided DEX routing quote at a requested USD notional.
type DexQuote struct {
	Token      string
	InUSD      float64
	OutBase    float64 // base-asset received when spending InUSD
	OutUSDC    float64 // USDC received when selling BaseIn of the base asset
	BaseIn     float64 // base-asset quantity quoted for the sell side
	PriceImpactBps float64
}

// Balance is one asset's authenticated USD-valued balance on a venue.
type Balance struct {
	Asset string
	USD   float64
}

// Source is the full collaborator surface a SnapshotBundle is built from.
// Implementations perform the actual HTTP calls; the core never does I/O.
type Source interface {
	FetchSpotBook(ctx context.Context, venue string) ([]domain.NormalizedQuote, error)
	FetchDepth(ctx context.Context, venue, symbol string) (domain.DepthLadder, error)
	FetchPerp(ctx context.Context, venue string) ([]domain.FundingSnapshot, error)
	FetchDexQuote(ctx context.Context, token string, usdAmount, slippageBps float64) (DexQuote, error)
	FetchAuthenticatedBalances(ctx context.Context, venue string, creds any) ([]Balance, error)
	FetchVenueFeeRate(ctx context.Context, venue string, instrument domain.Instrument, symbol string) (takerBps, makerBps float64, err error)
	FetchNetworkGas(ctx context.Context, chain string) (GasStat, error)
}

// GasStat is the raw per-chain rate sample used by the network-friction
// model.
type GasStat struct {
	Chain                 string  `json:"chain"`
	PriorityFeeUSDPerUnit float64 `json:"priority_fee_usd_per_unit"`
	GasPriceUSDPerUnit    float64 `json:"gas_price_usd_per_unit"`
}

// Bundle is the per-run immutable collection of normalized records fanned
// out from N venue adapters. Built once per
// run and never mutated thereafter.
type Bundle struct {
	GeneratedAt time.Time

	SpotQuotes map[string][]domain.NormalizedQuote   // venue -> quotes
	PerpQuotes map[string][]domain.FundingSnapshot    // venue -> funding snapshots
	Depth      map[string]map[string]domain.DepthLadder // venue -> symbol -> ladder

	Warnings []string
}
