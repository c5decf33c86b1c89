// Package friction models network/router transaction-cost overlays for the
// cex_dex builder: a fetch failure degrades to a documented fallback rather
// than aborting the run.
package friction

// DexFeeOverride is the per-venue router/network fee pair exported by the
// network-friction model for the cex_dex builder.
type DexFeeOverride struct {
	RouterFeeBps  float64
	NetworkFeeBps float64
}

func (o DexFeeOverride) TotalFeeBps() float64 {
	return o.RouterFeeBps + o.NetworkFeeBps
}

// NetworkCost is the estimated roundtrip tx cost for one chain.
type NetworkCost struct {
	Chain                    string
	EstimatedCostUSDRoundtrip float64
	EstimatedCostBpsRoundtrip float64
	Source                   string // "live" or "fallback"
	Warnings                 []string
}

// defaultRouterFeeBps is the consolidated fallback value the source
// scattered across multiple call sites.
const defaultRouterFeeBps = 4.0

// defaultNetworkFeeBpsByChain are documented baselines used when a live
// gas-rate sample cannot be fetched, keyed by chain family.
var defaultNetworkFeeBpsByChain = map[string]float64{
	"solana": 0.5,
	"evm_l1": 6.0,
	"evm_l2": 1.2,
}

// Model is the loaded/derived network-friction model for a scoring run.
// Immutable during the run.
type Model struct {
	DexFeeOverrides map[string]DexFeeOverride // venue_canonical -> override
	Networks        map[string]NetworkCost    // chain -> cost
}

// GasSample is the raw rate sample a SnapshotSource.fetch_network_gas
// collaborator would return for one chain.
type GasSample struct {
	Chain                string
	PriorityFeeUSDPerUnit float64
	GasPriceUSDPerUnit    float64
	ComputeUnitsPerLeg    float64
	LegsPerRoundtrip      int
	NativeUSDReference    float64
	NotionalUSD           float64 // canonical notional for bps conversion
}

// DeriveNetworkCost converts a gas sample into a NetworkCost at the
// sample's canonical notional.
func DeriveNetworkCost(sample GasSample) NetworkCost {
	if sample.LegsPerRoundtrip <= 0 {
		sample.LegsPerRoundtrip = 2
	}
	perLegUSD := sample.PriorityFeeUSDPerUnit + sample.GasPriceUSDPerUnit
	totalUSD := perLegUSD * sample.ComputeUnitsPerLeg * float64(sample.LegsPerRoundtrip) * sample.NativeUSDReference

	bps := 0.0
	if sample.NotionalUSD > 0 {
		bps = totalUSD / sample.NotionalUSD * 1e4
	}

	return NetworkCost{
		Chain:                    sample.Chain,
		EstimatedCostUSDRoundtrip: totalUSD,
		EstimatedCostBpsRoundtrip: bps,
		Source:                   "live",
	}
}

// Fallback returns a documented baseline NetworkCost for a chain whose
// live gas sample could not be fetched (fail-soft).
func Fallback(chain string) NetworkCost {
	bps, ok := defaultNetworkFeeBpsByChain[chain]
	if !ok {
		bps = defaultNetworkFeeBpsByChain["evm_l1"]
	}
	return NetworkCost{
		Chain:                    chain,
		EstimatedCostBpsRoundtrip: bps,
		Source:                   "fallback",
		Warnings:                 []string{"network gas fetch failed, using documented baseline for " + chain},
	}
}

// OverrideFor resolves the DEX fee override for a venue. When no override
// was loaded it uses the consolidated default router fee plus the model's
// network cost for the chain, or the documented chain baseline when the
// model has no cost for that chain.
func (m *Model) OverrideFor(venueCanonical, chain string) DexFeeOverride {
	if m != nil {
		if o, ok := m.DexFeeOverrides[venueCanonical]; ok {
			return o
		}
	}
	networkBps := defaultNetworkFeeBpsByChain[chain]
	if m != nil {
		if nc, ok := m.Networks[chain]; ok {
			networkBps = nc.EstimatedCostBpsRoundtrip
		}
	}
	return DexFeeOverride{RouterFeeBps: defaultRouterFeeBps, NetworkFeeBps: networkBps}
}
