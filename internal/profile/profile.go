// Package profile defines execution-quality presets: bundles of friction
// multipliers and qualification thresholds, collapsing what the source
// CLI exposed as many separate --*-multiplier flags into one value object.
package profile

// Name identifies one of the three built-in execution profiles.
type Name string

const (
	TakerDefault      Name = "taker_default"
	MakerInventory    Name = "maker_inventory"
	MakerInventoryVIP Name = "maker_inventory_vip"
)

// Profile carries the friction multipliers and qualification thresholds
// applied by the scorer.
type Profile struct {
	Name                       Name
	FeeMultiplier              float64
	SlippageMultiplier         float64
	LatencyMultiplier          float64
	TransferDelayMultiplier    float64
	TransferPenaltyBpsPerMin   float64
	MinNetEdgeBps              float64
	MaxRiskScore               float64
}

// Defaults returns the three built-in profiles, tuned to match the worked
// scoring examples in the design notes.
func Defaults() map[Name]Profile {
	return map[Name]Profile{
		TakerDefault: {
			Name:                     TakerDefault,
			FeeMultiplier:            1.0,
			SlippageMultiplier:       1.0,
			LatencyMultiplier:        1.0,
			TransferDelayMultiplier:  1.0,
			TransferPenaltyBpsPerMin: 0.45,
			MinNetEdgeBps:            8.0,
			MaxRiskScore:             0.55,
		},
		MakerInventory: {
			Name:                     MakerInventory,
			FeeMultiplier:            0.42,
			SlippageMultiplier:       0.85,
			LatencyMultiplier:        0.90,
			TransferDelayMultiplier:  1.0,
			TransferPenaltyBpsPerMin: 0.45,
			MinNetEdgeBps:            6.0,
			MaxRiskScore:             0.60,
		},
		MakerInventoryVIP: {
			Name:                     MakerInventoryVIP,
			FeeMultiplier:            0.30,
			SlippageMultiplier:       0.80,
			LatencyMultiplier:        0.85,
			TransferDelayMultiplier:  1.0,
			TransferPenaltyBpsPerMin: 0.45,
			MinNetEdgeBps:            5.0,
			MaxRiskScore:             0.62,
		},
	}
}

// Get returns the named built-in profile, defaulting to TakerDefault for
// an unrecognised name.
func Get(name string) Profile {
	profiles := Defaults()
	if p, ok := profiles[Name(name)]; ok {
		return p
	}
	return profiles[TakerDefault]
}

// WithOverrides returns a copy of p with any non-zero override applied;
// used to implement the CLI's --{fee|slippage|latency|transfer-delay}-multiplier,
// --transfer-penalty-bps-per-min, --min-net-edge-bps, --max-risk-score flags.
type Overrides struct {
	FeeMultiplier            *float64
	SlippageMultiplier       *float64
	LatencyMultiplier        *float64
	TransferDelayMultiplier  *float64
	TransferPenaltyBpsPerMin *float64
	MinNetEdgeBps            *float64
	MaxRiskScore             *float64
}

func (p Profile) WithOverrides(o Overrides) Profile {
	if o.FeeMultiplier != nil {
		p.FeeMultiplier = *o.FeeMultiplier
	}
	if o.SlippageMultiplier != nil {
		p.SlippageMultiplier = *o.SlippageMultiplier
	}
	if o.LatencyMultiplier != nil {
		p.LatencyMultiplier = *o.LatencyMultiplier
	}
	if o.TransferDelayMultiplier != nil {
		p.TransferDelayMultiplier = *o.TransferDelayMultiplier
	}
	if o.TransferPenaltyBpsPerMin != nil {
		p.TransferPenaltyBpsPerMin = *o.TransferPenaltyBpsPerMin
	}
	if o.MinNetEdgeBps != nil {
		p.MinNetEdgeBps = *o.MinNetEdgeBps
	}
	if o.MaxRiskScore != nil {
		p.MaxRiskScore = *o.MaxRiskScore
	}
	return p
}
