// Package feetable implements venue/instrument fee lookup, canonicalization,
// and roundtrip-fee arithmetic, loaded from a YAML fee table.
package feetable

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// Rule is the fee schedule for one (venue, instrument) pair.
type Rule struct {
	TakerBps    float64 `yaml:"taker_bps"`
	MakerBps    float64 `yaml:"maker_bps"`
	MakerVIPBps float64 `yaml:"maker_vip_bps"`
}

// FeeMode selects which field of a Rule applies for a given execution
// profile.
type FeeMode string

const (
	FeeModeTaker    FeeMode = "taker"
	FeeModeMaker    FeeMode = "maker"
	FeeModeMakerVIP FeeMode = "maker_vip"
)

func (r Rule) bps(mode FeeMode) float64 {
	switch mode {
	case FeeModeMaker:
		return r.MakerBps
	case FeeModeMakerVIP:
		return r.MakerVIPBps
	default:
		return r.TakerBps
	}
}

// key identifies a (venue, instrument) cell of the fee table.
type key struct {
	venue      string
	instrument domain.Instrument
}

// Table is the canonicalized, loaded fee table: venue/instrument rules plus
// defaults, profile->mode mapping, and per-strategy roundtrip multipliers.
// Immutable once loaded; read-only during a scoring run.
type Table struct {
	rules    map[key]Rule
	defaults map[domain.Instrument]Rule

	ProfileFeeMode map[string]FeeMode
	StrategyRoundtripSideMultiplier map[domain.StrategyType]float64

	knownVenues map[string]bool
}

// fileFormat mirrors the on-disk YAML template shape.
type fileFormat struct {
	Venues map[string]map[string]Rule `yaml:"venues"` // venue -> instrument -> rule
	Defaults map[string]Rule          `yaml:"defaults"`
	ProfileFeeMode map[string]string  `yaml:"profile_fee_mode"`
	StrategyRoundtripSideMultiplier map[string]float64 `yaml:"strategy_roundtrip_side_multiplier"`
}

// Load reads a fee table template from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("feetable: read %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("feetable: parse %s: %w", path, err)
	}
	return fromFile(f), nil
}

func fromFile(f fileFormat) *Table {
	t := &Table{
		rules:       make(map[key]Rule),
		defaults:    make(map[domain.Instrument]Rule),
		ProfileFeeMode: make(map[string]FeeMode),
		StrategyRoundtripSideMultiplier: make(map[domain.StrategyType]float64),
		knownVenues: make(map[string]bool),
	}
	for venue, byInstrument := range f.Venues {
		canon := strings.ToLower(strings.TrimSpace(venue))
		t.knownVenues[canon] = true
		for instr, rule := range byInstrument {
			t.rules[key{venue: canon, instrument: domain.Instrument(instr)}] = clampRule(rule)
		}
	}
	for instr, rule := range f.Defaults {
		t.defaults[domain.Instrument(instr)] = clampRule(rule)
	}
	for profile, mode := range f.ProfileFeeMode {
		t.ProfileFeeMode[profile] = FeeMode(mode)
	}
	for strategy, mult := range f.StrategyRoundtripSideMultiplier {
		t.StrategyRoundtripSideMultiplier[domain.StrategyType(strategy)] = mult
	}
	return t
}

func clampRule(r Rule) Rule {
	if r.TakerBps < 0 {
		r.TakerBps = 0
	}
	if r.MakerBps < 0 {
		r.MakerBps = 0
	}
	if r.MakerVIPBps < 0 {
		r.MakerVIPBps = 0
	}
	return r
}

// New builds a Table programmatically (tests, defaults-only fallback).
func New(venues map[string]map[domain.Instrument]Rule, defaults map[domain.Instrument]Rule,
	profileFeeMode map[string]FeeMode, strategyMultiplier map[domain.StrategyType]float64) *Table {
	t := &Table{
		rules:       make(map[key]Rule),
		defaults:    defaults,
		ProfileFeeMode: profileFeeMode,
		StrategyRoundtripSideMultiplier: strategyMultiplier,
		knownVenues: make(map[string]bool),
	}
	for venue, byInstrument := range venues {
		canon := strings.ToLower(strings.TrimSpace(venue))
		t.knownVenues[canon] = true
		for instr, rule := range byInstrument {
			t.rules[key{venue: canon, instrument: instr}] = clampRule(rule)
		}
	}
	return t
}

var stopwords = map[string]bool{
	"long": true, "short": true, "spot": true, "perp": true,
	"futures": true, "future": true, "swap": true, "dex": true,
	"cex": true, "buy": true, "sell": true,
}

// Canonicalize lowercases a raw venue string and resolves it to a known
// venue key: exact match, else longest known-venue
// substring, else first non-stopword alphanumeric token, else the
// lowercase string itself. Idempotent: Canonicalize(Canonicalize(v)) == Canonicalize(v)
// once the known-venue set is fixed.
func (t *Table) Canonicalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if t.knownVenues[lower] {
		return lower
	}

	var longestMatch string
	for known := range t.knownVenues {
		if strings.Contains(lower, known) && len(known) > len(longestMatch) {
			longestMatch = known
		}
	}
	if longestMatch != "" {
		return longestMatch
	}

	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, tok := range tokens {
		if tok != "" && !stopwords[tok] {
			return tok
		}
	}
	return lower
}

// InferInstrument tokenises a raw venue string and infers the instrument
// via a token-priority rule.
func InferInstrument(raw string) domain.Instrument {
	lower := strings.ToLower(raw)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}

	for _, perpTok := range []string{"perp", "future", "futures", "swap"} {
		if tokenSet[perpTok] {
			return domain.InstrumentPerp
		}
	}
	for _, dexTok := range []string{"dex", "jupiter", "uniswap", "raydium", "0x", "orca"} {
		if tokenSet[dexTok] {
			return domain.InstrumentDex
		}
	}
	if tokenSet["spot"] {
		return domain.InstrumentSpot
	}
	if strings.Contains(lower, "jupiter") || strings.Contains(lower, "uniswap") {
		return domain.InstrumentDex
	}
	return domain.InstrumentSpot
}

// Lookup resolves the fee Rule for a canonicalized venue+instrument,
// falling through (venue,instrument) -> (venue,unknown) -> defaults[instrument]
// -> defaults[unknown]
func (t *Table) Lookup(venue string, instrument domain.Instrument) Rule {
	canon := t.Canonicalize(venue)
	if r, ok := t.rules[key{venue: canon, instrument: instrument}]; ok {
		return r
	}
	if r, ok := t.rules[key{venue: canon, instrument: domain.InstrumentUnknown}]; ok {
		return r
	}
	if r, ok := t.defaults[instrument]; ok {
		return r
	}
	return t.defaults[domain.InstrumentUnknown]
}

// ModeForProfile maps an execution profile name to its fee mode
// (taker_default->taker, maker_inventory->maker, maker_inventory_vip->maker_vip).
func (t *Table) ModeForProfile(profile string) FeeMode {
	if mode, ok := t.ProfileFeeMode[profile]; ok {
		return mode
	}
	switch profile {
	case "maker_inventory":
		return FeeModeMaker
	case "maker_inventory_vip":
		return FeeModeMakerVIP
	default:
		return FeeModeTaker
	}
}

// Total computes the roundtrip fee total for a candidate under a given
// execution profile: (buy_fee + sell_fee) * strategy_roundtrip_side_multiplier,
// clamped >= 0
func (t *Table) Total(c domain.Candidate, profile string) float64 {
	mode := t.ModeForProfile(profile)

	buyRule := t.Lookup(c.BuyVenue.Venue, c.BuyVenue.Instrument)
	sellRule := t.Lookup(c.SellVenue.Venue, c.SellVenue.Instrument)

	mult, ok := t.StrategyRoundtripSideMultiplier[c.StrategyType]
	if !ok {
		mult = 1.0
	}

	total := (buyRule.bps(mode) + sellRule.bps(mode)) * mult
	if total < 0 {
		total = 0
	}
	return total
}
