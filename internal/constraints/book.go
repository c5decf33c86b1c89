// Package constraints implements the venue/asset constraint book: position,
// inventory, borrow, and leverage limits loaded from YAML.
package constraints

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// unboundedSentinel is the documented "no cap" sentinel (>= 1e18). Only
// used at the config/ingestion boundary; internally callers should treat
// any value >= this as unbounded.
const unboundedSentinel = 1e18

// Limits is the constraint rule for one (venue, asset) cell.
type Limits struct {
	MaxPositionUSD        float64 `yaml:"max_position_usd"`
	AvailableInventoryUSD float64 `yaml:"available_inventory_usd"`
	MaxBorrowUSD          float64 `yaml:"max_borrow_usd"`
	BorrowRateBpsPerHour  float64 `yaml:"borrow_rate_bps_per_hour"`
	MaxLeverage           float64 `yaml:"max_leverage"`
}

func (l Limits) effectiveMaxPosition() float64 {
	if l.MaxPositionUSD <= 0 {
		return unboundedSentinel
	}
	return l.MaxPositionUSD
}

type assetKey struct {
	venue string
	asset string
}

// Book is the canonicalized, loaded constraint book.
type Book struct {
	limits   map[assetKey]Limits
	defaults Limits

	StrategyHoldHours                map[domain.StrategyType]float64
	StrategyLeverageNotionalMultiplier map[domain.StrategyType]float64
}

type fileFormat struct {
	Venues   map[string]map[string]Limits `yaml:"venues"` // venue -> asset -> limits
	Defaults Limits                       `yaml:"defaults"`
	StrategyHoldHours map[string]float64  `yaml:"strategy_hold_hours"`
	StrategyLeverageNotionalMultiplier map[string]float64 `yaml:"strategy_leverage_notional_multiplier"`
}

// Load reads a constraint book template from a YAML file.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("constraints: read %s: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("constraints: parse %s: %w", path, err)
	}
	return fromFile(f), nil
}

func fromFile(f fileFormat) *Book {
	b := &Book{
		limits:   make(map[assetKey]Limits),
		defaults: f.Defaults,
		StrategyHoldHours: make(map[domain.StrategyType]float64),
		StrategyLeverageNotionalMultiplier: make(map[domain.StrategyType]float64),
	}
	for venue, byAsset := range f.Venues {
		canon := strings.ToLower(strings.TrimSpace(venue))
		for asset, limits := range byAsset {
			b.limits[assetKey{venue: canon, asset: strings.ToUpper(asset)}] = limits
		}
	}
	for strategy, hours := range f.StrategyHoldHours {
		b.StrategyHoldHours[domain.StrategyType(strategy)] = hours
	}
	for strategy, mult := range f.StrategyLeverageNotionalMultiplier {
		b.StrategyLeverageNotionalMultiplier[domain.StrategyType(strategy)] = mult
	}
	return b
}

// New builds a Book programmatically (tests, defaults-only fallback).
func New(venues map[string]map[string]Limits, defaults Limits,
	holdHours map[domain.StrategyType]float64, leverageMult map[domain.StrategyType]float64) *Book {
	b := &Book{
		limits:   make(map[assetKey]Limits),
		defaults: defaults,
		StrategyHoldHours: holdHours,
		StrategyLeverageNotionalMultiplier: leverageMult,
	}
	for venue, byAsset := range venues {
		canon := strings.ToLower(strings.TrimSpace(venue))
		for asset, limits := range byAsset {
			b.limits[assetKey{venue: canon, asset: strings.ToUpper(asset)}] = limits
		}
	}
	return b
}

// lookup resolves limits for (venue, asset), falling back to defaults
// field-by-field.
func (b *Book) lookup(venue, asset string) Limits {
	canon := strings.ToLower(strings.TrimSpace(venue))
	l, ok := b.limits[assetKey{venue: canon, asset: strings.ToUpper(asset)}]
	if !ok {
		return b.defaults
	}
	merged := l
	if merged.MaxPositionUSD == 0 {
		merged.MaxPositionUSD = b.defaults.MaxPositionUSD
	}
	if merged.AvailableInventoryUSD == 0 {
		merged.AvailableInventoryUSD = b.defaults.AvailableInventoryUSD
	}
	if merged.MaxBorrowUSD == 0 {
		merged.MaxBorrowUSD = b.defaults.MaxBorrowUSD
	}
	if merged.BorrowRateBpsPerHour == 0 {
		merged.BorrowRateBpsPerHour = b.defaults.BorrowRateBpsPerHour
	}
	if merged.MaxLeverage == 0 {
		merged.MaxLeverage = b.defaults.MaxLeverage
	}
	return merged
}

// EffectiveLimits holds the per-candidate resolved limits.
type EffectiveLimits struct {
	MaxPositionUSD        float64
	AvailableInventoryUSD float64
	MaxBorrowUSD          float64
	BorrowRateBpsPerHour  float64
	MaxLeverage           float64
}

// Resolve computes the effective limits for a candidate's buy/sell legs:
// min position cap across legs, inventory/borrow/rate taken from the sell
// (funding) side, min positive leverage cap across legs.
func (b *Book) Resolve(c domain.Candidate) EffectiveLimits {
	buyAsset := assetFromSymbol(c.Symbol)
	sellAsset := buyAsset

	buy := b.lookup(c.BuyVenue.Venue, buyAsset)
	sell := b.lookup(c.SellVenue.Venue, sellAsset)

	return EffectiveLimits{
		MaxPositionUSD:        minFloat(buy.effectiveMaxPosition(), sell.effectiveMaxPosition()),
		AvailableInventoryUSD: sell.AvailableInventoryUSD,
		MaxBorrowUSD:          sell.MaxBorrowUSD,
		BorrowRateBpsPerHour:  sell.BorrowRateBpsPerHour,
		MaxLeverage:           minPositive(buy.MaxLeverage, sell.MaxLeverage),
	}
}

func assetFromSymbol(symbol string) string {
	for i := 0; i < len(symbol); i++ {
		if symbol[i] == '/' {
			return symbol[:i]
		}
	}
	return symbol
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// minPositive returns the smaller of the two values that are > 0; if
// neither is positive, returns 0 meaning "no leverage cap".
func minPositive(a, b float64) float64 {
	switch {
	case a > 0 && b > 0:
		return minFloat(a, b)
	case a > 0:
		return a
	case b > 0:
		return b
	default:
		return 0
	}
}

const epsilon = 1e-9

// InventoryResult holds the inventory/borrow check outcome.
type InventoryResult struct {
	Applies             bool
	InventoryRequiredUSD float64
	BorrowRequiredUSD    float64
	InventoryUnavailable bool
	BorrowLimitExceeded  bool
	BorrowUsedUSD        float64
}

// strategiesRequiringInventory are the strategy families that fund a
// position from venue inventory; pure funding carry does not.
var strategiesRequiringInventory = map[domain.StrategyType]bool{
	domain.StrategyCexCex:        true,
	domain.StrategyCexDex:        true,
	domain.StrategyPerpSpotBasis: true,
}

// CheckInventory evaluates the inventory/borrow requirement for a
// candidate given its effective limits.
func CheckInventory(c domain.Candidate, limits EffectiveLimits) InventoryResult {
	res := InventoryResult{Applies: strategiesRequiringInventory[c.StrategyType]}
	if !res.Applies {
		return res
	}

	res.InventoryRequiredUSD = c.SizeUSD
	res.BorrowRequiredUSD = maxFloat(0, res.InventoryRequiredUSD-limits.AvailableInventoryUSD)

	if res.InventoryRequiredUSD > 0 && limits.AvailableInventoryUSD <= 0 && limits.MaxBorrowUSD <= 0 {
		res.InventoryUnavailable = true
	}
	if res.BorrowRequiredUSD > limits.MaxBorrowUSD+epsilon {
		res.BorrowLimitExceeded = true
	}
	res.BorrowUsedUSD = minFloat(res.BorrowRequiredUSD, limits.MaxBorrowUSD)
	return res
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// LeverageResult holds the leverage check outcome.
type LeverageResult struct {
	LeverageNotionalUSD float64
	EquityBaseUSD       float64
	LeverageUsed        float64
	LeverageCap         float64
	LeverageLimitExceeded bool
}

// CheckLeverage evaluates the leverage requirement for a candidate.
func (b *Book) CheckLeverage(c domain.Candidate, limits EffectiveLimits) LeverageResult {
	mult, ok := b.StrategyLeverageNotionalMultiplier[c.StrategyType]
	if !ok {
		mult = 1.0
	}
	res := LeverageResult{
		LeverageNotionalUSD: c.SizeUSD * mult,
		EquityBaseUSD:       maxFloat(0, limits.AvailableInventoryUSD),
		LeverageCap:         limits.MaxLeverage,
	}
	if res.EquityBaseUSD > 0 {
		res.LeverageUsed = res.LeverageNotionalUSD / res.EquityBaseUSD
	}
	if limits.MaxLeverage > 0 && (res.EquityBaseUSD <= 0 || res.LeverageUsed > limits.MaxLeverage+epsilon) {
		res.LeverageLimitExceeded = true
	}
	return res
}

// HoldHours returns the configured hold duration for a strategy, used by
// the borrow-cost formula.
func (b *Book) HoldHours(strategy domain.StrategyType) float64 {
	if h, ok := b.StrategyHoldHours[strategy]; ok {
		return h
	}
	return 1.0
}

// BorrowCostBps computes borrow_cost_bps = (borrow_used/size_usd) *
// borrow_rate_bps_per_hour * hold_hours
func BorrowCostBps(borrowUsedUSD, sizeUSD, borrowRateBpsPerHour, holdHours float64) float64 {
	if sizeUSD <= 0 {
		return 0
	}
	return (borrowUsedUSD / sizeUSD) * borrowRateBpsPerHour * holdHours
}
