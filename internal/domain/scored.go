package domain

// DominantDrag names the friction component with the largest magnitude
// for a scored opportunity.
type DominantDrag string

const (
	DragFees      DominantDrag = "fees"
	DragSlippage  DominantDrag = "slippage"
	DragLatency   DominantDrag = "latency"
	DragTransfer  DominantDrag = "transfer"
	DragBorrow    DominantDrag = "borrow"
)

// RejectionReason is one entry of the disqualification taxonomy. Multiple
// reasons may co-occur on a single ScoredOpportunity.
type RejectionReason string

const (
	ReasonNetEdgeBelowThreshold  RejectionReason = "net_edge_below_threshold"
	ReasonRiskAboveThreshold     RejectionReason = "risk_score_above_threshold"
	ReasonFeeDominated           RejectionReason = "fee_dominated"
	ReasonSlippageDominated      RejectionReason = "slippage_dominated"
	ReasonLatencyTransferDominated RejectionReason = "latency_transfer_dominated"
	ReasonBorrowDominated        RejectionReason = "borrow_dominated"
	ReasonPositionLimitExceeded  RejectionReason = "position_limit_exceeded"
	ReasonInventoryUnavailable   RejectionReason = "inventory_unavailable"
	ReasonBorrowLimitExceeded    RejectionReason = "borrow_limit_exceeded"
	ReasonLeverageLimitExceeded  RejectionReason = "leverage_limit_exceeded"
)

// ScoredOpportunity is a Candidate enriched with post-overlay friction,
// net edge, risk score, classification, and qualification outcome.
type ScoredOpportunity struct {
	Candidate

	FeesBpsEffective     float64 `json:"fees_bps_effective"`
	SlippageBpsEffective float64 `json:"slippage_bps_effective"`
	LatencyBpsEffective  float64 `json:"latency_bps_effective"`
	TransferDelayMinEff  float64 `json:"transfer_delay_min_effective"`
	TransferRiskBps      float64 `json:"transfer_risk_bps"`
	BorrowCostBps        float64 `json:"borrow_cost_bps"`

	NetEdgeBps       float64           `json:"net_edge_bps"`
	RiskScore        float64           `json:"risk_score"`
	DominantDrag     DominantDrag      `json:"dominant_drag"`
	IsQualified      bool              `json:"is_qualified"`
	RejectionReasons []RejectionReason `json:"rejection_reasons"`

	// Constraint-book diagnostics, populated only when a ConstraintBook
	// was supplied to the scorer.
	EffectiveMaxPositionUSD float64 `json:"effective_max_position_usd,omitempty"`
	LeverageNotionalUSD     float64 `json:"leverage_notional_usd,omitempty"`
	LeverageUsed            float64 `json:"leverage_used,omitempty"`
	LeverageCap             float64 `json:"leverage_cap,omitempty"`

	// FeeModelApplied is set when a FeeTable was supplied to the scorer.
	FeeModelApplied bool `json:"fee_model_applied"`
}
