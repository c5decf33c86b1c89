// Package domain holds the snapshot-scoped entities that flow through a
// single scoring run: normalized quotes, depth ladders, funding and basis
// observations, candidates, and scored opportunities.
package domain

import "time"

// Market distinguishes the instrument type a quote was observed on.
type Market string

const (
	MarketSpot Market = "spot"
	MarketPerp Market = "perp"
)

// NormalizedQuote is a venue quote after symbol canonicalization and
// numeric validation. Immutable once constructed.
type NormalizedQuote struct {
	DetectedAt time.Time
	Venue      string
	Market     Market
	Symbol     string // "BASE/QUOTE"
	Base       string
	Quote      string
	BidPrice   float64
	AskPrice   float64
}

// MidPrice returns (bid+ask)/2.
func (q NormalizedQuote) MidPrice() float64 {
	return (q.BidPrice + q.AskPrice) / 2
}

// SpreadBps returns (ask-bid)/mid * 1e4, always >= 0 for a valid quote.
func (q NormalizedQuote) SpreadBps() float64 {
	mid := q.MidPrice()
	if mid <= 0 {
		return 0
	}
	return (q.AskPrice - q.BidPrice) / mid * 1e4
}

// Valid reports whether the quote satisfies the numeric-validation
// invariant: positive bid/ask, ask strictly above bid.
func (q NormalizedQuote) Valid() bool {
	return q.BidPrice > 0 && q.AskPrice > 0 && q.AskPrice > q.BidPrice
}

// PriceLevel is a single (price, quantity) row of a DepthLadder.
type PriceLevel struct {
	Price float64
	Size  float64 // base-asset quantity
}

// DepthLadder holds ordered bid/ask levels for one venue+symbol: bids
// descending by price, asks ascending by price.
type DepthLadder struct {
	Venue  string
	Symbol string
	Bids   []PriceLevel
	Asks   []PriceLevel
}

// FundingSnapshot is a perpetual venue's current funding state.
type FundingSnapshot struct {
	Venue             string
	Symbol            string
	MarkPrice         float64
	FundingRate       float64 // fraction, e.g. 0.0001
	NextFundingTime   time.Time
	MinutesToFunding  float64 // >= 0
}

// BasisObservation pairs same-venue perp and spot state for the
// perp_spot_basis strategy.
type BasisObservation struct {
	Venue       string
	Symbol      string
	SpotMid     float64
	PerpMark    float64
	FundingRate float64
}

// BasisMarkToSpotBps returns (perp_mark - spot_mid)/spot_mid * 1e4.
func (b BasisObservation) BasisMarkToSpotBps() float64 {
	if b.SpotMid <= 0 {
		return 0
	}
	return (b.PerpMark - b.SpotMid) / b.SpotMid * 1e4
}
