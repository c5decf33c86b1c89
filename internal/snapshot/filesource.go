package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/symbols"
)

// fileQuote is the on-disk shape of one raw venue quote row, before symbol
// canonicalization and numeric validation.
type fileQuote struct {
	Symbol string      `json:"symbol"`
	Bid    json.Number `json:"bid"`
	Ask    json.Number `json:"ask"`
}

type fileLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

type fileLadder struct {
	Bids []fileLevel `json:"bids"`
	Asks []fileLevel `json:"asks"`
}

type fileFunding struct {
	Symbol           string  `json:"symbol"`
	MarkPrice        float64 `json:"mark_price"`
	FundingRate      float64 `json:"funding_rate"`
	MinutesToFunding float64 `json:"minutes_to_funding"`
}

type fileDexQuote struct {
	OutBase        float64 `json:"out_base"`
	OutUSDC        float64 `json:"out_usdc"`
	BaseIn         float64 `json:"base_in"`
	PriceImpactBps float64 `json:"price_impact_bps"`
}

type fileBundle struct {
	SpotQuotes map[string][]fileQuote            `json:"spot_quotes"`
	PerpQuotes map[string][]fileFunding          `json:"perp_quotes"`
	Depth      map[string]map[string]fileLadder  `json:"depth"`
	DexQuotes  map[string]fileDexQuote           `json:"dex_quotes"` // token -> route at its quoted notional
	GasSamples map[string]GasStat                `json:"gas_samples"`
}

// FileSource implements Source by replaying a static JSON fixture loaded
// once at construction time, with venue-adapter normalization (symbol
// canonicalization, numeric validation) applied the same way a live
// adapter would. HTTP-specific adapters are out of scope; this is the
// reference collaborator the CLI wires in by default.
type FileSource struct {
	raw fileBundle
}

// LoadFileSource reads and parses a JSON fixture from disk. A structurally
// invalid file (unreadable, malformed JSON) is the one terminal error case;
// everything downstream of construction is fail-soft.
func LoadFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read input %s: %w", path, err)
	}
	var raw fileBundle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("snapshot: parse input %s: %w", path, err)
	}
	return &FileSource{raw: raw}, nil
}

func (f *FileSource) FetchSpotBook(ctx context.Context, venue string) ([]domain.NormalizedQuote, error) {
	rows, ok := f.raw.SpotQuotes[venue]
	if !ok {
		return nil, fmt.Errorf("snapshot: no spot quotes fixture for venue %s", venue)
	}
	now := time.Now().UTC()
	out := make([]domain.NormalizedQuote, 0, len(rows))
	for _, row := range rows {
		canon, ok := symbols.Canonical(row.Symbol)
		if !ok {
			continue // unrecognised quote suffix, skip
		}
		bid, errBid := row.Bid.Float64()
		ask, errAsk := row.Ask.Float64()
		if errBid != nil || errAsk != nil || bid <= 0 || ask <= 0 || ask <= bid {
			continue // numeric validation failure, skip
		}
		base, quote, _ := symbols.Parse(canon)
		out = append(out, domain.NormalizedQuote{
			DetectedAt: now,
			Venue:      venue,
			Market:     domain.MarketSpot,
			Symbol:     canon,
			Base:       base,
			Quote:      quote,
			BidPrice:   bid,
			AskPrice:   ask,
		})
	}
	return out, nil
}

func (f *FileSource) FetchDepth(ctx context.Context, venue, symbol string) (domain.DepthLadder, error) {
	byVenue, ok := f.raw.Depth[venue]
	if !ok {
		return domain.DepthLadder{}, fmt.Errorf("snapshot: no depth fixture for venue %s", venue)
	}
	raw, ok := byVenue[symbol]
	if !ok {
		return domain.DepthLadder{}, fmt.Errorf("snapshot: no depth fixture for %s/%s", venue, symbol)
	}
	ladder := domain.DepthLadder{Venue: venue, Symbol: symbol}
	for _, lvl := range raw.Bids {
		ladder.Bids = append(ladder.Bids, domain.PriceLevel{Price: lvl.Price, Size: lvl.Size})
	}
	for _, lvl := range raw.Asks {
		ladder.Asks = append(ladder.Asks, domain.PriceLevel{Price: lvl.Price, Size: lvl.Size})
	}
	return ladder, nil
}

func (f *FileSource) FetchPerp(ctx context.Context, venue string) ([]domain.FundingSnapshot, error) {
	rows, ok := f.raw.PerpQuotes[venue]
	if !ok {
		return nil, fmt.Errorf("snapshot: no perp fixture for venue %s", venue)
	}
	now := time.Now().UTC()
	out := make([]domain.FundingSnapshot, 0, len(rows))
	for _, row := range rows {
		canon, ok := symbols.Canonical(row.Symbol)
		if !ok {
			continue
		}
		out = append(out, domain.FundingSnapshot{
			Venue:            venue,
			Symbol:           canon,
			MarkPrice:        row.MarkPrice,
			FundingRate:      row.FundingRate,
			NextFundingTime:  now.Add(time.Duration(row.MinutesToFunding) * time.Minute),
			MinutesToFunding: row.MinutesToFunding,
		})
	}
	return out, nil
}

func (f *FileSource) FetchDexQuote(ctx context.Context, token string, usdAmount, slippageBps float64) (DexQuote, error) {
	raw, ok := f.raw.DexQuotes[token]
	if !ok {
		return DexQuote{}, fmt.Errorf("snapshot: no dex quote fixture for token %s", token)
	}
	return DexQuote{
		Token:          token,
		InUSD:          usdAmount,
		OutBase:        raw.OutBase,
		OutUSDC:        raw.OutUSDC,
		BaseIn:         raw.BaseIn,
		PriceImpactBps: raw.PriceImpactBps,
	}, nil
}

func (f *FileSource) FetchAuthenticatedBalances(ctx context.Context, venue string, creds any) ([]Balance, error) {
	return nil, fmt.Errorf("snapshot: authenticated balance fetch unsupported by file source for venue %s", venue)
}

func (f *FileSource) FetchVenueFeeRate(ctx context.Context, venue string, instrument domain.Instrument, symbol string) (float64, float64, error) {
	return 0, 0, fmt.Errorf("snapshot: live fee-rate fetch unsupported by file source for venue %s", venue)
}

func (f *FileSource) FetchNetworkGas(ctx context.Context, chain string) (GasStat, error) {
	stat, ok := f.raw.GasSamples[chain]
	if !ok {
		return GasStat{}, fmt.Errorf("snapshot: no gas sample fixture for chain %s", chain)
	}
	return stat, nil
}

// ParseVenueList turns a comma-separated --spot-venues/--perp-venues/--dex-tokens flag value
// into a trimmed, non-empty venue slice, used by cmd/edgescan.
func ParseVenueList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
