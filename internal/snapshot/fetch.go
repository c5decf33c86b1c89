package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cryptoedge/edgescan/internal/config"
	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/telemetry"
)

// FetchOptions configures the bounded parallel venue-adapter fan-out: up
// to N adapters run concurrently, each isolated so one venue's failure
// never blocks another, with a bounded per-call timeout.
type FetchOptions struct {
	MaxConcurrency int           // suggested N=8
	PerCallTimeout time.Duration // default 8-15s
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{MaxConcurrency: 8, PerCallTimeout: 12 * time.Second}
}

// Fetcher orchestrates bounded-parallel fetches against a Source, wrapping
// each venue in its own circuit breaker so repeated timeouts degrade that
// venue to fail-soft without tripping the whole run.
type Fetcher struct {
	source    Source
	opts      FetchOptions
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
	limiters  map[string]*rate.Limiter        // venue -> limiter, nil map means unthrottled
	providers map[string]config.ProviderConfig // venue -> loaded circuit/backoff tuning, nil map means defaults
	metrics   *telemetry.Registry              // nil disables adapter latency/failure recording
}

func NewFetcher(source Source, opts FetchOptions) *Fetcher {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 8
	}
	if opts.PerCallTimeout <= 0 {
		opts.PerCallTimeout = 12 * time.Second
	}
	return &Fetcher{source: source, opts: opts, breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

// WithRateLimits attaches per-venue token-bucket limiters and per-venue
// circuit/backoff tuning derived from a loaded venue-adapter operations
// config (internal/config.ProvidersConfig). Venues absent from cfg keep
// the conservative built-in breaker defaults.
func (f *Fetcher) WithRateLimits(cfg *config.ProvidersConfig) *Fetcher {
	if cfg == nil {
		return f
	}
	f.limiters = make(map[string]*rate.Limiter, len(cfg.Providers))
	f.providers = make(map[string]config.ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		p := p
		f.limiters[name] = p.RateLimiter()
		f.providers[name] = p
	}
	return f
}

// WithMetrics attaches a telemetry registry so every adapter call records
// its latency and, on failure, increments the per-venue failure counter.
func (f *Fetcher) WithMetrics(metrics *telemetry.Registry) *Fetcher {
	f.metrics = metrics
	return f
}

func (f *Fetcher) recordAdapterCall(venue, call string, start time.Time, err error) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordAdapterCall(venue, call, time.Since(start), err)
}

func (f *Fetcher) wait(ctx context.Context, venue string) error {
	if f.limiters == nil {
		return nil
	}
	if l, ok := f.limiters[venue]; ok {
		return l.Wait(ctx)
	}
	return nil
}

// breakerFor lazily builds a venue's circuit breaker from its loaded
// ProviderConfig (WithRateLimits), falling back to conservative defaults
// (trip after 3 consecutive failures, 30s cooldown) for a venue with no
// loaded config. FailureThreshold/SuccessThreshold govern ReadyToTrip and
// the half-open probe count; BackoffMS.Base/Max govern the closed-state
// failure-count reset window and the open-state cooldown respectively, so
// a venue configured with a longer backoff also waits longer before the
// breaker lets traffic back through.
func (f *Fetcher) breakerFor(venue string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.breakers[venue]; ok {
		return b
	}

	failureThreshold := uint32(3)
	maxRequests := uint32(1)
	interval := time.Duration(0)
	timeout := 30 * time.Second

	if p, ok := f.providers[venue]; ok {
		if p.Circuit.FailureThreshold > 0 {
			failureThreshold = uint32(p.Circuit.FailureThreshold)
		}
		if p.Circuit.SuccessThreshold > 0 {
			maxRequests = uint32(p.Circuit.SuccessThreshold)
		}
		if p.BackoffMS.Base > 0 {
			interval = p.GetBaseBackoff()
		}
		if p.BackoffMS.Max > 0 {
			timeout = p.GetMaxBackoff()
		}
	}

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "venue:" + venue,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
	})
	f.breakers[venue] = b
	return b
}

// FetchSpotVenues fans out FetchSpotBook across venues, bounded at
// MaxConcurrency. A failing venue contributes a warning and an empty
// result rather than aborting the run.
func (f *Fetcher) FetchSpotVenues(ctx context.Context, venues []string) (map[string][]domain.NormalizedQuote, []string) {
	results := make(map[string][]domain.NormalizedQuote)
	var mu sync.Mutex
	var warnings []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.MaxConcurrency)

	for _, venue := range venues {
		venue := venue
		g.Go(func() error {
			quotes, warn := f.fetchSpotOne(gctx, venue)
			mu.Lock()
			defer mu.Unlock()
			if quotes != nil {
				results[venue] = quotes
			}
			if warn != "" {
				warnings = append(warnings, warn)
			}
			return nil
		})
	}
	_ = g.Wait() // per-venue errors are already captured as warnings, never propagated
	return results, warnings
}

func (f *Fetcher) fetchSpotOne(ctx context.Context, venue string) ([]domain.NormalizedQuote, string) {
	if err := f.wait(ctx, venue); err != nil {
		return nil, fmt.Sprintf("venue=%s rate limit wait failed: %v", venue, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, f.opts.PerCallTimeout)
	defer cancel()

	breaker := f.breakerFor(venue)
	start := time.Now()
	result, err := breaker.Execute(func() (any, error) {
		return f.source.FetchSpotBook(callCtx, venue)
	})
	f.recordAdapterCall(venue, "fetch_spot_book", start, err)
	if err != nil {
		log.Warn().Str("venue", venue).Err(err).Msg("spot book fetch failed")
		return nil, fmt.Sprintf("venue=%s spot fetch failed: %v", venue, err)
	}
	quotes, _ := result.([]domain.NormalizedQuote)
	return quotes, ""
}

// FetchPerpVenues fans out FetchPerp the same way FetchSpotVenues does.
func (f *Fetcher) FetchPerpVenues(ctx context.Context, venues []string) (map[string][]domain.FundingSnapshot, []string) {
	results := make(map[string][]domain.FundingSnapshot)
	var mu sync.Mutex
	var warnings []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.MaxConcurrency)

	for _, venue := range venues {
		venue := venue
		g.Go(func() error {
			if err := f.wait(gctx, venue); err != nil {
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("venue=%s rate limit wait failed: %v", venue, err))
				mu.Unlock()
				return nil
			}

			callCtx, cancel := context.WithTimeout(gctx, f.opts.PerCallTimeout)
			defer cancel()

			breaker := f.breakerFor(venue)
			start := time.Now()
			result, err := breaker.Execute(func() (any, error) {
				return f.source.FetchPerp(callCtx, venue)
			})
			f.recordAdapterCall(venue, "fetch_perp", start, err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("venue", venue).Err(err).Msg("perp fetch failed")
				warnings = append(warnings, fmt.Sprintf("venue=%s perp fetch failed: %v", venue, err))
				return nil
			}
			snaps, _ := result.([]domain.FundingSnapshot)
			results[venue] = snaps
			return nil
		})
	}
	_ = g.Wait()
	return results, warnings
}

// Build assembles a Bundle from the configured venues, isolating failures
// per venue.
func (f *Fetcher) Build(ctx context.Context, spotVenues, perpVenues []string) (*Bundle, []string) {
	spot, spotWarnings := f.FetchSpotVenues(ctx, spotVenues)
	perp, perpWarnings := f.FetchPerpVenues(ctx, perpVenues)
	depthByVenue, depthWarnings := f.fetchDepthForQuotes(ctx, spot)

	bundle := &Bundle{
		GeneratedAt: time.Now().UTC(),
		SpotQuotes:  spot,
		PerpQuotes:  perp,
		Depth:       depthByVenue,
	}

	warnings := append(append([]string{}, spotWarnings...), perpWarnings...)
	warnings = append(warnings, depthWarnings...)
	bundle.Warnings = warnings
	return bundle, warnings
}

// fetchDepthForQuotes fetches a depth ladder for every (venue, symbol) pair
// present in the fetched spot quotes, bounded the same way as the quote
// fan-out. A missing ladder just means the cex_cex builder falls back to
// the no-depth slippage model; it never aborts the run.
func (f *Fetcher) fetchDepthForQuotes(ctx context.Context, spot map[string][]domain.NormalizedQuote) (map[string]map[string]domain.DepthLadder, []string) {
	type key struct{ venue, symbol string }
	var keys []key
	for venue, quotes := range spot {
		for _, q := range quotes {
			keys = append(keys, key{venue, q.Symbol})
		}
	}

	results := make(map[string]map[string]domain.DepthLadder)
	var mu sync.Mutex
	var warnings []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.MaxConcurrency)

	for _, k := range keys {
		k := k
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, f.opts.PerCallTimeout)
			defer cancel()

			breaker := f.breakerFor(k.venue)
			start := time.Now()
			result, err := breaker.Execute(func() (any, error) {
				return f.source.FetchDepth(callCtx, k.venue, k.symbol)
			})
			f.recordAdapterCall(k.venue, "fetch_depth", start, err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("venue=%s symbol=%s depth fetch failed: %v", k.venue, k.symbol, err))
				return nil
			}
			ladder, _ := result.(domain.DepthLadder)
			if results[k.venue] == nil {
				results[k.venue] = make(map[string]domain.DepthLadder)
			}
			results[k.venue][k.symbol] = ladder
			return nil
		})
	}
	_ = g.Wait()
	return results, warnings
}
