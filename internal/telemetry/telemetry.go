// Package telemetry exposes Prometheus metrics for a scoring run: candidates
// built per strategy, rejection counts per reason, venue-adapter fetch
// latency/failures, and scan wall-clock duration.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// Registry holds every metric a scoring run reports.
type Registry struct {
	ScanDuration      *prometheus.HistogramVec
	CandidatesBuilt   *prometheus.CounterVec
	Qualified         prometheus.Counter
	Rejected          *prometheus.CounterVec
	DominantDrag      *prometheus.CounterVec
	AdapterLatency    *prometheus.HistogramVec
	AdapterFailures   *prometheus.CounterVec
	ActiveScans       prometheus.Gauge
	ScansTotal        prometheus.Counter
}

// NewRegistry builds and registers every metric with the default
// Prometheus registry. Call once per process.
func NewRegistry() *Registry {
	r := &Registry{
		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgescan_scan_duration_seconds",
				Help:    "Wall-clock duration of a full scoring run, by stage",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		CandidatesBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgescan_candidates_built_total",
				Help: "Candidates emitted by a builder, by strategy_type",
			},
			[]string{"strategy_type"},
		),
		Qualified: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "edgescan_qualified_total",
				Help: "Scored opportunities that passed qualification",
			},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgescan_rejected_total",
				Help: "Rejected scored opportunities, by rejection_reason",
			},
			[]string{"rejection_reason"},
		),
		DominantDrag: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgescan_dominant_drag_total",
				Help: "Scored opportunities by their dominant drag component",
			},
			[]string{"drag"},
		),
		AdapterLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgescan_adapter_latency_seconds",
				Help:    "Per-venue adapter call latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"venue", "call"},
		),
		AdapterFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgescan_adapter_failures_total",
				Help: "Per-venue adapter failures (timeout, error, breaker-open)",
			},
			[]string{"venue", "call"},
		),
		ActiveScans: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "edgescan_active_scans",
				Help: "Number of scoring runs currently in flight",
			},
		),
		ScansTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "edgescan_scans_total",
				Help: "Total number of scoring runs started",
			},
		),
	}

	prometheus.MustRegister(
		r.ScanDuration,
		r.CandidatesBuilt,
		r.Qualified,
		r.Rejected,
		r.DominantDrag,
		r.AdapterLatency,
		r.AdapterFailures,
		r.ActiveScans,
		r.ScansTotal,
	)

	return r
}

// StageTimer times one stage of the pipeline (fetch, build, score, summarise).
type StageTimer struct {
	reg   *Registry
	stage string
	start time.Time
}

func (r *Registry) StartStage(stage string) *StageTimer {
	return &StageTimer{reg: r, stage: stage, start: time.Now()}
}

func (t *StageTimer) Stop() {
	d := time.Since(t.start)
	t.reg.ScanDuration.WithLabelValues(t.stage).Observe(d.Seconds())
	log.Debug().Str("stage", t.stage).Dur("duration", d).Msg("stage completed")
}

// RecordAdapterCall observes an adapter call's latency and, on failure,
// increments the failure counter for that venue/call pair.
func (r *Registry) RecordAdapterCall(venue, call string, d time.Duration, err error) {
	r.AdapterLatency.WithLabelValues(venue, call).Observe(d.Seconds())
	if err != nil {
		r.AdapterFailures.WithLabelValues(venue, call).Inc()
	}
}

// RecordCandidate increments the per-strategy candidate counter.
func (r *Registry) RecordCandidate(strategyType domain.StrategyType) {
	r.CandidatesBuilt.WithLabelValues(string(strategyType)).Inc()
}

// RecordScored tallies a full scored batch: qualified count, rejection
// reasons, and dominant drag, for the scan's observability surface.
func (r *Registry) RecordScored(scored []domain.ScoredOpportunity) {
	for _, s := range scored {
		if s.IsQualified {
			r.Qualified.Inc()
			continue
		}
		for _, reason := range s.RejectionReasons {
			r.Rejected.WithLabelValues(string(reason)).Inc()
		}
		r.DominantDrag.WithLabelValues(string(s.DominantDrag)).Inc()
	}
}

// Handler returns the HTTP handler serving metrics in Prometheus exposition
// format.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultRegistry is the process-wide registry, initialized by Init.
var DefaultRegistry *Registry

// Init sets up the package-level default registry. Safe to call once.
func Init() *Registry {
	DefaultRegistry = NewRegistry()
	log.Info().Msg("prometheus metrics registry initialized")
	return DefaultRegistry
}
