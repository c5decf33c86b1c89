// Package httpapi exposes a small read-only HTTP surface over a scoring
// run: liveness, the Prometheus metrics endpoint, and the last-computed
// shortlist as JSON.
package httpapi

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/summary"
	"github.com/cryptoedge/edgescan/internal/telemetry"
)

// RunState holds the most recent scoring run's outputs, set by the caller
// through Update once a scan has finished. Reads/writes are synchronized so the HTTP
// surface can be served concurrently with the next run.
type RunState struct {
	mu         sync.RWMutex
	shortlist  []domain.ScoredOpportunity
	report     summary.Report
	generated  time.Time
	warnings   []string
}

func (s *RunState) Update(shortlist []domain.ScoredOpportunity, report summary.Report, warnings []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortlist = shortlist
	s.report = report
	s.warnings = warnings
	s.generated = time.Now().UTC()
}

func (s *RunState) snapshot() ([]domain.ScoredOpportunity, summary.Report, []string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shortlist, s.report, s.warnings, s.generated
}

// Server wires RunState and a telemetry registry onto a gorilla/mux router.
type Server struct {
	state   *RunState
	metrics *telemetry.Registry
	version string
}

func NewServer(state *RunState, metrics *telemetry.Registry, version string) *Server {
	return &Server{state: state, metrics: metrics, version: version}
}

// Router builds the mux router: /healthz, /metrics, /shortlist, /summary.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/shortlist", s.handleShortlist).Methods(http.MethodGet)
	r.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}

// healthResponse is the liveness payload; status degrades to "degraded"
// when the last run carried fetch warnings fail-soft policy.
type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	GoVersion   string    `json:"go_version"`
	Goroutines  int       `json:"num_goroutines"`
	LastRun     time.Time `json:"last_run,omitempty"`
	WarningCount int      `json:"last_run_warning_count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _, warnings, generated := s.state.snapshot()

	status := "healthy"
	if len(warnings) > 0 {
		status = "degraded"
	}
	if generated.IsZero() {
		status = "unknown"
	}

	resp := healthResponse{
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Version:      s.version,
		GoVersion:    runtime.Version(),
		Goroutines:   runtime.NumGoroutine(),
		LastRun:      generated,
		WarningCount: len(warnings),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	shortlist, _, _, _ := s.state.snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shortlist)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, report, _, _ := s.state.snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
