// Package log provides terminal progress feedback for a scan's four fixed
// stages (fetch, build, score, summarise), shown on stderr while a scan
// runs interactively. It is a pipeline progress tracker, not a general
// purpose progress-bar library: the stage set is whatever the caller
// passes to NewScanProgress, normally StageNames.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// StageNames is the fixed stage order cmd/edgescan reports against: fetch
// venue snapshots, build candidates, score them, summarise the run.
var StageNames = []string{"fetch", "build", "score", "summarise"}

// spinner renders a rotating glyph, advanced on a fixed tick by its own
// goroutine so the running stage name stays visibly alive between log
// lines.
type spinner struct {
	chars    []string
	current  int
	interval time.Duration
	stop     chan bool
	running  bool
	mu       sync.Mutex
}

func newSpinner() *spinner {
	return &spinner{
		chars:    []string{"|", "/", "-", "\\"},
		interval: 200 * time.Millisecond,
		stop:     make(chan bool, 1),
	}
}

func (s *spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.spin()
}

func (s *spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.stop <- true
}

func (s *spinner) spin() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.current = (s.current + 1) % len(s.chars)
			s.mu.Unlock()
		}
	}
}

func (s *spinner) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chars[s.current]
}

// ScanProgress tracks one scan's fetch/build/score/summarise stages and
// prints a one-line spinner to stderr as each stage runs, in addition to
// the structured zerolog lines the stage itself emits.
type ScanProgress struct {
	mu          sync.Mutex
	name        string
	stages      []string
	currentStage int
	startTime   time.Time
	stageTimes  []time.Duration
	spinner     *spinner
}

// NewScanProgress starts a progress tracker for a named run over the given
// stage order (normally StageNames).
func NewScanProgress(name string, stages []string) *ScanProgress {
	sp := newSpinner()
	sp.Start()
	return &ScanProgress{
		name:         name,
		stages:       stages,
		currentStage: -1,
		startTime:    time.Now(),
		stageTimes:   make([]time.Duration, len(stages)),
		spinner:      sp,
	}
}

// StartStage records that a stage has begun and redraws the status line.
// An unrecognized stage name is logged and otherwise ignored.
func (p *ScanProgress) StartStage(stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := -1
	for i, s := range p.stages {
		if s == stage {
			idx = i
			break
		}
	}
	if idx == -1 {
		log.Warn().Str("stage", stage).Msg("unknown scan stage")
		return
	}

	p.completeCurrentLocked()
	p.currentStage = idx
	p.print(stage)
}

// CompleteStage records the duration of the currently running stage.
func (p *ScanProgress) CompleteStage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completeCurrentLocked()
}

func (p *ScanProgress) completeCurrentLocked() {
	if p.currentStage < 0 {
		return
	}
	d := time.Since(p.startTime) - p.elapsedBeforeCurrent()
	p.stageTimes[p.currentStage] = d
	log.Info().
		Str("stage", p.stages[p.currentStage]).
		Dur("duration", d).
		Msg("scan stage complete")
}

// Finish stops the spinner, completes whatever stage is still open, and
// prints the per-stage timing breakdown.
func (p *ScanProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completeCurrentLocked()
	p.spinner.Stop()

	total := time.Since(p.startTime)
	fmt.Fprintf(os.Stderr, "\r\033[K%s: all %d stages complete (%v)\n", p.name, len(p.stages), total.Round(time.Millisecond))

	for i, stage := range p.stages {
		log.Info().
			Str("stage", stage).
			Dur("duration", p.stageTimes[i]).
			Msgf("  %d. %s", i+1, stage)
	}
}

// Fail stops the spinner and reports which stage the run failed on.
func (p *ScanProgress) Fail(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Stop()

	stageName := "unknown"
	if p.currentStage >= 0 && p.currentStage < len(p.stages) {
		stageName = p.stages[p.currentStage]
	}

	fmt.Fprintf(os.Stderr, "\r\033[K%s: failed at stage %s: %s\n", p.name, stageName, reason)
	log.Error().
		Str("failed_stage", stageName).
		Int("completed_stages", p.currentStage).
		Int("total_stages", len(p.stages)).
		Str("reason", reason).
		Msg("scan failed")
}

func (p *ScanProgress) elapsedBeforeCurrent() time.Duration {
	var total time.Duration
	for i := 0; i < p.currentStage; i++ {
		total += p.stageTimes[i]
	}
	return total
}

func (p *ScanProgress) print(stage string) {
	var out strings.Builder
	out.WriteString("\r\033[K")
	out.WriteString(p.spinner.Current())
	out.WriteString(" ")
	out.WriteString(p.name)
	out.WriteString(fmt.Sprintf(" [%d/%d] %s", p.currentStage+1, len(p.stages), stage))
	fmt.Fprint(os.Stderr, out.String())
}
