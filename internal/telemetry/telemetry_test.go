package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/cryptoedge/edgescan/internal/domain"
)

// NewRegistry registers against the global Prometheus default registry, so
// every sub-test below shares a single Registry instance to avoid duplicate
// registration panics.
func TestRegistryRecording(t *testing.T) {
	reg := NewRegistry()

	t.Run("StageTimer observes duration", func(t *testing.T) {
		before := testutil.CollectAndCount(reg.ScanDuration)
		timer := reg.StartStage("fetch")
		time.Sleep(time.Millisecond)
		timer.Stop()
		assert.Equal(t, before+1, testutil.CollectAndCount(reg.ScanDuration))
	})

	t.Run("RecordAdapterCall increments failures on error", func(t *testing.T) {
		reg.RecordAdapterCall("binance", "fetch_spot_book", 10*time.Millisecond, errors.New("timeout"))
		assert.Equal(t, float64(1), testutil.ToFloat64(reg.AdapterFailures.WithLabelValues("binance", "fetch_spot_book")))
	})

	t.Run("RecordAdapterCall does not increment failures on success", func(t *testing.T) {
		reg.RecordAdapterCall("coinbase", "fetch_spot_book", 5*time.Millisecond, nil)
		assert.Equal(t, float64(0), testutil.ToFloat64(reg.AdapterFailures.WithLabelValues("coinbase", "fetch_spot_book")))
	})

	t.Run("RecordCandidate increments per-strategy counter", func(t *testing.T) {
		reg.RecordCandidate(domain.StrategyCexCex)
		reg.RecordCandidate(domain.StrategyCexCex)
		assert.Equal(t, float64(2), testutil.ToFloat64(reg.CandidatesBuilt.WithLabelValues(string(domain.StrategyCexCex))))
	})

	t.Run("RecordScored tallies qualified and rejected", func(t *testing.T) {
		scored := []domain.ScoredOpportunity{
			{IsQualified: true},
			{IsQualified: false, RejectionReasons: []domain.RejectionReason{domain.ReasonFeeDominated}, DominantDrag: domain.DragFees},
		}
		reg.RecordScored(scored)
		assert.Equal(t, float64(1), testutil.ToFloat64(reg.Qualified))
		assert.Equal(t, float64(1), testutil.ToFloat64(reg.Rejected.WithLabelValues(string(domain.ReasonFeeDominated))))
		assert.Equal(t, float64(1), testutil.ToFloat64(reg.DominantDrag.WithLabelValues(string(domain.DragFees))))
	})

	t.Run("Handler is non-nil", func(t *testing.T) {
		assert.NotNil(t, reg.Handler())
	})
}
