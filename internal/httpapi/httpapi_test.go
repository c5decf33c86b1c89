package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedge/edgescan/internal/domain"
	"github.com/cryptoedge/edgescan/internal/summary"
)

func TestHandleHealthUnknownBeforeFirstRun(t *testing.T) {
	state := &RunState{}
	srv := NewServer(state, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unknown", resp.Status)
}

func TestHandleHealthDegradedWhenWarningsPresent(t *testing.T) {
	state := &RunState{}
	state.Update(nil, summary.Report{}, []string{"binance unavailable"})
	srv := NewServer(state, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, 1, resp.WarningCount)
}

func TestHandleHealthHealthyWithNoWarnings(t *testing.T) {
	state := &RunState{}
	state.Update(nil, summary.Report{}, nil)
	srv := NewServer(state, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func TestHandleShortlistReturnsLastUpdatedList(t *testing.T) {
	state := &RunState{}
	shortlist := []domain.ScoredOpportunity{{NetEdgeBps: 12}}
	state.Update(shortlist, summary.Report{}, nil)
	srv := NewServer(state, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/shortlist", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out []domain.ScoredOpportunity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.InDelta(t, 12.0, out[0].NetEdgeBps, 1e-9)
}

func TestHandleSummaryReturnsLastReport(t *testing.T) {
	state := &RunState{}
	state.Update(nil, summary.Report{Profile: "taker_default"}, nil)
	srv := NewServer(state, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var rep summary.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, "taker_default", rep.Profile)
}

func TestRouterOmitsMetricsRouteWhenNoRegistrySupplied(t *testing.T) {
	state := &RunState{}
	srv := NewServer(state, nil, "test")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
