package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoedge/edgescan/internal/builders"
	"github.com/cryptoedge/edgescan/internal/constraints"
	"github.com/cryptoedge/edgescan/internal/feetable"
	applog "github.com/cryptoedge/edgescan/internal/log"
	"github.com/cryptoedge/edgescan/internal/profile"
	"github.com/cryptoedge/edgescan/internal/snapshot"
)

const (
	fixturePath     = "../../testdata/snapshot.json"
	feeTablePath    = "../../testdata/feetable.yaml"
	constraintsPath = "../../testdata/constraints.yaml"
)

func newTestRunner(t *testing.T) (*Runner, snapshot.Source) {
	t.Helper()
	src, err := snapshot.LoadFileSource(fixturePath)
	require.NoError(t, err)

	fetcher := snapshot.NewFetcher(src, snapshot.DefaultFetchOptions())
	return NewRunner(fetcher, src, nil), src
}

func TestRunnerShortlistCountMatchesSummary(t *testing.T) {
	runner, _ := newTestRunner(t)

	req := Request{
		SpotVenues:     []string{"binance", "coinbase", "kraken", "okx"},
		PerpVenues:     []string{"binance", "bybit", "okx"},
		SizeUSD:        10_000,
		Profile:        profile.Get("taker_default"),
		BuildersConfig: builders.DefaultConfig(),
		InputPath:      fixturePath,
	}

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Shortlist)
	assert.Equal(t, len(result.Shortlist), result.Summary.Counts.Candidates)
}

func TestRunnerShortlistIsSortedQualifiedFirst(t *testing.T) {
	runner, _ := newTestRunner(t)

	req := Request{
		SpotVenues:     []string{"binance", "coinbase", "kraken", "okx"},
		PerpVenues:     []string{"binance", "bybit", "okx"},
		SizeUSD:        10_000,
		Profile:        profile.Get("taker_default"),
		BuildersConfig: builders.DefaultConfig(),
	}

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	sawRejectedAfterQualified := false
	seenRejected := false
	for _, o := range result.Shortlist {
		if !o.IsQualified {
			seenRejected = true
		}
		if seenRejected && o.IsQualified {
			sawRejectedAfterQualified = true
		}
	}
	assert.False(t, sawRejectedAfterQualified)
}

func TestRunnerAppliesFeeTableAndConstraintsWhenSupplied(t *testing.T) {
	runner, _ := newTestRunner(t)

	feeTable, err := feetable.Load(feeTablePath)
	require.NoError(t, err)
	book, err := constraints.Load(constraintsPath)
	require.NoError(t, err)

	req := Request{
		SpotVenues:     []string{"binance", "coinbase", "kraken", "okx"},
		PerpVenues:     []string{"binance", "bybit", "okx"},
		SizeUSD:        10_000,
		Profile:        profile.Get("taker_default"),
		FeeTable:       feeTable,
		Constraints:    book,
		BuildersConfig: builders.DefaultConfig(),
	}

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Shortlist)

	for _, o := range result.Shortlist {
		assert.True(t, o.FeeModelApplied)
	}
}

func TestRunnerDegradesUnknownVenueToWarningNotError(t *testing.T) {
	runner, _ := newTestRunner(t)

	req := Request{
		SpotVenues:     []string{"binance", "nonexistent-venue"},
		Profile:        profile.Get("taker_default"),
		BuildersConfig: builders.DefaultConfig(),
	}

	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)
}

func TestRunnerRunsWithAttachedProgress(t *testing.T) {
	runner, _ := newTestRunner(t)
	progress := applog.NewScanProgress("test", applog.StageNames)
	runner = runner.WithProgress(progress)

	req := Request{
		SpotVenues:     []string{"binance", "coinbase"},
		PerpVenues:     []string{"binance"},
		SizeUSD:        10_000,
		Profile:        profile.Get("taker_default"),
		BuildersConfig: builders.DefaultConfig(),
	}

	_, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	progress.Finish()
}
