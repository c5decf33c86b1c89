package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../testdata/snapshot.json"

func TestLoadFileSourceRejectsMissingFile(t *testing.T) {
	_, err := LoadFileSource("does-not-exist.json")
	assert.Error(t, err)
}

func TestFileSourceFetchSpotBookNormalizesAndValidates(t *testing.T) {
	src, err := LoadFileSource(fixturePath)
	require.NoError(t, err)

	quotes, err := src.FetchSpotBook(context.Background(), "binance")
	require.NoError(t, err)
	require.NotEmpty(t, quotes)

	for _, q := range quotes {
		assert.True(t, q.Valid())
		assert.Contains(t, q.Symbol, "/")
	}
}

func TestFileSourceFetchSpotBookUnknownVenue(t *testing.T) {
	src, err := LoadFileSource(fixturePath)
	require.NoError(t, err)

	_, err = src.FetchSpotBook(context.Background(), "nonexistent-venue")
	assert.Error(t, err)
}

func TestFileSourceFetchDepthUsesCanonicalSymbol(t *testing.T) {
	src, err := LoadFileSource(fixturePath)
	require.NoError(t, err)

	ladder, err := src.FetchDepth(context.Background(), "binance", "BTC/USDT")
	require.NoError(t, err)
	assert.NotEmpty(t, ladder.Bids)
	assert.NotEmpty(t, ladder.Asks)
}

func TestFileSourceFetchPerp(t *testing.T) {
	src, err := LoadFileSource(fixturePath)
	require.NoError(t, err)

	snaps, err := src.FetchPerp(context.Background(), "binance")
	require.NoError(t, err)
	require.NotEmpty(t, snaps)
	for _, s := range snaps {
		assert.GreaterOrEqual(t, s.MinutesToFunding, 0.0)
	}
}

func TestFileSourceFetchDexQuote(t *testing.T) {
	src, err := LoadFileSource(fixturePath)
	require.NoError(t, err)

	q, err := src.FetchDexQuote(context.Background(), "SOL", 5_000, 50)
	require.NoError(t, err)
	assert.Equal(t, "SOL", q.Token)
	assert.Equal(t, 5_000.0, q.InUSD)
}

func TestParseVenueList(t *testing.T) {
	assert.Equal(t, []string{"binance", "coinbase"}, ParseVenueList(" binance, coinbase "))
	assert.Nil(t, ParseVenueList(""))
	assert.Nil(t, ParseVenueList("   "))
}
