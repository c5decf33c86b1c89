package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		raw       string
		wantBase  string
		wantQuote string
		wantOK    bool
	}{
		{"BTCUSDT", "BTC", "USDT", true},
		{"ethusdc", "ETH", "USDC", true},
		{" SOLUSDT ", "SOL", "USDT", true},
		{"USDT", "", "", false}, // empty base after stripping the suffix
		{"BTCEUR", "", "", false},
	}
	for _, c := range cases {
		base, quote, ok := Split(c.raw)
		assert.Equal(t, c.wantOK, ok, c.raw)
		if c.wantOK {
			assert.Equal(t, c.wantBase, base, c.raw)
			assert.Equal(t, c.wantQuote, quote, c.raw)
		}
	}
}

func TestCanonicalRoundTripsWithParse(t *testing.T) {
	canon, ok := Canonical("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, "BTC/USDT", canon)

	base, quote, ok := Parse(canon)
	require.True(t, ok)
	assert.Equal(t, "BTC", base)
	assert.Equal(t, "USDT", quote)
}

func TestCanonicalUnrecognisedSuffix(t *testing.T) {
	_, ok := Canonical("BTCEUR")
	assert.False(t, ok)
}

func TestBaseExtractsFromCanonicalSymbol(t *testing.T) {
	assert.Equal(t, "BTC", Base("BTC/USDT"))
	// a non-canonical string passes through unchanged
	assert.Equal(t, "BTCUSDT", Base("BTCUSDT"))
}
