package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProvider() ProviderConfig {
	return ProviderConfig{
		Host:        "api.binance.com",
		RPS:         10,
		Burst:       20,
		DailyBudget: 100_000,
		TTLSecs:     5,
		BaseURL:     "https://api.binance.com",
		BackoffMS:   BackoffConfig{Base: 100, Max: 5_000},
		Circuit:     CircuitConfig{FailureThreshold: 5, SuccessThreshold: 2, TimeoutMS: 3_000},
	}
}

func validProvidersConfig() ProvidersConfig {
	return ProvidersConfig{
		Providers: map[string]ProviderConfig{"binance": validProvider()},
		Budget:    BudgetConfig{WarnThreshold: 0.8, ResetHour: 0},
		Global:    GlobalConfig{MaxConcurrentPerHost: 4, UserAgent: "edgescan/1.0"},
	}
}

func TestProvidersConfigValidateAccepts(t *testing.T) {
	c := validProvidersConfig()
	assert.NoError(t, c.Validate())
}

func TestProvidersConfigValidateRejectsBadBudgetThreshold(t *testing.T) {
	c := validProvidersConfig()
	c.Budget.WarnThreshold = 1.5
	assert.Error(t, c.Validate())
}

func TestProvidersConfigValidateRejectsMissingUserAgent(t *testing.T) {
	c := validProvidersConfig()
	c.Global.UserAgent = ""
	assert.Error(t, c.Validate())
}

func TestProviderConfigValidateRejectsBurstBelowRPS(t *testing.T) {
	p := validProvider()
	p.Burst = 1
	assert.Error(t, p.Validate("binance"))
}

func TestBackoffConfigValidateRejectsMaxNotGreaterThanBase(t *testing.T) {
	b := BackoffConfig{Base: 1000, Max: 500}
	assert.Error(t, b.Validate())
}

func TestCircuitConfigValidateRejectsNonPositiveTimeout(t *testing.T) {
	c := CircuitConfig{FailureThreshold: 1, SuccessThreshold: 1, TimeoutMS: 0}
	assert.Error(t, c.Validate())
}

func TestProviderConfigDurationHelpers(t *testing.T) {
	p := validProvider()
	assert.Equal(t, 5_000, int(p.GetCacheTTL().Milliseconds()))
	assert.Equal(t, 3_000, int(p.GetRequestTimeout().Milliseconds()))
	assert.Equal(t, 100, int(p.GetBaseBackoff().Milliseconds()))
	assert.Equal(t, 5_000, int(p.GetMaxBackoff().Milliseconds()))
}

func TestProviderConfigRateLimiterUsesConfiguredRPSAndBurst(t *testing.T) {
	p := validProvider()
	lim := p.RateLimiter()
	assert.InDelta(t, 10.0, float64(lim.Limit()), 1e-9)
	assert.Equal(t, 20, lim.Burst())
}

func TestProvidersConfigGetProviderAndEnabled(t *testing.T) {
	c := validProvidersConfig()
	p, ok := c.GetProvider("binance")
	require.True(t, ok)
	assert.Equal(t, "api.binance.com", p.Host)

	_, ok = c.GetProvider("nonexistent")
	assert.False(t, ok)

	assert.False(t, c.IsProviderEnabled("binance"))
	assert.False(t, c.IsProviderEnabled("nonexistent"))
}

func TestLoadProvidersConfigReadsAndValidatesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "providers.yaml")
	contents := `
providers:
  binance:
    host: api.binance.com
    rps: 10
    burst: 20
    daily_budget: 100000
    ttl_secs: 5
    base_url: https://api.binance.com
    enabled: true
    backoff_ms:
      base: 100
      max: 5000
    circuit:
      failure_threshold: 5
      success_threshold: 2
      timeout_ms: 3000
budget:
  warn_threshold: 0.8
  reset_hour: 0
global:
  max_concurrent_per_host: 4
  user_agent: edgescan/1.0
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := LoadProvidersConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsProviderEnabled("binance"))
}

func TestLoadProvidersConfigRejectsMissingFile(t *testing.T) {
	_, err := LoadProvidersConfig("does-not-exist.yaml")
	assert.Error(t, err)
}
