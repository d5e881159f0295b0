package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namancryu/TravelPMS/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 25*time.Second, cfg.Engine.TurnTimeout)
	assert.Equal(t, int64(10000), cfg.Budget.Unit)
	assert.InDelta(t, 0.9, cfg.Budget.SafetyRatio, 1e-9)
	assert.Equal(t, "KRW", cfg.Currency.Home)
	assert.Equal(t, 1350.0, cfg.Currency.Rates["USD"])
	assert.NotEmpty(t, cfg.Providers)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadHeaderTimeout, "unset keys keep defaults")
	assert.Equal(t, 40*time.Second, cfg.Engine.TurnTimeout)
	assert.Equal(t, 6, cfg.Engine.HistoryLimit)
	assert.InDelta(t, 0.85, cfg.Budget.SafetyRatio, 1e-9)
	assert.Equal(t, int64(50000), cfg.Currency.Threshold)
	assert.Equal(t, 1400.0, cfg.Currency.Rates["USD"])
	assert.Equal(t, 9.0, cfg.Currency.Rates["JPY"])
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "groq", cfg.Providers[0].Name)
	assert.Equal(t, "claude", cfg.Providers[1].Name)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvHTTPAddr, "127.0.0.1:7000")
	t.Setenv(EnvTurnTimeout, "30")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvOTLPEndpoint, "localhost:4318")
	t.Setenv(EnvCredentialsFile, "/etc/travel/keys.yaml")

	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Engine.TurnTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "localhost:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, "/etc/travel/keys.yaml", cfg.CredentialsFile)

	lc := cfg.LoggerConfig("server")
	assert.Equal(t, logging.LogLevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "server", lc.Component)
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TRAVEL_TEST_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, getDuration("TRAVEL_TEST_DURATION", time.Second))

	t.Setenv("TRAVEL_TEST_DURATION", "nonsense")
	assert.Equal(t, time.Second, getDuration("TRAVEL_TEST_DURATION", time.Second))

	t.Setenv("TRAVEL_TEST_DURATION", "")
	assert.Equal(t, time.Second, getDuration("TRAVEL_TEST_DURATION", time.Second))
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvConfigFile, "testdata/config.yaml")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	require.Error(t, err)

	_, err = Load("testdata/invalid.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget.unit")
	assert.Contains(t, err.Error(), "budget.safety_ratio")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidateProviders(t *testing.T) {
	cfg := Default()
	cfg.Providers = append(cfg.Providers, cfg.Providers[0])
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
