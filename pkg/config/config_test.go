package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_INT", "42")
	t.Setenv("X_BAD_INT", "nope")
	t.Setenv("X_DUR", "250ms")
	t.Setenv("X_LIST", " 1301, 1305 ,,9432 ")

	assert.Equal(t, "value", GetEnv("X_STR", "def"))
	assert.Equal(t, "def", GetEnv("X_MISSING", "def"))
	assert.Equal(t, 42, GetEnvInt("X_INT", 7))
	assert.Equal(t, 7, GetEnvInt("X_BAD_INT", 7))
	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("X_DUR", time.Second))
	assert.Equal(t, []string{"1301", "1305", "9432"}, GetEnvList("X_LIST"))
	assert.Nil(t, GetEnvList("X_MISSING"))
}

func TestGetEnvTime(t *testing.T) {
	t.Setenv("X_CUTOFF", "11:30")
	got := GetEnvTime("X_CUTOFF", "15:00")
	assert.Equal(t, 11, got.Hour())
	assert.Equal(t, 30, got.Minute())

	def := GetEnvTime("X_CUTOFF_MISSING", "15:00")
	assert.Equal(t, 15, def.Hour())
	assert.Equal(t, 0, def.Minute())

	t.Setenv("X_CUTOFF_BAD", "25 o'clock")
	bad := GetEnvTime("X_CUTOFF_BAD", "15:00")
	assert.Equal(t, 15, bad.Hour())
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "tachibana-adapter", cfg.ServiceName)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10, cfg.MaxWorkers)
	assert.Equal(t, 15, cfg.SessionCutoff.Hour())
	assert.Equal(t, "Asia/Tokyo", cfg.MarketTZ)
	assert.Contains(t, cfg.BrokerBaseURL, "e-shiten.jp")
}

func TestLoadAPIIDFallsBackToUserID(t *testing.T) {
	t.Setenv("TACHIBANA_USERID", "acct1")
	cfg := Load()
	assert.Equal(t, "acct1", cfg.APIID)

	t.Setenv("API_ID", "other")
	cfg = Load()
	assert.Equal(t, "other", cfg.APIID)
}

func TestMarketLocation(t *testing.T) {
	cfg := &Config{MarketTZ: "Asia/Tokyo"}
	loc := cfg.MarketLocation()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	cfg.MarketTZ = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.MarketLocation())
}
