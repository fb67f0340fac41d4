package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskDial/internal/band"
	"RiskDial/internal/model"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, band.Default, cfg.Bands)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "BTC-USD", cfg.Symbol)
	assert.Len(t, cfg.Factors, 6)
}

func TestLoad_ShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	def := Default()
	assert.Equal(t, def.Pillars, cfg.Pillars)
	assert.Equal(t, def.Bands, cfg.Bands)
	assert.Equal(t, def.Adjustments, cfg.Adjustments)
	assert.Equal(t, def.Alerts, cfg.Alerts)
	assert.Equal(t, len(def.Factors), len(cfg.Factors))
}

func TestLoad_YAMLOverridesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
adjustments:
  spike:
    policy: symmetric
alerts:
  deadband_floor: 2500
collector:
  timeout_seconds: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("RISKDIAL_SYMBOL", "ETH-USD")
	t.Setenv("STATE_FILE", "/tmp/rd.json")
	t.Setenv("CRON_DAILY", "0 0 1 * * *")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "symmetric", string(cfg.Adjustments.Spike.Policy))
	assert.Equal(t, 0.94, cfg.Adjustments.Spike.Lambda, "unset keys keep defaults")
	assert.True(t, cfg.Adjustments.Cycle.Enabled)
	assert.Equal(t, 2500.0, cfg.Alerts.DeadbandFloor)
	assert.Equal(t, 21, cfg.Alerts.Window)
	assert.Equal(t, "ETH-USD", cfg.Symbol)
	assert.Equal(t, "/tmp/rd.json", cfg.State.File)
	assert.Equal(t, "0 0 1 * * *", cfg.Schedule.DailyCron)
	assert.Equal(t, 7*time.Second, cfg.GuardSettings().Timeout)

	for _, s := range cfg.ResolvedSources() {
		if s.Name == "price" {
			assert.Equal(t, "ETH-USD", s.Symbol)
		}
		if s.Name == "dxy" {
			assert.Equal(t, "DX-Y.NYB", s.Symbol)
		}
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pillars: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_CollectsViolations(t *testing.T) {
	cfg := Default()
	cfg.Pillars[0].WeightPct = 30
	cfg.Factors[0].Signals[0].Weight = 0.5
	cfg.Bands[2].Lo = 41
	cfg.Schedule.DailyCron = "every day"
	cfg.Telegram.BotToken = "token-only"
	cfg.Sources = cfg.Sources[1:]
	cfg.Sources = append(cfg.Sources, cfg.Sources[0])

	err := cfg.Validate()
	var cerr *model.ConfigError
	require.True(t, errors.As(err, &cerr))
	msg := err.Error()
	for _, want := range []string{
		"pillar weight_pct",
		`factor "etf_flows" sub-weights`,
		`band "neutral" starts at 41`,
		"schedule.daily_cron",
		"telegram.bot_token",
		`input "price" has no source`,
		`source "spot" defined twice`,
	} {
		assert.Contains(t, msg, want)
	}
}
