package config

import (
	"RiskDial/internal/adjust"
	"RiskDial/internal/aggregate"
	"RiskDial/internal/alert"
	"RiskDial/internal/band"
	"RiskDial/internal/collector"
	"RiskDial/internal/factor"
)

// Default returns the shipped model: six factors over five pillars, the
// default band table and the tuned adjustment and alert constants.
func Default() *Config {
	cfg := &Config{Symbol: "BTC-USD"}
	cfg.Telegram.Retries = 3
	cfg.Schedule.DailyCron = "0 5 0 * * *"
	cfg.Database.SQLitePath = "data/riskdial.db"
	cfg.State.File = "data/state.json"
	cfg.Metrics.Listen = ":9108"
	cfg.Logging.Level = "info"

	cfg.Sources = []collector.SourceSpec{
		{Name: "price", Provider: "yahoo", Days: 3000},
		{Name: "spot", Provider: "yahoo", Field: collector.FieldSpot},
		{Name: "dxy", Provider: "yahoo", Symbol: "DX-Y.NYB", Days: 1100},
		{Name: "us10y", Provider: "yahoo", Symbol: "^TNX", Days: 1100},
		{Name: "etf_flows", Provider: "file", Path: "data/inputs/etf_flows.json"},
		{Name: "stablecoin_supply", Provider: "file", Path: "data/inputs/stablecoin_supply.json"},
		{Name: "funding", Provider: "file", Path: "data/inputs/funding.json"},
		{Name: "open_interest", Provider: "file", Path: "data/inputs/open_interest.json"},
		{Name: "fear_greed", Provider: "file", Path: "data/inputs/fear_greed.json"},
		{Name: "social", Provider: "file", Path: "data/inputs/social.json"},
	}

	cfg.Pillars = []aggregate.PillarSpec{
		{Key: "liquidity", WeightPct: 35},
		{Key: "momentum", WeightPct: 25},
		{Key: "leverage", WeightPct: 20},
		{Key: "macro", WeightPct: 10},
		{Key: "social", WeightPct: 10},
	}

	cfg.Factors = []factor.Spec{
		{
			Key: "etf_flows", Pillar: "liquidity", Weight: 0.6, TTLHours: 72,
			Signals: []factor.SignalSpec{
				{Key: "etf_flows", Weight: 1, Transform: factor.TransformRollingSum, Period: 21, Invert: true},
			},
		},
		{
			Key: "stablecoin_supply", Pillar: "liquidity", Weight: 0.4, TTLHours: 48,
			Signals: []factor.SignalSpec{
				{Key: "stablecoin_supply", Weight: 1, Transform: factor.TransformChange, Period: 30, Invert: true},
			},
		},
		{
			Key: "trend", Pillar: "momentum", Weight: 1, TTLHours: 36,
			Signals: []factor.SignalSpec{
				{Key: "ma200_deviation", Input: "price", Weight: 0.4, Transform: factor.TransformMADeviation, Period: 200},
				{Key: "rsi14", Input: "price", Weight: 0.3, Transform: factor.TransformRSI, Period: 14},
				{Key: "range_position", Input: "price", Weight: 0.3, Transform: factor.TransformRangePosition, Period: 365},
			},
		},
		{
			Key: "derivatives", Pillar: "leverage", Weight: 1, TTLHours: 36,
			Signals: []factor.SignalSpec{
				{Key: "funding", Weight: 0.5, Transform: factor.TransformLevel},
				{Key: "open_interest", Weight: 0.5, Transform: factor.TransformChange, Period: 30},
			},
		},
		{
			Key: "macro", Pillar: "macro", Weight: 1, TTLHours: 96,
			Signals: []factor.SignalSpec{
				{Key: "dxy", Weight: 0.5, Transform: factor.TransformChange, Period: 30},
				{Key: "us10y", Weight: 0.5, Transform: factor.TransformChange, Period: 30},
			},
		},
		{
			Key: "sentiment", Pillar: "social", Weight: 1, Kind: factor.KindPrescored, TTLHours: 48,
			Signals: []factor.SignalSpec{
				{Key: "fear_greed", Weight: 0.5},
				{Key: "social", Weight: 0.5},
			},
		},
	}

	cfg.Bands = append(band.Table(nil), band.Default...)
	cfg.Adjustments.Cycle = adjust.DefaultCycle()
	cfg.Adjustments.Spike = adjust.DefaultSpike()
	cfg.Alerts = alert.DefaultConfig()
	return cfg
}
