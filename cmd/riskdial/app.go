package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"RiskDial/internal/collector"
	"RiskDial/internal/config"
	"RiskDial/internal/engine"
	"RiskDial/internal/logging"
	"RiskDial/internal/metrics"
	"RiskDial/internal/notifier"
	"RiskDial/internal/recorder"
	"RiskDial/internal/scheduler"
	"RiskDial/internal/state"
)

// app holds the wired components shared by the run and serve commands.
type app struct {
	cfg      *config.Config
	state    *state.Manager
	recorder recorder.Recorder
	telegram *notifier.TelegramNotifier
	metrics  *metrics.Registry
	runner   *scheduler.Runner
}

// loadConfig loads and validates the configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Setup(os.Stderr, cfg.Logging.Level)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	eng, err := engine.New(cfg.Engine())
	if err != nil {
		return nil, err
	}
	st, err := state.NewManager(cfg.State.File, cfg.Bands)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	col := collector.NewCollector(cfg.GuardSettings(),
		collector.NewYahooProvider(cfg.Proxy),
		collector.NewHTTPProvider(cfg.Proxy),
		collector.FileProvider{},
		&collector.MockProvider{Base: 100},
	)

	a := &app{
		cfg:      cfg,
		state:    st,
		recorder: rec,
		telegram: notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy),
		metrics:  metrics.NewRegistry(),
	}
	a.runner = &scheduler.Runner{
		Collector: col,
		Sources:   cfg.ResolvedSources(),
		Engine:    eng,
		State:     st,
		Recorder:  rec,
		Metrics:   a.metrics,
		Symbol:    cfg.Symbol,
		Retries:   cfg.Telegram.Retries,
	}
	if a.telegram.Enabled() {
		a.runner.Notifier = a.telegram
	} else {
		log.Info().Msg("telegram not configured, notifications disabled")
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Warn().Err(err).Msg("close recorder")
	}
}
