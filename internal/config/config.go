package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"RiskDial/internal/adjust"
	"RiskDial/internal/aggregate"
	"RiskDial/internal/alert"
	"RiskDial/internal/band"
	"RiskDial/internal/collector"
	"RiskDial/internal/engine"
	"RiskDial/internal/factor"
	"RiskDial/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Symbol   string `yaml:"symbol"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Retries  int    `yaml:"retries"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyCron  string `yaml:"daily_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		File string `yaml:"file"`
	} `yaml:"state"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Proxy     string `yaml:"proxy"`
	Collector struct {
		TimeoutSeconds     int     `yaml:"timeout_seconds"`
		Retries            int     `yaml:"retries"`
		RatePerMinute      float64 `yaml:"rate_per_minute"`
		FailureThreshold   uint32  `yaml:"failure_threshold"`
		OpenTimeoutMinutes int     `yaml:"open_timeout_minutes"`
	} `yaml:"collector"`

	Sources     []collector.SourceSpec `yaml:"sources"`
	Pillars     []aggregate.PillarSpec `yaml:"pillars"`
	Factors     []factor.Spec          `yaml:"factors"`
	Bands       band.Table             `yaml:"bands"`
	Adjustments struct {
		Cycle adjust.CycleConfig `yaml:"cycle"`
		Spike adjust.SpikeConfig `yaml:"spike"`
	} `yaml:"adjustments"`
	Alerts alert.Config `yaml:"alerts"`
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	overrides := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"HTTPS_PROXY":        &cfg.Proxy,
		"SQLITE_PATH":        &cfg.Database.SQLitePath,
		"STATE_FILE":         &cfg.State.File,
		"CRON_DAILY":         &cfg.Schedule.DailyCron,
		"LOG_LEVEL":          &cfg.Logging.Level,
		"METRICS_LISTEN":     &cfg.Metrics.Listen,
		"RISKDIAL_SYMBOL":    &cfg.Symbol,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	return cfg, nil
}

// Engine returns the scoring model section.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Pillars: c.Pillars,
		Factors: c.Factors,
		Bands:   c.Bands,
		Cycle:   c.Adjustments.Cycle,
		Spike:   c.Adjustments.Spike,
		Alerts:  c.Alerts,
	}
}

// ResolvedSources returns the sources with the default symbol filled in
// for price providers.
func (c *Config) ResolvedSources() []collector.SourceSpec {
	out := make([]collector.SourceSpec, len(c.Sources))
	for i, s := range c.Sources {
		if s.Symbol == "" && s.Provider == "yahoo" {
			s.Symbol = c.Symbol
		}
		out[i] = s
	}
	return out
}

// GuardSettings returns the collector-wide fetch bounds.
func (c *Config) GuardSettings() collector.GuardSettings {
	s := collector.DefaultGuardSettings()
	if c.Collector.TimeoutSeconds > 0 {
		s.Timeout = time.Duration(c.Collector.TimeoutSeconds) * time.Second
	}
	if c.Collector.Retries > 0 {
		s.Retries = c.Collector.Retries
	}
	if c.Collector.RatePerMinute > 0 {
		s.RatePerMinute = c.Collector.RatePerMinute
	}
	if c.Collector.FailureThreshold > 0 {
		s.FailureThreshold = c.Collector.FailureThreshold
	}
	if c.Collector.OpenTimeoutMinutes > 0 {
		s.OpenTimeout = time.Duration(c.Collector.OpenTimeoutMinutes) * time.Minute
	}
	return s
}

var knownProviders = map[string]bool{"yahoo": true, "http": true, "file": true, "mock": true}

// Validate checks the whole configuration and reports every violation in
// one *model.ConfigError.
func (c *Config) Validate() error {
	cerr := &model.ConfigError{}
	cerr.Merge(engine.Validate(c.Engine()))

	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Schedule.DailyCron); err != nil {
		cerr.Add("schedule.daily_cron %q: %v", c.Schedule.DailyCron, err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		cerr.Add("telegram.bot_token and telegram.chat_id must be set together")
	}

	sources := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if sources[s.Name] {
			cerr.Add("source %q defined twice", s.Name)
		}
		sources[s.Name] = true
		switch {
		case !knownProviders[s.Provider]:
			cerr.Add("source %q: unknown provider %q", s.Name, s.Provider)
		case s.Provider == "http" && s.URL == "":
			cerr.Add("source %q: http provider needs a url", s.Name)
		case s.Provider == "file" && s.Path == "":
			cerr.Add("source %q: file provider needs a path", s.Name)
		}
	}
	for _, in := range c.requiredInputs() {
		if !sources[in] {
			cerr.Add("input %q has no source", in)
		}
	}
	return cerr.Err()
}

func (c *Config) requiredInputs() []string {
	var out []string
	for _, f := range c.Factors {
		out = append(out, f.WithDefaults().Inputs()...)
	}
	if c.Adjustments.Cycle.Enabled {
		out = append(out, c.Adjustments.Cycle.Input)
	}
	if c.Adjustments.Spike.Enabled {
		out = append(out, c.Adjustments.Spike.Input)
	}
	if c.Alerts.ETFZeroCross {
		out = append(out, c.Alerts.ETFFlowInput)
	}
	return out
}
