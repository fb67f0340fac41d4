package alert

import "RiskDial/internal/model"

// Config holds the alert toggles and the tuned deadband constants.
type Config struct {
	BandChange         bool    `yaml:"band_change"`
	ETFZeroCross       bool    `yaml:"etf_zero_cross"`
	ETFFlowInput       string  `yaml:"etf_flow_input"`
	Window             int     `yaml:"window"`
	DeadbandLookback   int     `yaml:"deadband_lookback"`
	DeadbandMultiplier float64 `yaml:"deadband_multiplier"`
	DeadbandFloor      float64 `yaml:"deadband_floor"`
}

// DefaultConfig returns the shipped alert settings.
func DefaultConfig() Config {
	return Config{
		BandChange:         true,
		ETFZeroCross:       true,
		ETFFlowInput:       "etf_flows",
		Window:             21,
		DeadbandLookback:   180,
		DeadbandMultiplier: 0.02,
		DeadbandFloor:      1000,
	}
}

// Validate reports malformed alert settings.
func (c Config) Validate() error {
	cerr := &model.ConfigError{}
	if c.ETFZeroCross {
		if c.ETFFlowInput == "" {
			cerr.Add("alerts.etf_flow_input is required when etf_zero_cross is enabled")
		}
		if c.Window <= 0 || c.DeadbandLookback < 2 {
			cerr.Add("alerts: window must be positive and deadband_lookback at least 2")
		}
		if c.DeadbandMultiplier < 0 || c.DeadbandFloor < 0 {
			cerr.Add("alerts: deadband_multiplier and deadband_floor must be non-negative")
		}
	}
	return cerr.Err()
}
