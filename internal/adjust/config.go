package adjust

import (
	"time"

	"RiskDial/internal/model"
)

// SpikePolicy selects which return direction raises risk.
type SpikePolicy string

const (
	PolicyUpsideOnly SpikePolicy = "upside_only"
	PolicySymmetric  SpikePolicy = "symmetric"
)

// CycleConfig holds the tuned power-law residual constants.
type CycleConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Input       string  `yaml:"input"`
	AnchorDate  string  `yaml:"anchor_date"`
	WindowYears int     `yaml:"window_years"`
	MinPoints   int     `yaml:"min_points"`
	ZClip       float64 `yaml:"z_clip"`
	Scale       float64 `yaml:"scale"`
	MaxPoints   float64 `yaml:"max_points"`
}

// SpikeConfig holds the tuned EWMA volatility spike constants.
type SpikeConfig struct {
	Enabled      bool        `yaml:"enabled"`
	Input        string      `yaml:"input"`
	SpotInput    string      `yaml:"spot_input"`
	LookbackDays int         `yaml:"lookback_days"`
	Lambda       float64     `yaml:"lambda"`
	SigmaFloor   float64     `yaml:"sigma_floor"`
	MinReturns   int         `yaml:"min_returns"`
	ZClip        float64     `yaml:"z_clip"`
	Scale        float64     `yaml:"scale"`
	MaxPoints    float64     `yaml:"max_points"`
	Policy       SpikePolicy `yaml:"policy"`
}

// DefaultCycle returns the shipped cycle constants.
func DefaultCycle() CycleConfig {
	return CycleConfig{
		Enabled:     true,
		Input:       "price",
		AnchorDate:  "2009-01-03",
		WindowYears: 8,
		MinPoints:   10,
		ZClip:       4,
		Scale:       2,
		MaxPoints:   2,
	}
}

// DefaultSpike returns the shipped spike constants.
func DefaultSpike() SpikeConfig {
	return SpikeConfig{
		Enabled:      true,
		Input:        "price",
		SpotInput:    "spot",
		LookbackDays: 60,
		Lambda:       0.94,
		SigmaFloor:   0.005,
		MinReturns:   20,
		ZClip:        5,
		Scale:        2,
		MaxPoints:    6,
		Policy:       PolicyUpsideOnly,
	}
}

// Anchor parses the anchor date.
func (c CycleConfig) Anchor() (time.Time, error) {
	return time.Parse(model.DateLayout, c.AnchorDate)
}

// Validate reports malformed cycle constants.
func (c CycleConfig) Validate() error {
	cerr := &model.ConfigError{}
	if _, err := c.Anchor(); err != nil {
		cerr.Add("adjustments.cycle.anchor_date %q: %v", c.AnchorDate, err)
	}
	if c.WindowYears <= 0 {
		cerr.Add("adjustments.cycle.window_years must be positive")
	}
	if c.MinPoints < 3 {
		cerr.Add("adjustments.cycle.min_points must be at least 3")
	}
	if c.ZClip <= 0 || c.Scale <= 0 || c.MaxPoints < 0 {
		cerr.Add("adjustments.cycle: z_clip and scale must be positive, max_points non-negative")
	}
	return cerr.Err()
}

// Validate reports malformed spike constants.
func (c SpikeConfig) Validate() error {
	cerr := &model.ConfigError{}
	if c.Lambda <= 0 || c.Lambda >= 1 {
		cerr.Add("adjustments.spike.lambda %v outside (0,1)", c.Lambda)
	}
	if c.LookbackDays <= 0 || c.MinReturns <= 0 {
		cerr.Add("adjustments.spike: lookback_days and min_returns must be positive")
	}
	if c.SigmaFloor <= 0 {
		cerr.Add("adjustments.spike.sigma_floor must be positive")
	}
	if c.ZClip <= 0 || c.Scale <= 0 || c.MaxPoints < 0 {
		cerr.Add("adjustments.spike: z_clip and scale must be positive, max_points non-negative")
	}
	if c.Policy != PolicyUpsideOnly && c.Policy != PolicySymmetric {
		cerr.Add("adjustments.spike.policy %q unknown", c.Policy)
	}
	return cerr.Err()
}
