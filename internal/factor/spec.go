package factor

import (
	"fmt"

	"RiskDial/internal/aggregate"
	"RiskDial/internal/calculator"
	"RiskDial/internal/model"
)

// Kind selects the scorer variant for a factor.
type Kind string

const (
	// KindBlend percentile-ranks (or z-scores) raw signals against their own history.
	KindBlend Kind = "blend"
	// KindPrescored blends sub-signals already on the 0-100 scale.
	KindPrescored Kind = "prescored"
)

// Transform derives the ranked value from a raw input series.
type Transform string

const (
	TransformLevel         Transform = "level"
	TransformChange        Transform = "change"
	TransformRollingSum    Transform = "rolling_sum"
	TransformMADeviation   Transform = "ma_deviation"
	TransformRSI           Transform = "rsi"
	TransformRangePosition Transform = "range_position"
)

// Method is how a derived value is normalized before the logistic mapping.
type Method string

const (
	MethodPercentile Method = "percentile"
	MethodZScore     Method = "zscore"
)

// Lookback bounds in days.
const (
	MinLookbackDays = 90
	MaxLookbackDays = 1825
)

// Defaults applied to unset spec fields.
const (
	DefaultLookbackDays = 730
	DefaultMinSamples   = 30
	DefaultWinsorLower  = 1.0
	DefaultWinsorUpper  = 99.0
	// ZScoreLogisticK is the slope used when a signal is z-scored instead of ranked.
	ZScoreLogisticK = 1.0
)

// SignalSpec configures one sub-signal of a factor.
type SignalSpec struct {
	Key       string    `yaml:"key"`
	Input     string    `yaml:"input"`
	Weight    float64   `yaml:"weight"`
	Transform Transform `yaml:"transform"`
	Period    int       `yaml:"period"`
	Invert    bool      `yaml:"invert"`
	Method    Method    `yaml:"method"`
}

// Spec configures a factor.
type Spec struct {
	Key          string       `yaml:"key"`
	Pillar       string       `yaml:"pillar"`
	Weight       float64      `yaml:"weight"`
	Kind         Kind         `yaml:"kind"`
	TTLHours     float64      `yaml:"ttl_hours"`
	LookbackDays int          `yaml:"lookback_days"`
	MinSamples   int          `yaml:"min_samples"`
	WinsorLower  float64      `yaml:"winsor_lower"`
	WinsorUpper  float64      `yaml:"winsor_upper"`
	LogisticK    float64      `yaml:"logistic_k"`
	LogisticMid  float64      `yaml:"logistic_mid"`
	Signals      []SignalSpec `yaml:"signals"`
}

// WithDefaults fills unset fields.
func (s Spec) WithDefaults() Spec {
	if s.Kind == "" {
		s.Kind = KindBlend
	}
	if s.LookbackDays == 0 {
		s.LookbackDays = DefaultLookbackDays
	}
	if s.MinSamples == 0 {
		s.MinSamples = DefaultMinSamples
	}
	if s.WinsorLower == 0 && s.WinsorUpper == 0 {
		s.WinsorLower, s.WinsorUpper = DefaultWinsorLower, DefaultWinsorUpper
	}
	if s.LogisticK == 0 {
		s.LogisticK = calculator.DefaultLogisticK
	}
	if s.LogisticMid == 0 {
		s.LogisticMid = calculator.DefaultLogisticMid
	}
	signals := make([]SignalSpec, len(s.Signals))
	for i, sig := range s.Signals {
		if sig.Transform == "" {
			sig.Transform = TransformLevel
		}
		if sig.Method == "" {
			sig.Method = MethodPercentile
		}
		if sig.Input == "" {
			sig.Input = sig.Key
		}
		signals[i] = sig
	}
	s.Signals = signals
	return s
}

// Inputs returns the names of every input series the factor reads.
func (s Spec) Inputs() []string {
	out := make([]string, 0, len(s.Signals))
	for _, sig := range s.Signals {
		out = append(out, sig.Input)
	}
	return out
}

// Validate reports configuration-shape errors for a defaulted spec.
func (s Spec) Validate() error {
	cerr := &model.ConfigError{}
	name := fmt.Sprintf("factor %q", s.Key)
	if s.Key == "" {
		cerr.Add("factor with empty key")
	}
	if s.Pillar == "" {
		cerr.Add("%s: pillar is required", name)
	}
	if s.TTLHours <= 0 {
		cerr.Add("%s: ttl_hours must be positive", name)
	}
	if s.Kind != KindBlend && s.Kind != KindPrescored {
		cerr.Add("%s: unknown kind %q", name, s.Kind)
	}
	if s.LookbackDays < MinLookbackDays || s.LookbackDays > MaxLookbackDays {
		cerr.Add("%s: lookback_days %d outside [%d,%d]", name, s.LookbackDays, MinLookbackDays, MaxLookbackDays)
	}
	if s.WinsorLower < 0 || s.WinsorUpper > 100 || s.WinsorLower >= s.WinsorUpper {
		cerr.Add("%s: invalid winsor bounds [%v,%v]", name, s.WinsorLower, s.WinsorUpper)
	}
	if len(s.Signals) == 0 {
		cerr.Add("%s: no signals", name)
		return cerr.Err()
	}

	weights := make(map[string]float64, len(s.Signals))
	for _, sig := range s.Signals {
		if _, dup := weights[sig.Key]; dup {
			cerr.Add("%s: duplicate signal %q", name, sig.Key)
		}
		weights[sig.Key] = sig.Weight
		if s.Kind == KindPrescored {
			continue
		}
		switch sig.Transform {
		case TransformLevel:
		case TransformChange, TransformRollingSum, TransformMADeviation, TransformRSI, TransformRangePosition:
			if sig.Period <= 0 {
				cerr.Add("%s: signal %q needs a positive period for %s", name, sig.Key, sig.Transform)
			}
		default:
			cerr.Add("%s: signal %q has unknown transform %q", name, sig.Key, sig.Transform)
		}
		if sig.Method != MethodPercentile && sig.Method != MethodZScore {
			cerr.Add("%s: signal %q has unknown method %q", name, sig.Key, sig.Method)
		}
	}
	cerr.Merge(aggregate.ValidateWeights(name+" sub-weights", weights, 1.0))
	return cerr.Err()
}
