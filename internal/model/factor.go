package model

import "time"

// FactorStatus reports whether a factor took part in the composite.
type FactorStatus string

const (
	StatusFresh    FactorStatus = "fresh"
	StatusStale    FactorStatus = "stale"
	StatusExcluded FactorStatus = "excluded"
)

// SubSignal is one independently normalized input of a factor.
type SubSignal struct {
	Key             string    `json:"key"`
	Weight          float64   `json:"weight"`
	EffectiveWeight float64   `json:"effective_weight"`
	Score           *float64  `json:"score"`
	LastUTC         time.Time `json:"last_utc"`
	Reason          string    `json:"reason,omitempty"`
}

// Factor is a scored data factor for one run.
type Factor struct {
	Key        string       `json:"key"`
	Pillar     string       `json:"pillar"`
	Weight     float64      `json:"weight"`
	WeightPct  float64      `json:"weight_pct"`
	Score      *int         `json:"score"`
	Status     FactorStatus `json:"status"`
	LastUTC    time.Time    `json:"last_utc"`
	Source     string       `json:"source"`
	Reason     string       `json:"reason,omitempty"`
	Details    []string     `json:"details,omitempty"`
	SubSignals []SubSignal  `json:"sub_signals,omitempty"`
}

// Pillar groups factors. Derived every run, never persisted on its own.
type Pillar struct {
	Key             string   `json:"key"`
	WeightPct       float64  `json:"weight_pct"`
	EffectiveWeight float64  `json:"effective_weight"`
	Score           *float64 `json:"score"`
	FreshFactors    int      `json:"fresh_factors"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
