package model

import "time"

// DateLayout keys snapshots and alerts by UTC calendar day.
const DateLayout = "2006-01-02"

// UTCDate formats t as a UTC calendar day.
func UTCDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// Band is a labeled inclusive integer range of the composite score.
type Band struct {
	Key            string `json:"key" yaml:"key"`
	Label          string `json:"label" yaml:"label"`
	Lo             int    `json:"lo" yaml:"lo"`
	Hi             int    `json:"hi" yaml:"hi"`
	Color          string `json:"color" yaml:"color"`
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// AdjustmentKind names an adjustment engine.
type AdjustmentKind string

const (
	AdjustCycle AdjustmentKind = "cycle"
	AdjustSpike AdjustmentKind = "spike"
)

// Adjustment is a small bounded additive delta applied after the composite.
type Adjustment struct {
	Kind    AdjustmentKind `json:"kind"`
	Points  float64        `json:"adj_pts"`
	Value   float64        `json:"residual_or_z"`
	LastUTC time.Time      `json:"last_utc"`
	Source  string         `json:"source"`
	Reason  string         `json:"reason,omitempty"`
}

// Adjustments holds both engines' outputs.
type Adjustments struct {
	Cycle Adjustment `json:"cycle_adj"`
	Spike Adjustment `json:"spike_adj"`
}

// Total returns the summed delta.
func (a Adjustments) Total() float64 { return a.Cycle.Points + a.Spike.Points }

// CompositeSnapshot is the immutable record of one run.
type CompositeSnapshot struct {
	ID          string      `json:"id"`
	AsOfUTC     time.Time   `json:"as_of_utc"`
	Date        string      `json:"date"`
	RawScore    *float64    `json:"raw_score"`
	Score       *int        `json:"composite_score"`
	Band        *Band       `json:"band"`
	Factors     []Factor    `json:"factors"`
	Pillars     []Pillar    `json:"pillars"`
	Adjustments Adjustments `json:"adjustments"`
}

// HasScore reports whether a composite was produced.
func (s *CompositeSnapshot) HasScore() bool { return s != nil && s.Score != nil }

// HistoryPoint is one day of the rolling history feeding next-day comparisons.
type HistoryPoint struct {
	Date     string   `json:"date"`
	Score    *int     `json:"score"`
	BandKey  string   `json:"band_key,omitempty"`
	FlowSum  *float64 `json:"flow_sum,omitempty"`
	Deadband *float64 `json:"deadband,omitempty"`
}
