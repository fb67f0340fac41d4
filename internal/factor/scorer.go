package factor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"RiskDial/internal/aggregate"
	"RiskDial/internal/model"
)

// Inputs maps input names to their resolved raw series.
type Inputs map[string]model.Series

// Result is a scorer's output. Score is nil when the factor is unavailable.
type Result struct {
	Score      *int
	LastUTC    time.Time
	Source     string
	Reason     string
	Details    []string
	SubSignals []model.SubSignal
}

// Scorer turns resolved inputs into a factor result. Implementations are
// pure and safe to evaluate concurrently.
type Scorer interface {
	Key() string
	Spec() Spec
	Score(in Inputs, asOf time.Time) Result
}

// Build validates a spec and returns the scorer for its kind.
func Build(spec Spec) (Scorer, error) {
	spec = spec.WithDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch spec.Kind {
	case KindPrescored:
		return &prescoredScorer{spec: spec}, nil
	default:
		return &blendScorer{spec: spec}, nil
	}
}

// signalOutcome is one evaluated sub-signal.
type signalOutcome struct {
	score  float64
	ok     bool
	last   time.Time
	source string
	reason string
	detail string
}

// blend combines sub-signal outcomes by renormalized weight.
func blend(spec Spec, outcomes []signalOutcome) Result {
	weights := make([]float64, len(outcomes))
	avail := make([]bool, len(outcomes))
	res := Result{SubSignals: make([]model.SubSignal, len(outcomes))}

	for i, o := range outcomes {
		sig := spec.Signals[i]
		weights[i] = sig.Weight
		avail[i] = o.ok
		res.SubSignals[i] = model.SubSignal{Key: sig.Key, Weight: sig.Weight, LastUTC: o.last, Reason: o.reason}
		if o.ok {
			res.SubSignals[i].Score = model.FloatPtr(o.score)
		}
		res.Details = append(res.Details, o.detail)
	}

	effective, ok := aggregate.Renormalize(weights, avail)
	if !ok {
		res.Reason = joinReasons(outcomes)
		return res
	}

	var score float64
	var sources []string
	for i, o := range outcomes {
		res.SubSignals[i].EffectiveWeight = effective[i]
		if !avail[i] {
			continue
		}
		score += effective[i] * o.score
		if res.LastUTC.IsZero() || o.last.Before(res.LastUTC) {
			res.LastUTC = o.last
		}
		if o.source != "" {
			sources = append(sources, o.source)
		}
	}
	rounded := int(math.Round(clampScore(score)))
	res.Score = &rounded
	res.Source = joinUnique(sources)
	return res
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func joinReasons(outcomes []signalOutcome) string {
	reasons := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.reason != "" {
			reasons = append(reasons, o.reason)
		}
	}
	return joinUnique(reasons)
}

func joinUnique(values []string) string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func unavailable(key, reason, format string, args ...any) signalOutcome {
	return signalOutcome{reason: reason, detail: fmt.Sprintf("%s: %s (%s)", key, reason, fmt.Sprintf(format, args...))}
}
