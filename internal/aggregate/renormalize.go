package aggregate

import (
	"math"
	"sort"
	"time"

	"RiskDial/internal/model"
)

// WeightTolerance bounds how far configured weights may drift from their target sum.
const WeightTolerance = 1e-6

// Renormalize rescales the weights of available items so they sum to 1.0.
// Unavailable items get 0. ok is false when no available item carries weight.
func Renormalize(weights []float64, available []bool) (effective []float64, ok bool) {
	effective = make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		if i < len(available) && available[i] && w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return effective, false
	}
	for i, w := range weights {
		if i < len(available) && available[i] && w > 0 {
			effective[i] = w / total
		}
	}
	return effective, true
}

// ValidateWeights checks that weights sum to target within WeightTolerance and
// that none is negative. Violations are reported under name.
func ValidateWeights(name string, weights map[string]float64, target float64) error {
	cerr := &model.ConfigError{}
	if len(weights) == 0 {
		cerr.Add("%s: no weights configured", name)
		return cerr
	}
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		w := weights[k]
		if w < 0 || math.IsNaN(w) {
			cerr.Add("%s: weight %q is %v", name, k, w)
		}
		sum += w
	}
	if math.Abs(sum-target) > WeightTolerance*math.Max(1, target) {
		cerr.Add("%s: weights sum to %.9f, expected %.1f", name, sum, target)
	}
	return cerr.Err()
}

// Status derives a factor's freshness from its score and age.
func Status(score *int, lastUTC, asOf time.Time, ttl time.Duration) model.FactorStatus {
	if score == nil {
		return model.StatusExcluded
	}
	if ttl > 0 && asOf.Sub(lastUTC) > ttl {
		return model.StatusStale
	}
	return model.StatusFresh
}
