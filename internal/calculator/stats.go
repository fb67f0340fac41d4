package calculator

import (
	"math"
	"sort"
)

const (
	// DefaultLogisticK is the slope shared by every factor's risk mapping.
	DefaultLogisticK = 3.0
	// DefaultLogisticMid centers the curve on the median percentile.
	DefaultLogisticMid = 0.5
)

// Winsorize clips each value to the sample's [p_lower, p_upper] percentiles.
// Percentiles are in [0,100] and use nearest-rank bounds so that repeated
// application is a no-op. Empty input, any non-finite value or an invalid
// percentile pair returns an unmodified copy.
func Winsorize(values []float64, lowerPct, upperPct float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if len(values) == 0 || lowerPct < 0 || upperPct > 100 || lowerPct > upperPct {
		return out
	}
	for _, v := range values {
		if !isFinite(v) {
			return out
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := float64(len(sorted) - 1)
	lo := sorted[int(math.Floor(lowerPct/100*n))]
	hi := sorted[int(math.Ceil(upperPct/100*n))]
	for i, v := range out {
		out[i] = Clamp(v, lo, hi)
	}
	return out
}

// PercentileRank returns (count below x + 0.5·count equal x) / n over the
// finite samples of series. Mid-rank ties avoid directional bias.
// Returns NaN on an empty series or non-finite x.
func PercentileRank(series []float64, x float64) float64 {
	if !isFinite(x) {
		return math.NaN()
	}
	var below, equal, n float64
	for _, v := range series {
		if !isFinite(v) {
			continue
		}
		n++
		switch {
		case v < x:
			below++
		case v == x:
			equal++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return (below + 0.5*equal) / n
}

// ZScore standardizes x against the population moments of series.
// Returns 0 when the variance is 0 or the series is empty.
func ZScore(x float64, series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	mean := Mean(series)
	var ss float64
	for _, v := range series {
		ss += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(ss / float64(len(series)))
	if sd == 0 || !isFinite(sd) {
		return 0
	}
	return (x - mean) / sd
}

// Logistic01 maps x into (0,1): 1/(1+e^{-k(x-x0)}).
func Logistic01(x, k, x0 float64) float64 {
	return 1 / (1 + math.Exp(-k*(x-x0)))
}

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation (n-1), 0 below two samples.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
