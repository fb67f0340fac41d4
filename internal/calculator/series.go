package calculator

import (
	"errors"
	"fmt"
	"math"

	"RiskDial/internal/model"
)

// RollingSum returns the trailing sums of window consecutive values.
// The result has len(values)-window+1 entries; nil when values are too short.
func RollingSum(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}
	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum)
		}
	}
	return out
}

// PctChange returns the relative change over lag steps.
func PctChange(values []float64, lag int) []float64 {
	if lag <= 0 || len(values) <= lag {
		return nil
	}
	out := make([]float64, 0, len(values)-lag)
	for i := lag; i < len(values); i++ {
		prev := values[i-lag]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (values[i]-prev)/math.Abs(prev))
	}
	return out
}

// LogReturns returns ln(p_i / p_{i-1}), skipping non-positive prices.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i] <= 0 || prices[i-1] <= 0 {
			continue
		}
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}

// EWMAVariance seeds with the mean squared return and then applies
// σ²_t = λσ²_{t-1} + (1-λ)r²_t over every return in order.
func EWMAVariance(returns []float64, lambda float64) (float64, error) {
	if len(returns) == 0 {
		return 0, fmt.Errorf("%w: no returns for EWMA variance", model.ErrInsufficientData)
	}
	if lambda <= 0 || lambda >= 1 {
		return 0, errors.New("lambda must be in (0,1)")
	}
	var seed float64
	for _, r := range returns {
		seed += r * r
	}
	variance := seed / float64(len(returns))
	for _, r := range returns {
		variance = lambda*variance + (1-lambda)*r*r
	}
	return variance, nil
}

// Fit is an ordinary least squares line y = A + B·x.
type Fit struct {
	A float64
	B float64
}

// Predict evaluates the line at x.
func (f Fit) Predict(x float64) float64 { return f.A + f.B*x }

// FitOLS regresses ys on xs.
func FitOLS(xs, ys []float64) (Fit, error) {
	if len(xs) != len(ys) {
		return Fit{}, errors.New("xs and ys differ in length")
	}
	if len(xs) < 2 {
		return Fit{}, fmt.Errorf("%w: %d points for OLS", model.ErrInsufficientData, len(xs))
	}
	mx, my := Mean(xs), Mean(ys)
	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - mx
		sxx += dx * dx
		sxy += dx * (ys[i] - my)
	}
	if sxx == 0 {
		return Fit{}, errors.New("xs have zero variance")
	}
	b := sxy / sxx
	return Fit{A: my - b*mx, B: b}, nil
}
