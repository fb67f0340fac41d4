package alert

import (
	"math"

	"RiskDial/internal/calculator"
	"RiskDial/internal/model"
)

// Cross describes the flow-sum evaluation for one day.
type Cross struct {
	Sum       float64
	Deadband  float64
	PriorSign int
	Fire      bool
	Direction string
}

// RollingFlowSums sums the flow series over window days, keeping the date of
// each window's last point.
func RollingFlowSums(flows model.Series, window int) []model.Point {
	values := flows.Values()
	sums := calculator.RollingSum(values, window)
	if len(sums) == 0 {
		return nil
	}
	out := make([]model.Point, len(sums))
	for i, s := range sums {
		out[i] = model.Point{Time: flows.Points[i+window-1].Time, Value: s}
	}
	return out
}

// Deadband is max(round(multiplier × stddev(last lookback sums)), floor).
func Deadband(sums []float64, lookback int, multiplier, floor float64) float64 {
	if len(sums) > lookback {
		sums = sums[len(sums)-lookback:]
	}
	return math.Max(math.Round(multiplier*calculator.StdDev(sums)), floor)
}

// EvaluateCross checks the latest sum against the most recent prior sum that
// sat outside the deadband. ok is false when there is no latest sum.
func EvaluateCross(sums []float64, deadband float64) (Cross, bool) {
	if len(sums) == 0 {
		return Cross{}, false
	}
	today := sums[len(sums)-1]
	c := Cross{Sum: today, Deadband: deadband}
	for i := len(sums) - 2; i >= 0; i-- {
		if math.Abs(sums[i]) > deadband {
			c.PriorSign = sign(sums[i])
			break
		}
	}
	if math.Abs(today) <= deadband || c.PriorSign == 0 {
		return c, true
	}
	if s := sign(today); s != c.PriorSign {
		c.Fire = true
		c.Direction = "down"
		if s > 0 {
			c.Direction = "up"
		}
	}
	return c, true
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
