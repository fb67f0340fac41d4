package adjust

import (
	"fmt"
	"math"
	"time"

	"RiskDial/internal/calculator"
	"RiskDial/internal/model"
)

// Spike standardizes the day's log return against an EWMA volatility estimate
// and turns it into a bounded delta. spot may be empty, in which case the
// latest close is compared with the close before it.
func Spike(cfg SpikeConfig, closes, spot model.Series, asOf time.Time) model.Adjustment {
	adj := model.Adjustment{Kind: model.AdjustSpike, Source: closes.Source}
	if !cfg.Enabled {
		adj.Reason = model.ReasonDisabled
		return adj
	}

	daily := closes.Sorted().Window(time.Time{}, asOf)
	var current model.Point
	var history []model.Point
	if last, ok := spot.Sorted().Window(time.Time{}, asOf).Last(); ok {
		current = last
		adj.Source = spot.Source
		day := startOfDay(last.Time)
		for _, p := range daily.Points {
			if p.Time.Before(day) {
				history = append(history, p)
			}
		}
	} else if daily.Len() >= 2 {
		current = daily.Points[daily.Len()-1]
		history = daily.Points[:daily.Len()-1]
	}
	if len(history) == 0 || current.Value <= 0 {
		adj.Reason = fmt.Sprintf("%s: no completed close before the current price", model.ReasonInsufficientData)
		return adj
	}

	prevClose := history[len(history)-1].Value
	if prevClose <= 0 {
		adj.Reason = fmt.Sprintf("%s: non-positive close", model.ReasonInsufficientData)
		return adj
	}
	r := math.Log(current.Value / prevClose)

	prices := make([]float64, len(history))
	for i, p := range history {
		prices[i] = p.Value
	}
	returns := calculator.LogReturns(prices)
	if len(returns) > cfg.LookbackDays {
		returns = returns[len(returns)-cfg.LookbackDays:]
	}
	if len(returns) < cfg.MinReturns {
		adj.Reason = fmt.Sprintf("%s: %d < %d returns", model.ReasonInsufficientData, len(returns), cfg.MinReturns)
		return adj
	}

	variance, err := calculator.EWMAVariance(returns, cfg.Lambda)
	if err != nil {
		adj.Reason = errReason(err)
		return adj
	}
	sigma := math.Max(math.Sqrt(variance), cfg.SigmaFloor)
	z := calculator.Clamp(r/sigma, -cfg.ZClip, cfg.ZClip)
	adj.Value = z
	adj.LastUTC = current.Time

	switch cfg.Policy {
	case PolicySymmetric:
		adj.Points = cfg.MaxPoints * math.Tanh(math.Abs(z)/cfg.Scale)
	default:
		if z < 0 {
			adj.Reason = model.ReasonDownsideIgnored
			return adj
		}
		adj.Points = cfg.MaxPoints * math.Tanh(z/cfg.Scale)
	}
	return adj
}

// Apply adds both deltas to the composite and clamps to [0,100] once.
func Apply(composite float64, adj model.Adjustments) float64 {
	return calculator.Clamp(composite+adj.Total(), 0, 100)
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
