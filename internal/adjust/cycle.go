package adjust

import (
	"errors"
	"fmt"
	"math"
	"time"

	"RiskDial/internal/calculator"
	"RiskDial/internal/model"
)

// Cycle fits log(price) = a + b·log(days since anchor) over weekly closes and
// turns the latest standardized residual into a bounded delta. Price above the
// long-run power law adds risk.
func Cycle(cfg CycleConfig, closes model.Series, asOf time.Time) model.Adjustment {
	adj := model.Adjustment{Kind: model.AdjustCycle, Source: closes.Source}
	if !cfg.Enabled {
		adj.Reason = model.ReasonDisabled
		return adj
	}
	anchor, err := cfg.Anchor()
	if err != nil {
		adj.Reason = err.Error()
		return adj
	}

	window := closes.Sorted().Window(asOf.AddDate(-cfg.WindowYears, 0, 0), asOf)
	weekly := calculator.AggregateDailyToWeekly(window.Points)

	xs := make([]float64, 0, len(weekly))
	ys := make([]float64, 0, len(weekly))
	for _, p := range weekly {
		days := p.Time.Sub(anchor).Hours() / 24
		if days <= 0 || p.Value <= 0 {
			continue
		}
		xs = append(xs, math.Log(days))
		ys = append(ys, math.Log(p.Value))
	}
	if len(xs) < cfg.MinPoints {
		adj.Reason = fmt.Sprintf("%s: %d < %d weekly points", model.ReasonInsufficientData, len(xs), cfg.MinPoints)
		return adj
	}

	fit, err := calculator.FitOLS(xs, ys)
	if err != nil {
		adj.Reason = errReason(err)
		return adj
	}
	residuals := make([]float64, len(xs))
	for i := range xs {
		residuals[i] = ys[i] - fit.Predict(xs[i])
	}
	sd := calculator.StdDev(residuals)
	if sd == 0 {
		adj.Reason = model.ReasonZeroVariance
		return adj
	}

	z := calculator.Clamp(residuals[len(residuals)-1]/sd, -cfg.ZClip, cfg.ZClip)
	adj.Value = z
	adj.Points = cfg.MaxPoints * math.Tanh(z/cfg.Scale)
	adj.LastUTC = weekly[len(weekly)-1].Time
	return adj
}

// errReason maps a calculator error to an adjustment reason code.
func errReason(err error) string {
	if errors.Is(err, model.ErrInsufficientData) {
		return model.ReasonInsufficientData
	}
	return err.Error()
}
