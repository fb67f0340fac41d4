package factor

import (
	"fmt"
	"time"

	"RiskDial/internal/calculator"
	"RiskDial/internal/model"
)

// blendScorer ranks each raw signal against its own history and maps the
// rank through the shared logistic curve.
type blendScorer struct {
	spec Spec
}

func (b *blendScorer) Key() string { return b.spec.Key }
func (b *blendScorer) Spec() Spec  { return b.spec }

func (b *blendScorer) Score(in Inputs, asOf time.Time) Result {
	outcomes := make([]signalOutcome, len(b.spec.Signals))
	for i, sig := range b.spec.Signals {
		outcomes[i] = b.scoreSignal(sig, in, asOf)
	}
	return blend(b.spec, outcomes)
}

func (b *blendScorer) scoreSignal(sig SignalSpec, in Inputs, asOf time.Time) signalOutcome {
	series, ok := in[sig.Input]
	if !ok || series.Len() == 0 {
		return unavailable(sig.Key, model.ReasonSourceUnavailable, "input %q missing", sig.Input)
	}

	// Extra raw history so the transform is warmed up at the lookback start.
	from := asOf.AddDate(0, 0, -(b.spec.LookbackDays + 2*sig.Period))
	raw := series.Sorted().Window(from, asOf)
	if raw.Len() == 0 {
		return unavailable(sig.Key, model.ReasonInsufficientData, "no points before %s", model.UTCDate(asOf))
	}

	derived := applyTransform(sig, raw.Values())
	offset := raw.Len() - len(derived)
	cutoff := asOf.AddDate(0, 0, -b.spec.LookbackDays)
	history := make([]float64, 0, len(derived))
	for i, v := range derived {
		if raw.Points[i+offset].Time.After(cutoff) {
			history = append(history, v)
		}
	}
	if len(history) < b.spec.MinSamples {
		return unavailable(sig.Key, model.ReasonInsufficientData, "%d < %d samples", len(history), b.spec.MinSamples)
	}

	clipped := calculator.Winsorize(history, b.spec.WinsorLower, b.spec.WinsorUpper)
	x := clipped[len(clipped)-1]

	var mapped float64
	var stat string
	switch sig.Method {
	case MethodZScore:
		z := calculator.ZScore(x, clipped)
		if sig.Invert {
			z = -z
		}
		mapped = calculator.Logistic01(z, ZScoreLogisticK, 0)
		stat = fmt.Sprintf("z=%.2f", z)
	default:
		p := calculator.PercentileRank(clipped, x)
		if sig.Invert {
			p = 1 - p
		}
		mapped = calculator.Logistic01(p, b.spec.LogisticK, b.spec.LogisticMid)
		stat = fmt.Sprintf("p=%.2f", p)
	}

	last, _ := raw.Last()
	score := clampScore(100 * mapped)
	return signalOutcome{
		score:  score,
		ok:     true,
		last:   last.Time,
		source: series.Source,
		detail: fmt.Sprintf("%s: %s score=%.1f n=%d", sig.Key, stat, score, len(history)),
	}
}

func applyTransform(sig SignalSpec, values []float64) []float64 {
	switch sig.Transform {
	case TransformChange:
		return calculator.PctChange(values, sig.Period)
	case TransformRollingSum:
		return calculator.RollingSum(values, sig.Period)
	case TransformMADeviation:
		return calculator.MADeviationSeries(values, sig.Period)
	case TransformRSI:
		return calculator.RSISeries(values, sig.Period)
	case TransformRangePosition:
		return calculator.RangePositionSeries(values, sig.Period)
	default:
		return values
	}
}
