package factor

import (
	"fmt"
	"time"

	"RiskDial/internal/model"
)

// prescoredScorer blends sub-signals that an external scorer already put on
// the 0-100 risk scale.
type prescoredScorer struct {
	spec Spec
}

func (p *prescoredScorer) Key() string { return p.spec.Key }
func (p *prescoredScorer) Spec() Spec  { return p.spec }

func (p *prescoredScorer) Score(in Inputs, asOf time.Time) Result {
	outcomes := make([]signalOutcome, len(p.spec.Signals))
	for i, sig := range p.spec.Signals {
		series, ok := in[sig.Input]
		if !ok || series.Len() == 0 {
			outcomes[i] = unavailable(sig.Key, model.ReasonSourceUnavailable, "input %q missing", sig.Input)
			continue
		}
		window := series.Sorted().Window(asOf.AddDate(0, 0, -p.spec.LookbackDays), asOf)
		last, ok := window.Last()
		if !ok {
			outcomes[i] = unavailable(sig.Key, model.ReasonInsufficientData, "no points in lookback")
			continue
		}
		v := clampScore(last.Value)
		if sig.Invert {
			v = 100 - v
		}
		outcomes[i] = signalOutcome{
			score:  v,
			ok:     true,
			last:   last.Time,
			source: series.Source,
			detail: fmt.Sprintf("%s: prescored=%.1f", sig.Key, v),
		}
	}
	return blend(p.spec, outcomes)
}
