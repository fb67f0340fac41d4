package aggregate

import (
	"RiskDial/internal/model"
)

// PillarSpec is a configured pillar weight in percent of the composite.
type PillarSpec struct {
	Key       string  `yaml:"key"`
	WeightPct float64 `yaml:"weight_pct"`
}

// Result is the outcome of blending fresh factors into pillars and a composite.
type Result struct {
	Pillars   []model.Pillar
	Composite *float64
	Reason    string
}

// Composite blends factors into pillar scores and pillar scores into a
// composite. Only fresh factors count. A pillar with no fresh factor is
// dropped from the top-level renormalization. When nothing is fresh the
// composite is nil.
func Composite(pillars []PillarSpec, factors []model.Factor) Result {
	res := Result{Pillars: make([]model.Pillar, len(pillars))}

	pillarWeights := make([]float64, len(pillars))
	pillarAvail := make([]bool, len(pillars))
	for i, p := range pillars {
		res.Pillars[i] = model.Pillar{Key: p.Key, WeightPct: p.WeightPct}
		pillarWeights[i] = p.WeightPct / 100

		var members []model.Factor
		for _, f := range factors {
			if f.Pillar == p.Key {
				members = append(members, f)
			}
		}
		score, fresh := pillarScore(members)
		res.Pillars[i].FreshFactors = fresh
		if score != nil {
			res.Pillars[i].Score = score
			pillarAvail[i] = true
		}
	}

	effective, ok := Renormalize(pillarWeights, pillarAvail)
	if !ok {
		res.Reason = model.ErrCompositeUndefined.Error()
		return res
	}
	var composite float64
	for i := range res.Pillars {
		res.Pillars[i].EffectiveWeight = effective[i]
		if pillarAvail[i] {
			composite += effective[i] * *res.Pillars[i].Score
		}
	}
	res.Composite = &composite
	return res
}

func pillarScore(members []model.Factor) (*float64, int) {
	weights := make([]float64, len(members))
	avail := make([]bool, len(members))
	fresh := 0
	for i, f := range members {
		weights[i] = f.Weight
		if f.Status == model.StatusFresh && f.Score != nil {
			avail[i] = true
			fresh++
		}
	}
	effective, ok := Renormalize(weights, avail)
	if !ok {
		return nil, fresh
	}
	var score float64
	for i, f := range members {
		if avail[i] {
			score += effective[i] * float64(*f.Score)
		}
	}
	return &score, fresh
}
