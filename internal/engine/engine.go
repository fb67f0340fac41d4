package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"RiskDial/internal/adjust"
	"RiskDial/internal/aggregate"
	"RiskDial/internal/alert"
	"RiskDial/internal/band"
	"RiskDial/internal/factor"
	"RiskDial/internal/model"
)

// Config is the scoring model: pillars, factors, bands, adjustments and alerts.
type Config struct {
	Pillars []aggregate.PillarSpec
	Factors []factor.Spec
	Bands   band.Table
	Cycle   adjust.CycleConfig
	Spike   adjust.SpikeConfig
	Alerts  alert.Config
}

// RunInput is one day's resolved data plus the persisted prior state.
type RunInput struct {
	AsOf   time.Time
	Inputs factor.Inputs
	// Unavailable maps input names to the collector's failure reason.
	Unavailable map[string]string
	Prior       *model.CompositeSnapshot
	Log         []model.AlertLogEntry
}

// RunOutput is the snapshot, the alerts to append and the detector states.
type RunOutput struct {
	Snapshot *model.CompositeSnapshot
	Alerts   []model.AlertLogEntry
	States   map[model.AlertType]model.AlertState
	History  model.HistoryPoint
}

// Engine runs the daily pipeline. It is safe for concurrent use.
type Engine struct {
	cfg      Config
	scorers  []factor.Scorer
	pillarOf map[string]float64
	detector *alert.Detector
}

// New validates cfg and builds the scorers. Every violation found is
// reported in one *model.ConfigError.
func New(cfg Config) (*Engine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:      cfg,
		pillarOf: make(map[string]float64, len(cfg.Pillars)),
		detector: alert.NewDetector(cfg.Alerts, cfg.Bands),
	}
	for _, p := range cfg.Pillars {
		e.pillarOf[p.Key] = p.WeightPct
	}
	for _, spec := range cfg.Factors {
		s, err := factor.Build(spec)
		if err != nil {
			return nil, err
		}
		e.scorers = append(e.scorers, s)
	}
	return e, nil
}

// Validate checks weights, pillar membership, bands and adjustment constants.
func Validate(cfg Config) error {
	cerr := &model.ConfigError{}

	pillarPct := make(map[string]float64, len(cfg.Pillars))
	for _, p := range cfg.Pillars {
		if _, dup := pillarPct[p.Key]; dup {
			cerr.Add("pillar %q defined twice", p.Key)
		}
		pillarPct[p.Key] = p.WeightPct
	}
	cerr.Merge(aggregate.ValidateWeights("pillar weight_pct", pillarPct, 100))

	seen := make(map[string]bool, len(cfg.Factors))
	members := make(map[string]map[string]float64)
	for _, spec := range cfg.Factors {
		if seen[spec.Key] {
			cerr.Add("factor %q defined twice", spec.Key)
		}
		seen[spec.Key] = true
		cerr.Merge(spec.WithDefaults().Validate())
		if _, ok := pillarPct[spec.Pillar]; !ok {
			cerr.Add("factor %q: unknown pillar %q", spec.Key, spec.Pillar)
			continue
		}
		if members[spec.Pillar] == nil {
			members[spec.Pillar] = make(map[string]float64)
		}
		members[spec.Pillar][spec.Key] = spec.Weight
	}
	for _, p := range cfg.Pillars {
		if len(members[p.Key]) == 0 {
			cerr.Add("pillar %q has no factors", p.Key)
			continue
		}
		cerr.Merge(aggregate.ValidateWeights(fmt.Sprintf("pillar %q factor weights", p.Key), members[p.Key], 1))
	}

	cerr.Merge(cfg.Bands.Validate())
	cerr.Merge(cfg.Cycle.Validate())
	cerr.Merge(cfg.Spike.Validate())
	cerr.Merge(cfg.Alerts.Validate())
	return cerr.Err()
}

// Bands returns the configured band table.
func (e *Engine) Bands() band.Table { return e.cfg.Bands }

// RequiredInputs lists every input series the model reads.
func (e *Engine) RequiredInputs() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, s := range e.scorers {
		for _, in := range s.Spec().Inputs() {
			add(in)
		}
	}
	if e.cfg.Cycle.Enabled {
		add(e.cfg.Cycle.Input)
	}
	if e.cfg.Spike.Enabled {
		add(e.cfg.Spike.Input)
		add(e.cfg.Spike.SpotInput)
	}
	if e.cfg.Alerts.ETFZeroCross {
		add(e.cfg.Alerts.ETFFlowInput)
	}
	return out
}

// Run executes one batch pass. Only context cancellation returns an error.
func (e *Engine) Run(ctx context.Context, in RunInput) (*RunOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	asOf := in.AsOf.UTC()

	factors := e.scoreFactors(in, asOf)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agg := aggregate.Composite(e.cfg.Pillars, factors)
	snap := &model.CompositeSnapshot{
		ID:      uuid.NewString(),
		AsOfUTC: asOf,
		Date:    model.UTCDate(asOf),
		Factors: factors,
		Pillars: agg.Pillars,
		Adjustments: model.Adjustments{
			Cycle: adjust.Cycle(e.cfg.Cycle, in.Inputs[e.cfg.Cycle.Input], asOf),
			Spike: adjust.Spike(e.cfg.Spike, in.Inputs[e.cfg.Spike.Input], in.Inputs[e.cfg.Spike.SpotInput], asOf),
		},
	}
	if agg.Composite != nil {
		raw := *agg.Composite
		score := int(math.Round(adjust.Apply(raw, snap.Adjustments)))
		b := e.cfg.Bands.Classify(score)
		snap.RawScore = &raw
		snap.Score = &score
		snap.Band = &b
	} else {
		log.Warn().Str("date", snap.Date).Msg(agg.Reason)
	}

	det := e.detector.Detect(alert.Input{
		AsOf:  asOf,
		Today: snap,
		Prior: in.Prior,
		Flows: in.Inputs[e.cfg.Alerts.ETFFlowInput],
		Log:   in.Log,
	})

	out := &RunOutput{
		Snapshot: snap,
		Alerts:   det.Alerts,
		States:   det.States,
		History:  model.HistoryPoint{Date: snap.Date, Score: snap.Score},
	}
	if snap.Band != nil {
		out.History.BandKey = snap.Band.Key
	}
	if det.Cross != nil {
		out.History.FlowSum = model.FloatPtr(det.Cross.Sum)
		out.History.Deadband = model.FloatPtr(det.Cross.Deadband)
	}
	return out, nil
}

func (e *Engine) scoreFactors(in RunInput, asOf time.Time) []model.Factor {
	results := make([]factor.Result, len(e.scorers))
	var wg sync.WaitGroup
	for i, s := range e.scorers {
		wg.Add(1)
		go func(i int, s factor.Scorer) {
			defer wg.Done()
			results[i] = s.Score(in.Inputs, asOf)
		}(i, s)
	}
	wg.Wait()

	factors := make([]model.Factor, len(e.scorers))
	for i, s := range e.scorers {
		spec, res := s.Spec(), results[i]
		ttl := time.Duration(spec.TTLHours * float64(time.Hour))
		f := model.Factor{
			Key:        spec.Key,
			Pillar:     spec.Pillar,
			Weight:     spec.Weight,
			WeightPct:  e.pillarOf[spec.Pillar] * spec.Weight,
			Score:      res.Score,
			Status:     aggregate.Status(res.Score, res.LastUTC, asOf, ttl),
			LastUTC:    res.LastUTC,
			Source:     res.Source,
			Reason:     res.Reason,
			Details:    res.Details,
			SubSignals: res.SubSignals,
		}
		if f.Status == model.StatusExcluded {
			f.Reason = collectorReason(spec, in.Unavailable, f.Reason)
		}
		if f.Status == model.StatusStale {
			f.Reason = joinReason(model.ReasonStale, f.Reason)
		}
		if f.Status != model.StatusFresh {
			log.Info().Str("factor", f.Key).Str("status", string(f.Status)).Str("reason", f.Reason).Msg("factor not used")
		}
		factors[i] = f
	}
	return factors
}

// collectorReason prefers the collector's reason when a factor's inputs
// failed to fetch.
func collectorReason(spec factor.Spec, unavailable map[string]string, reason string) string {
	for _, name := range spec.Inputs() {
		if r, ok := unavailable[name]; ok {
			return joinReason(model.ReasonSourceUnavailable, r)
		}
	}
	return reason
}

func joinReason(code, detail string) string {
	if detail == "" || detail == code {
		return code
	}
	return code + ": " + detail
}
