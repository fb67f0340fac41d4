package alert

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"RiskDial/internal/band"
	"RiskDial/internal/model"
)

var idNamespace = uuid.MustParse("5b0c7d5e-3f59-4a8e-9a7e-2f1d8c6b4a10")

// Input is everything the detector compares for one day.
type Input struct {
	AsOf  time.Time
	Today *model.CompositeSnapshot
	// Prior is the latest snapshot from an earlier date, nil on first run.
	Prior *model.CompositeSnapshot
	Flows model.Series
	Log   []model.AlertLogEntry
}

// Outcome is the detector result: new entries to append and per-type states.
type Outcome struct {
	Alerts []model.AlertLogEntry
	States map[model.AlertType]model.AlertState
	Cross  *Cross
}

// Detector emits at most one alert per (date, type).
type Detector struct {
	cfg   Config
	bands band.Table
}

// NewDetector creates a detector that re-derives prior bands from bands.
func NewDetector(cfg Config, bands band.Table) *Detector {
	return &Detector{cfg: cfg, bands: bands}
}

// Detect runs both alert types. It never mutates in.Log or in.Prior.
func (d *Detector) Detect(in Input) Outcome {
	date := model.UTCDate(in.AsOf)
	out := Outcome{States: make(map[model.AlertType]model.AlertState)}

	logged := make(map[model.AlertType]bool)
	for _, e := range in.Log {
		if e.Date == date {
			logged[e.Type] = true
		}
	}

	if d.cfg.BandChange {
		state, details := d.bandChange(in)
		out.record(date, model.AlertBandChange, in.AsOf, state, details, logged)
	}
	if d.cfg.ETFZeroCross {
		state, details, cross := d.zeroCross(in)
		out.Cross = cross
		out.record(date, model.AlertETFZeroCross, in.AsOf, state, details, logged)
	}
	return out
}

func (o *Outcome) record(date string, typ model.AlertType, at time.Time, state model.AlertState, details map[string]string, logged map[model.AlertType]bool) {
	if logged[typ] {
		o.States[typ] = model.StateFiredToday
		return
	}
	o.States[typ] = state
	if state != model.StateFiredToday {
		return
	}
	o.Alerts = append(o.Alerts, model.AlertLogEntry{
		ID:         EntryID(date, typ),
		OccurredAt: at.UTC(),
		Date:       date,
		Type:       typ,
		Details:    details,
	})
}

// EntryID is stable for a (date, type) pair.
func EntryID(date string, typ model.AlertType) string {
	return uuid.NewSHA1(idNamespace, []byte(date+"/"+string(typ))).String()
}

func (d *Detector) bandChange(in Input) (model.AlertState, map[string]string) {
	if in.Prior == nil || !in.Prior.HasScore() {
		return model.StateNoPrior, nil
	}
	prior := *in.Prior
	d.bands.Rederive(&prior)
	if !in.Today.HasScore() {
		return model.StateWatching, nil
	}
	today := *in.Today
	d.bands.Rederive(&today)
	if prior.Band.Key == today.Band.Key {
		return model.StateWatching, nil
	}
	return model.StateFiredToday, map[string]string{
		"from":        prior.Band.Key,
		"to":          today.Band.Key,
		"prior_score": strconv.Itoa(*prior.Score),
		"score":       strconv.Itoa(*today.Score),
		"prior_date":  prior.Date,
	}
}

func (d *Detector) zeroCross(in Input) (model.AlertState, map[string]string, *Cross) {
	flows := in.Flows.Sorted().Window(time.Time{}, in.AsOf)
	points := RollingFlowSums(flows, d.cfg.Window)
	if len(points) < 2 {
		return model.StateNoPrior, nil, nil
	}
	sums := make([]float64, len(points))
	for i, p := range points {
		sums[i] = p.Value
	}
	deadband := Deadband(sums, d.cfg.DeadbandLookback, d.cfg.DeadbandMultiplier, d.cfg.DeadbandFloor)
	cross, _ := EvaluateCross(sums, deadband)
	if cross.PriorSign == 0 {
		return model.StateNoPrior, nil, &cross
	}
	if !cross.Fire {
		return model.StateWatching, nil, &cross
	}
	// Without a new flow point the latest sum is the one an earlier run
	// already alerted on.
	flowDate := model.UTCDate(points[len(points)-1].Time)
	if crossAlerted(in.Log, model.UTCDate(in.AsOf), flowDate) {
		cross.Fire = false
		cross.Direction = ""
		return model.StateWatching, nil, &cross
	}
	return model.StateFiredToday, map[string]string{
		"flow_date": flowDate,
		"direction": cross.Direction,
		"sum":       fmt.Sprintf("%.0f", cross.Sum),
		"deadband":  fmt.Sprintf("%.0f", cross.Deadband),
		"window":    strconv.Itoa(d.cfg.Window),
	}, &cross
}

// crossAlerted reports whether a run on another date already alerted on the
// flow sum dated flowDate.
func crossAlerted(log []model.AlertLogEntry, date, flowDate string) bool {
	for _, e := range log {
		if e.Type == model.AlertETFZeroCross && e.Date != date && e.Details["flow_date"] == flowDate {
			return true
		}
	}
	return false
}
