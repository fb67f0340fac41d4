package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"RiskDial/internal/collector"
	"RiskDial/internal/engine"
	"RiskDial/internal/metrics"
	"RiskDial/internal/model"
	"RiskDial/internal/notifier"
	"RiskDial/internal/recorder"
	"RiskDial/internal/state"
)

// Sender delivers a message, retrying transient failures.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Runner executes one daily batch: collect, score, persist, notify.
type Runner struct {
	Collector *collector.Collector
	Sources   []collector.SourceSpec
	Engine    *engine.Engine
	State     *state.Manager
	Recorder  recorder.Recorder
	Notifier  Sender            // optional
	Metrics   *metrics.Registry // optional
	Symbol    string
	Retries   int
}

// RunDaily runs the pipeline for asOf. Source failures degrade factors; only
// cancellation and state-file errors fail the run.
func (r *Runner) RunDaily(ctx context.Context, asOf time.Time) (*engine.RunOutput, error) {
	start := time.Now()
	date := model.UTCDate(asOf)
	logger := log.With().Str("date", date).Logger()
	logger.Info().Msg("daily run started")

	res := r.Collector.Collect(ctx, r.Sources)
	if r.Metrics != nil {
		r.Metrics.ObserveUnavailable(res.Unavailable)
	}

	out, err := r.Engine.Run(ctx, engine.RunInput{
		AsOf:        asOf,
		Inputs:      res.Inputs,
		Unavailable: res.Unavailable,
		Prior:       r.State.PriorTo(date),
		Log:         r.State.Alerts(),
	})
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", date, err)
	}

	appended, err := r.State.Commit(out.Snapshot, out.Alerts, out.History)
	if err != nil {
		return nil, fmt.Errorf("commit state for %s: %w", date, err)
	}
	out.Alerts = appended

	if err := r.Recorder.RecordSnapshot(out.Snapshot); err != nil {
		logger.Error().Err(err).Msg("record snapshot")
	}
	if _, err := r.Recorder.RecordAlerts(appended); err != nil {
		logger.Error().Err(err).Msg("record alerts")
	}
	if r.Metrics != nil {
		r.Metrics.ObserveSnapshot(out.Snapshot)
		r.Metrics.ObserveAlerts(appended)
		r.Metrics.RunDuration.Observe(time.Since(start).Seconds())
	}

	r.notify(ctx, notifier.FormatDailyReport(out.Snapshot, r.Symbol))
	for _, a := range appended {
		r.notify(ctx, notifier.FormatAlert(a))
	}

	ev := logger.Info().Int("alerts", len(appended)).Int("unavailable", len(res.Unavailable)).Dur("took", time.Since(start))
	if out.Snapshot.HasScore() {
		ev = ev.Int("score", *out.Snapshot.Score).Str("band", out.Snapshot.Band.Key)
	}
	ev.Msg("daily run finished")
	return out, nil
}

func (r *Runner) notify(ctx context.Context, text string) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.SendWithRetry(ctx, text, r.Retries); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
