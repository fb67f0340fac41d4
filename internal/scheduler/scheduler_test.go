package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskDial/internal/adjust"
	"RiskDial/internal/aggregate"
	"RiskDial/internal/alert"
	"RiskDial/internal/band"
	"RiskDial/internal/collector"
	"RiskDial/internal/engine"
	"RiskDial/internal/factor"
	"RiskDial/internal/metrics"
	"RiskDial/internal/model"
	"RiskDial/internal/recorder"
	"RiskDial/internal/state"
)

var pillarKeys = []string{"liquidity", "momentum", "leverage", "macro", "social"}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	pcts := []float64{35, 25, 20, 10, 10}
	cfg := engine.Config{Bands: band.Default, Alerts: alert.DefaultConfig()}
	for i, k := range pillarKeys {
		cfg.Pillars = append(cfg.Pillars, aggregate.PillarSpec{Key: k, WeightPct: pcts[i]})
		cfg.Factors = append(cfg.Factors, factor.Spec{
			Key:          k + "_score",
			Pillar:       k,
			Weight:       1,
			Kind:         factor.KindPrescored,
			TTLHours:     48,
			LookbackDays: 90,
			Signals:      []factor.SignalSpec{{Key: k, Weight: 1}},
		})
	}
	cfg.Cycle = adjust.DefaultCycle()
	cfg.Cycle.Enabled = false
	cfg.Spike = adjust.DefaultSpike()
	cfg.Spike.Enabled = false
	cfg.Alerts.ETFZeroCross = false
	e, err := engine.New(cfg)
	require.NoError(t, err)
	return e
}

type harness struct {
	runner *Runner
	mock   *collector.MockProvider
	sender *fakeSender
	state  *state.Manager
	db     *recorder.SQLiteRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	st, err := state.NewManager(filepath.Join(dir, "state.json"), band.Default)
	require.NoError(t, err)
	db, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "riskdial.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock := &collector.MockProvider{Series: map[string]model.Series{}, Errors: map[string]error{}}
	settings := collector.DefaultGuardSettings()
	settings.Retries = 0
	settings.RatePerMinute = 0
	var sources []collector.SourceSpec
	for _, k := range pillarKeys {
		sources = append(sources, collector.SourceSpec{Name: k, Provider: "mock"})
	}
	sender := &fakeSender{}
	return &harness{
		runner: &Runner{
			Collector: collector.NewCollector(settings, mock),
			Sources:   sources,
			Engine:    testEngine(t),
			State:     st,
			Recorder:  db,
			Notifier:  sender,
			Metrics:   metrics.NewRegistry(),
			Symbol:    "BTC-USD",
			Retries:   1,
		},
		mock:   mock,
		sender: sender,
		state:  st,
		db:     db,
	}
}

func (h *harness) feed(asOf time.Time, v float64) {
	for _, k := range pillarKeys {
		h.mock.Series[k] = model.Series{Key: k, Source: "mock", Points: []model.Point{{Time: asOf.Add(-time.Hour), Value: v}}}
	}
}

func TestRunDaily_PersistsAndNotifies(t *testing.T) {
	h := newHarness(t)
	day1 := time.Date(2025, 5, 19, 0, 5, 0, 0, time.UTC)
	h.feed(day1, 30)

	out, err := h.runner.RunDaily(context.Background(), day1)
	require.NoError(t, err)
	require.True(t, out.Snapshot.HasScore())
	assert.Equal(t, 30, *out.Snapshot.Score)
	assert.Equal(t, "low", out.Snapshot.Band.Key)
	assert.Empty(t, out.Alerts)

	latest := h.state.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, "2025-05-19", latest.Date)

	hist, err := h.db.ScoreHistory(10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 30, *hist[0].Score)

	assert.Len(t, h.sender.sent, 1, "daily report only")
	assert.Equal(t, 30.0, testutil.ToFloat64(h.runner.Metrics.CompositeScore))
}

func TestRunDaily_BandChangeAlertOnce(t *testing.T) {
	h := newHarness(t)
	day1 := time.Date(2025, 5, 19, 0, 5, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	h.feed(day1, 30)
	_, err := h.runner.RunDaily(context.Background(), day1)
	require.NoError(t, err)

	h.feed(day2, 90)
	out, err := h.runner.RunDaily(context.Background(), day2)
	require.NoError(t, err)
	require.Len(t, out.Alerts, 1)
	assert.Equal(t, model.AlertBandChange, out.Alerts[0].Type)
	assert.Len(t, h.sender.sent, 3, "two reports and one alert")

	// Re-running the same day sends the report again but no duplicate alert.
	out, err = h.runner.RunDaily(context.Background(), day2.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, out.Alerts)
	assert.Len(t, h.state.Alerts(), 1)
	assert.Len(t, h.sender.sent, 4)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.runner.Metrics.AlertsTotal.WithLabelValues(string(model.AlertBandChange))))
}

func TestRunDaily_SourceFailureDegrades(t *testing.T) {
	h := newHarness(t)
	day := time.Date(2025, 5, 20, 0, 5, 0, 0, time.UTC)
	h.feed(day, 60)
	h.mock.Errors["social"] = errors.New("connection refused")

	out, err := h.runner.RunDaily(context.Background(), day)
	require.NoError(t, err)
	require.True(t, out.Snapshot.HasScore())
	assert.Equal(t, 60, *out.Snapshot.Score)

	var social model.Factor
	for _, f := range out.Snapshot.Factors {
		if f.Key == "social_score" {
			social = f
		}
	}
	assert.Equal(t, model.StatusExcluded, social.Status)
	assert.Contains(t, social.Reason, "source_unavailable")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.runner.Metrics.SourceFailures.WithLabelValues("social")))
}

func TestRunDaily_CancelledContext(t *testing.T) {
	h := newHarness(t)
	day := time.Date(2025, 5, 20, 0, 5, 0, 0, time.UTC)
	h.feed(day, 60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.runner.RunDaily(ctx, day)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, h.state.Latest())
	assert.Empty(t, h.sender.sent)
}

func TestScheduler_RegisterAndRunNow(t *testing.T) {
	h := newHarness(t)
	day := time.Date(2025, 5, 21, 0, 5, 0, 0, time.UTC)
	h.feed(day, 45)

	s := NewScheduler(context.Background(), h.runner)
	s.Now = func() time.Time { return day }
	require.Error(t, s.Register("not a cron"))
	require.NoError(t, s.Register("0 5 0 * * *"))
	assert.Len(t, s.Cron.Entries(), 1)

	s.RunNow()
	latest := h.state.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, "2025-05-21", latest.Date)
	assert.Equal(t, 45, *latest.Score)
}
