package metrics

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"RiskDial/internal/model"
)

var statuses = []model.FactorStatus{model.StatusFresh, model.StatusStale, model.StatusExcluded}

// Registry holds the RiskDial Prometheus metrics on a private registry.
type Registry struct {
	reg *prometheus.Registry

	CompositeScore   prometheus.Gauge
	FactorScore      *prometheus.GaugeVec
	FactorStatus     *prometheus.GaugeVec
	AdjustmentPoints *prometheus.GaugeVec
	AlertsTotal      *prometheus.CounterVec
	SourceFailures   *prometheus.CounterVec
	RunDuration      prometheus.Histogram
}

// NewRegistry creates and registers every metric.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		CompositeScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskdial_composite_score",
			Help: "Latest composite risk score (0-100); NaN when undefined",
		}),
		FactorScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskdial_factor_score",
			Help: "Latest factor score (0-100); NaN when unavailable",
		}, []string{"factor"}),
		FactorStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskdial_factor_status",
			Help: "1 for the factor's current status, 0 for the others",
		}, []string{"factor", "status"}),
		AdjustmentPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskdial_adjustment_points",
			Help: "Points added by each adjustment engine",
		}, []string{"kind"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskdial_alerts_total",
			Help: "Alerts appended to the log by type",
		}, []string{"type"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskdial_source_failures_total",
			Help: "Sources that could not be fetched",
		}, []string{"source"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskdial_run_duration_seconds",
			Help:    "Duration of a daily run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
	r.reg.MustRegister(
		r.CompositeScore, r.FactorScore, r.FactorStatus, r.AdjustmentPoints,
		r.AlertsTotal, r.SourceFailures, r.RunDuration,
		collectors.NewGoCollector(),
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveSnapshot records a run's scores, statuses and adjustments.
func (r *Registry) ObserveSnapshot(snap *model.CompositeSnapshot) {
	if snap.HasScore() {
		r.CompositeScore.Set(float64(*snap.Score))
	} else {
		r.CompositeScore.Set(math.NaN())
	}
	for _, f := range snap.Factors {
		if f.Score != nil {
			r.FactorScore.WithLabelValues(f.Key).Set(float64(*f.Score))
		} else {
			r.FactorScore.WithLabelValues(f.Key).Set(math.NaN())
		}
		for _, st := range statuses {
			v := 0.0
			if f.Status == st {
				v = 1
			}
			r.FactorStatus.WithLabelValues(f.Key, string(st)).Set(v)
		}
	}
	r.AdjustmentPoints.WithLabelValues(string(model.AdjustCycle)).Set(snap.Adjustments.Cycle.Points)
	r.AdjustmentPoints.WithLabelValues(string(model.AdjustSpike)).Set(snap.Adjustments.Spike.Points)
}

// ObserveAlerts counts appended alerts.
func (r *Registry) ObserveAlerts(alerts []model.AlertLogEntry) {
	for _, a := range alerts {
		r.AlertsTotal.WithLabelValues(string(a.Type)).Inc()
	}
}

// ObserveUnavailable counts failed sources.
func (r *Registry) ObserveUnavailable(unavailable map[string]string) {
	for name := range unavailable {
		r.SourceFailures.WithLabelValues(name).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
