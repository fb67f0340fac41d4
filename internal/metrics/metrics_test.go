package metrics

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskDial/internal/model"
)

func TestObserveSnapshot(t *testing.T) {
	r := NewRegistry()
	r.ObserveSnapshot(&model.CompositeSnapshot{
		Score: model.IntPtr(64),
		Factors: []model.Factor{
			{Key: "trend", Score: model.IntPtr(70), Status: model.StatusFresh},
			{Key: "macro", Status: model.StatusExcluded},
		},
		Adjustments: model.Adjustments{Cycle: model.Adjustment{Points: -1.2}},
	})

	assert.Equal(t, 64.0, testutil.ToFloat64(r.CompositeScore))
	assert.Equal(t, 70.0, testutil.ToFloat64(r.FactorScore.WithLabelValues("trend")))
	assert.True(t, math.IsNaN(testutil.ToFloat64(r.FactorScore.WithLabelValues("macro"))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FactorStatus.WithLabelValues("macro", "excluded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.FactorStatus.WithLabelValues("macro", "fresh")))
	assert.Equal(t, -1.2, testutil.ToFloat64(r.AdjustmentPoints.WithLabelValues("cycle")))

	r.ObserveSnapshot(&model.CompositeSnapshot{})
	assert.True(t, math.IsNaN(testutil.ToFloat64(r.CompositeScore)))
}

func TestObserveAlertsAndHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveAlerts([]model.AlertLogEntry{{Type: model.AlertBandChange}, {Type: model.AlertBandChange}})
	r.ObserveUnavailable(map[string]string{"dxy": "timeout"})
	assert.Equal(t, 2.0, testutil.ToFloat64(r.AlertsTotal.WithLabelValues("band_change")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `riskdial_alerts_total{type="band_change"} 2`))
	assert.True(t, strings.Contains(body, `riskdial_source_failures_total{source="dxy"} 1`))
}
