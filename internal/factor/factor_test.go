package factor

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskDial/internal/model"
)

var asOf = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

// dailySeries builds n daily points ending at asOf with values from fn.
func dailySeries(key string, n int, fn func(i int) float64) model.Series {
	s := model.Series{Key: key, Source: "test"}
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, model.Point{
			Time:  asOf.AddDate(0, 0, -(n - 1 - i)),
			Value: fn(i),
		})
	}
	return s
}

func levelSpec(invert bool) Spec {
	return Spec{
		Key:          "funding",
		Pillar:       "leverage",
		Weight:       1,
		TTLHours:     36,
		LookbackDays: 365,
		Signals:      []SignalSpec{{Key: "funding", Weight: 1, Invert: invert}},
	}
}

func TestBlend_HighestValueIsRiskiest(t *testing.T) {
	rising := dailySeries("funding", 200, func(i int) float64 { return float64(i) })

	sc, err := Build(levelSpec(false))
	require.NoError(t, err)
	res := sc.Score(Inputs{"funding": rising}, asOf)
	require.NotNil(t, res.Score)
	assert.Greater(t, *res.Score, 75)
	assert.LessOrEqual(t, *res.Score, 100)
	assert.Equal(t, asOf, res.LastUTC)
	assert.Equal(t, "test", res.Source)

	inv, err := Build(levelSpec(true))
	require.NoError(t, err)
	invRes := inv.Score(Inputs{"funding": rising}, asOf)
	require.NotNil(t, invRes.Score)
	assert.Less(t, *invRes.Score, 25)
}

func TestBlend_InsufficientSamplesExcludes(t *testing.T) {
	short := dailySeries("funding", 10, func(i int) float64 { return float64(i) })
	sc, err := Build(levelSpec(false))
	require.NoError(t, err)

	res := sc.Score(Inputs{"funding": short}, asOf)
	assert.Nil(t, res.Score)
	assert.Equal(t, model.ReasonInsufficientData, res.Reason)
	require.Len(t, res.SubSignals, 1)
	assert.Nil(t, res.SubSignals[0].Score)
}

func TestBlend_MissingInputIsSourceUnavailable(t *testing.T) {
	sc, err := Build(levelSpec(false))
	require.NoError(t, err)
	res := sc.Score(Inputs{}, asOf)
	assert.Nil(t, res.Score)
	assert.Equal(t, model.ReasonSourceUnavailable, res.Reason)
}

func TestBlend_RedistributesMissingSubSignal(t *testing.T) {
	spec := Spec{
		Key:          "derivatives",
		Pillar:       "leverage",
		Weight:       1,
		TTLHours:     36,
		LookbackDays: 365,
		Signals: []SignalSpec{
			{Key: "funding", Weight: 0.5},
			{Key: "open_interest", Weight: 0.5, Transform: TransformChange, Period: 30},
		},
	}
	sc, err := Build(spec)
	require.NoError(t, err)

	older := asOf.AddDate(0, 0, -2)
	funding := dailySeries("funding", 200, func(i int) float64 { return float64(i) })
	funding.Points = funding.Points[:len(funding.Points)-2]
	require.Equal(t, older, funding.Points[len(funding.Points)-1].Time)

	res := sc.Score(Inputs{"funding": funding}, asOf)
	require.NotNil(t, res.Score)
	assert.Equal(t, older, res.LastUTC)
	assert.InDelta(t, 1.0, res.SubSignals[0].EffectiveWeight, 1e-12)
	assert.Zero(t, res.SubSignals[1].EffectiveWeight)
	assert.Equal(t, model.ReasonSourceUnavailable, res.SubSignals[1].Reason)

	// Both present: timestamp is the least recent of the two.
	oi := dailySeries("open_interest", 200, func(i int) float64 { return 100 + float64(i%17) })
	both := sc.Score(Inputs{"funding": funding, "open_interest": oi}, asOf)
	require.NotNil(t, both.Score)
	assert.Equal(t, older, both.LastUTC)
	assert.InDelta(t, 0.5, both.SubSignals[0].EffectiveWeight, 1e-12)
}

func TestBlend_TrendTransforms(t *testing.T) {
	spec := Spec{
		Key:          "trend",
		Pillar:       "momentum",
		Weight:       1,
		TTLHours:     36,
		LookbackDays: 730,
		Signals: []SignalSpec{
			{Key: "ma_dev", Input: "price", Weight: 0.4, Transform: TransformMADeviation, Period: 200},
			{Key: "rsi", Input: "price", Weight: 0.3, Transform: TransformRSI, Period: 14},
			{Key: "range", Input: "price", Weight: 0.3, Transform: TransformRangePosition, Period: 365},
		},
	}
	sc, err := Build(spec)
	require.NoError(t, err)
	// Range-bound for most of the history, then a sharp rally into asOf.
	price := dailySeries("price", 900, func(i int) float64 {
		v := 1000 + 50*math.Sin(float64(i)/10)
		if i >= 850 {
			v += 20 * float64(i-849)
		}
		return v
	})
	res := sc.Score(Inputs{"price": price}, asOf)
	require.NotNil(t, res.Score, "details: %v", res.Details)
	assert.Greater(t, *res.Score, 50, "a parabolic rally should read as elevated risk")
	assert.Len(t, res.Details, 3)
}

func TestPrescored(t *testing.T) {
	spec := Spec{
		Key:          "sentiment",
		Pillar:       "social",
		Kind:         KindPrescored,
		Weight:       1,
		TTLHours:     48,
		LookbackDays: 90,
		Signals:      []SignalSpec{{Key: "fear_greed", Weight: 1}},
	}
	sc, err := Build(spec)
	require.NoError(t, err)

	fg := dailySeries("fear_greed", 5, func(i int) float64 { return 70 + float64(i) })
	res := sc.Score(Inputs{"fear_greed": fg}, asOf)
	require.NotNil(t, res.Score)
	assert.Equal(t, 74, *res.Score)

	over := dailySeries("fear_greed", 1, func(int) float64 { return 140 })
	res = sc.Score(Inputs{"fear_greed": over}, asOf)
	require.NotNil(t, res.Score)
	assert.Equal(t, 100, *res.Score)
}

func TestBuild_RejectsBadSubWeights(t *testing.T) {
	spec := levelSpec(false)
	spec.Signals = []SignalSpec{{Key: "a", Weight: 0.6}, {Key: "b", Weight: 0.6}}
	_, err := Build(spec)
	var cerr *model.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), "sub-weights")
}

func TestBuild_RejectsLookbackAndTransform(t *testing.T) {
	spec := levelSpec(false)
	spec.LookbackDays = 30
	spec.Signals = []SignalSpec{{Key: "a", Weight: 1, Transform: "median"}}
	_, err := Build(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookback_days")
	assert.Contains(t, err.Error(), "unknown transform")
}
