package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinsorize_ClipsTails(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	got := Winsorize(values, 10, 85)
	require.Len(t, got, len(values))
	assert.Equal(t, 9.0, got[9], "outlier should be clipped to upper bound")
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 100.0, values[9], "input must not be mutated")
}

func TestWinsorize_Idempotent(t *testing.T) {
	samples := [][]float64{
		{5, -3, 12, 0.5, 99, -40, 7, 7, 7, 2},
		{1, 1, 1, 1},
		{3.3},
		{-1e6, 0, 1e6, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	}
	pcts := [][2]float64{{5, 95}, {1, 99}, {25, 75}, {0, 100}, {50, 50}}
	for _, v := range samples {
		for _, p := range pcts {
			once := Winsorize(v, p[0], p[1])
			twice := Winsorize(once, p[0], p[1])
			assert.Equal(t, once, twice, "values=%v pct=%v", v, p)
		}
	}
}

func TestWinsorize_NoOpCases(t *testing.T) {
	assert.Empty(t, Winsorize(nil, 5, 95))

	withNaN := []float64{1, math.NaN(), 100}
	got := Winsorize(withNaN, 5, 95)
	assert.Equal(t, 1.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 100.0, got[2])

	assert.Equal(t, []float64{1, 50, 100}, Winsorize([]float64{1, 50, 100}, 90, 10))
}

func TestPercentileRank(t *testing.T) {
	series := []float64{1, 2, 3, 4}
	assert.InDelta(t, 0.0, PercentileRank(series, 0), 1e-12)
	assert.InDelta(t, 0.125, PercentileRank(series, 1), 1e-12)
	assert.InDelta(t, 0.5, PercentileRank(series, 2.5), 1e-12)
	assert.InDelta(t, 1.0, PercentileRank(series, 10), 1e-12)

	assert.True(t, math.IsNaN(PercentileRank(nil, 1)))
	assert.True(t, math.IsNaN(PercentileRank(series, math.Inf(1))))
}

func TestPercentileRank_Monotonic(t *testing.T) {
	series := []float64{3, -1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	prev := -1.0
	for x := -3.0; x <= 11; x += 0.25 {
		p := PercentileRank(series, x)
		assert.GreaterOrEqual(t, p, prev, "x=%v", x)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		prev = p
	}
}

func TestZScore(t *testing.T) {
	assert.Equal(t, 0.0, ZScore(5, []float64{2, 2, 2}))
	assert.Equal(t, 0.0, ZScore(5, nil))
	assert.InDelta(t, 1.0, ZScore(3, []float64{1, 3}), 1e-12)
}

func TestLogistic01(t *testing.T) {
	assert.InDelta(t, 0.5, Logistic01(0.5, DefaultLogisticK, DefaultLogisticMid), 1e-12)
	lo := Logistic01(0, DefaultLogisticK, DefaultLogisticMid)
	hi := Logistic01(1, DefaultLogisticK, DefaultLogisticMid)
	assert.InDelta(t, 1.0, lo+hi, 1e-12, "curve is symmetric around x0")
	assert.Less(t, lo, hi)
	assert.Greater(t, lo, 0.0)
	assert.Less(t, hi, 1.0)
}

func TestStdDevAndMean(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{4}))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), StdDev([]float64{1, 2, 3, 4}), 1e-12)
}
