package calculator

import (
	"errors"
	"time"

	"RiskDial/internal/model"
)

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	return Clamp((current-low)/(high-low), 0, 1), nil
}

// RangePositionSeries returns the position of each value within the high/low
// of its trailing window (inclusive), from index window-1 onward.
func RangePositionSeries(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}
	out := make([]float64, 0, len(values)-window+1)
	for i := window - 1; i < len(values); i++ {
		high, low := values[i], values[i]
		for j := i - window + 1; j <= i; j++ {
			if values[j] > high {
				high = values[j]
			}
			if values[j] < low {
				low = values[j]
			}
		}
		pos, _ := RangePosition(values[i], high, low)
		out = append(out, pos)
	}
	return out
}

// AggregateDailyToWeekly resamples a daily series to one point per ISO week,
// keeping the last observation of each week.
func AggregateDailyToWeekly(daily []model.Point) []model.Point {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.Point
	week := daily[0]
	for _, d := range daily[1:] {
		if weekKey(d.Time) != weekKey(week.Time) {
			weekly = append(weekly, week)
		}
		week = d
	}
	return append(weekly, week)
}

func weekKey(t time.Time) int {
	y, w := t.UTC().ISOWeek()
	return y*100 + w
}
