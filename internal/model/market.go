package model

import (
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Point is one timestamped observation of a raw input.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series holds a raw input series in chronological order.
type Series struct {
	Key    string  `json:"key"`
	Source string  `json:"source"`
	Points []Point `json:"points"`
}

// CloseSeries converts bars into a close-price series.
func CloseSeries(key, source string, bars []OHLCV) Series {
	s := Series{Key: key, Source: source, Points: make([]Point, 0, len(bars))}
	for _, b := range bars {
		s.Points = append(s.Points, Point{Time: b.Time, Value: b.Close})
	}
	return s
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Points) }

// Values returns the raw values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Last returns the most recent point.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Window returns the points with from < Time <= to.
func (s Series) Window(from, to time.Time) Series {
	out := Series{Key: s.Key, Source: s.Source}
	for _, p := range s.Points {
		if p.Time.After(from) && !p.Time.After(to) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// Sorted returns a copy ordered by time.
func (s Series) Sorted() Series {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	return Series{Key: s.Key, Source: s.Source, Points: pts}
}
