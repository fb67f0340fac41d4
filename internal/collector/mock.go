package collector

import (
	"context"
	"math"
	"time"

	"RiskDial/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Sources without a fixture get a generated series around Base.
type MockProvider struct {
	Base   float64
	Series map[string]model.Series
	Errors map[string]error
	Now    func() time.Time
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchSeries(ctx context.Context, spec SourceSpec) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	if err, ok := m.Errors[spec.Name]; ok {
		return model.Series{}, err
	}
	if s, ok := m.Series[spec.Name]; ok {
		return s, nil
	}
	now := time.Now().UTC()
	if m.Now != nil {
		now = m.Now()
	}
	days := spec.Days
	if days <= 0 {
		days = 365
	}
	if spec.Field == FieldSpot {
		days = 1
	}
	return generateMockSeries(spec.Name, m.Base, days, now), nil
}

func generateMockSeries(key string, base float64, count int, now time.Time) model.Series {
	s := model.Series{Key: key, Source: "mock", Points: make([]model.Point, count)}
	for i := 0; i < count; i++ {
		v := base * (1 + float64(i-count/2)*0.001 + 0.02*math.Sin(float64(i)/7))
		s.Points[i] = model.Point{Time: now.AddDate(0, 0, -(count - 1 - i)), Value: v}
	}
	return s
}
