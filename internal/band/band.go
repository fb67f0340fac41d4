package band

import (
	"math"

	"RiskDial/internal/model"
)

// Table is an ordered list of contiguous, non-overlapping inclusive ranges
// covering [0,100]. It is the single source of truth for score → band.
type Table []model.Band

// Default is the six-band table shipped with the default configuration.
var Default = Table{
	{Key: "minimal", Label: "Minimal risk", Lo: 0, Hi: 19, Color: "#1a9850", Recommendation: "Accumulate steadily"},
	{Key: "low", Label: "Low risk", Lo: 20, Hi: 39, Color: "#91cf60", Recommendation: "Accumulate"},
	{Key: "neutral", Label: "Neutral", Lo: 40, Hi: 54, Color: "#d9ef8b", Recommendation: "Hold, keep regular buys"},
	{Key: "elevated", Label: "Elevated risk", Lo: 55, Hi: 69, Color: "#fee08b", Recommendation: "Slow buys, tighten risk"},
	{Key: "high", Label: "High risk", Lo: 70, Hi: 84, Color: "#fc8d59", Recommendation: "Take partial profits"},
	{Key: "extreme", Label: "Extreme risk", Lo: 85, Hi: 100, Color: "#d73027", Recommendation: "De-risk aggressively"},
}

// Validate checks that the table is non-empty, starts at 0, ends at 100 and
// that every range abuts the previous one.
func (t Table) Validate() error {
	cerr := &model.ConfigError{}
	if len(t) == 0 {
		cerr.Add("band table is empty")
		return cerr
	}
	seen := make(map[string]bool, len(t))
	for i, b := range t {
		if b.Key == "" {
			cerr.Add("band %d has empty key", i)
		}
		if seen[b.Key] {
			cerr.Add("duplicate band key %q", b.Key)
		}
		seen[b.Key] = true
		if b.Lo > b.Hi {
			cerr.Add("band %q: lo %d > hi %d", b.Key, b.Lo, b.Hi)
		}
		if i > 0 && b.Lo != t[i-1].Hi+1 {
			cerr.Add("band %q starts at %d, expected %d", b.Key, b.Lo, t[i-1].Hi+1)
		}
	}
	if t[0].Lo != 0 {
		cerr.Add("band table starts at %d, expected 0", t[0].Lo)
	}
	if t[len(t)-1].Hi != 100 {
		cerr.Add("band table ends at %d, expected 100", t[len(t)-1].Hi)
	}
	return cerr.Err()
}

// Classify returns the first band whose range contains score. Scores above
// every range fall back to the last band, below every range to the first.
func (t Table) Classify(score int) model.Band {
	for _, b := range t {
		if score >= b.Lo && score <= b.Hi {
			return b
		}
	}
	if len(t) == 0 {
		return model.Band{}
	}
	if score < t[0].Lo {
		return t[0]
	}
	return t[len(t)-1]
}

// ClassifyFloat rounds score to the nearest integer before classifying.
func (t Table) ClassifyFloat(score float64) model.Band {
	return t.Classify(int(math.Round(score)))
}

// Rederive recomputes a snapshot's band from its score. A persisted band is
// only a cache; the score is authoritative.
func (t Table) Rederive(snap *model.CompositeSnapshot) {
	if snap == nil {
		return
	}
	if snap.Score == nil {
		snap.Band = nil
		return
	}
	b := t.Classify(*snap.Score)
	snap.Band = &b
}
