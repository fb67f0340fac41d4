package band

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskDial/internal/model"
)

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default.Validate())
}

func TestClassify_FullCoverage(t *testing.T) {
	for s := 0; s <= 100; s++ {
		matches := 0
		for _, b := range Default {
			if s >= b.Lo && s <= b.Hi {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "score %d", s)

		b := Default.Classify(s)
		assert.GreaterOrEqual(t, s, b.Lo)
		assert.LessOrEqual(t, s, b.Hi)
	}
}

func TestClassify_Edges(t *testing.T) {
	tests := []struct {
		score int
		key   string
	}{
		{0, "minimal"},
		{19, "minimal"},
		{20, "low"},
		{54, "neutral"},
		{55, "elevated"},
		{62, "elevated"},
		{85, "extreme"},
		{100, "extreme"},
		{101, "extreme"},
		{-3, "minimal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, Default.Classify(tt.score).Key, "score %d", tt.score)
	}
	assert.Equal(t, "extreme", Default.ClassifyFloat(99.6).Key)
	assert.Equal(t, "low", Default.ClassifyFloat(19.5).Key)
}

func TestValidate_Violations(t *testing.T) {
	tests := map[string]Table{
		"empty":   {},
		"gap":     {{Key: "a", Lo: 0, Hi: 40}, {Key: "b", Lo: 42, Hi: 100}},
		"overlap": {{Key: "a", Lo: 0, Hi: 50}, {Key: "b", Lo: 50, Hi: 100}},
		"short":   {{Key: "a", Lo: 0, Hi: 50}, {Key: "b", Lo: 51, Hi: 99}},
		"offset":  {{Key: "a", Lo: 1, Hi: 100}},
		"dup":     {{Key: "a", Lo: 0, Hi: 50}, {Key: "a", Lo: 51, Hi: 100}},
	}
	for name, table := range tests {
		t.Run(name, func(t *testing.T) {
			err := table.Validate()
			var cerr *model.ConfigError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestRederive_IgnoresPersistedBand(t *testing.T) {
	stale := model.Band{Key: "low"}
	snap := &model.CompositeSnapshot{Score: model.IntPtr(90), Band: &stale}
	Default.Rederive(snap)
	require.NotNil(t, snap.Band)
	assert.Equal(t, "extreme", snap.Band.Key)

	empty := &model.CompositeSnapshot{Band: &stale}
	Default.Rederive(empty)
	assert.Nil(t, empty.Band)
}
