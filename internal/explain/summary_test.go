package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeWorkedExample(t *testing.T) {
	ranked := Rank(Normalize([]RawAttribution{
		{Feature: "glucose", Value: 0.08},
		{Feature: "wbc", Value: -0.03},
		{Feature: "plt", Value: 0.05},
	}))
	w := BuildWaterfall(ranked, 0.40)
	s := Summarize(ranked, w)
	require.NotNil(t, s)

	assert.Equal(t, "glucose", s.TopPositive.Feature)
	assert.Equal(t, "wbc", s.TopNegative.Feature)
	assert.Equal(t, 2, s.PositiveCount)
	assert.Equal(t, 1, s.NegativeCount)
	assert.InDelta(t, 0.10, s.Delta, tolerance)
	require.Len(t, s.TopThree, 3)
	assert.Equal(t, "glucose", s.TopThree[0].Feature)
	assert.Equal(t, "plt", s.TopThree[1].Feature)
	assert.Equal(t, "wbc", s.TopThree[2].Feature)
}

func TestSummarizeNilWaterfall(t *testing.T) {
	assert.Nil(t, Summarize(nil, nil))
}

func TestSummarizeOneSidedInput(t *testing.T) {
	tests := []struct {
		name         string
		values       []float64
		wantPositive bool
		wantNegative bool
	}{
		{"only risk-increasing", []float64{0.2, 0.1}, true, false},
		{"only risk-decreasing", []float64{-0.2, -0.1}, false, true},
		{"only zeros", []float64{0, 0}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]RawAttribution, len(tt.values))
			for i, v := range tt.values {
				raw[i] = RawAttribution{Value: v}
			}
			ranked := Rank(Normalize(raw))
			s := Summarize(ranked, BuildWaterfall(ranked, 0.5))
			require.NotNil(t, s)

			if tt.wantPositive {
				assert.NotNil(t, s.TopPositive)
			} else {
				assert.Nil(t, s.TopPositive)
			}
			if tt.wantNegative {
				assert.NotNil(t, s.TopNegative)
			} else {
				assert.Nil(t, s.TopNegative)
			}
		})
	}
}

func TestSummarizeDeltaMatchesFullEntrySum(t *testing.T) {
	// more entries than the display cap: delta still covers all of them
	raw := make([]RawAttribution, 0, 12)
	sum := 0.0
	for i := 0; i < 12; i++ {
		v := float64(i+1) * 0.01
		if i%2 == 1 {
			v = -v
		}
		raw = append(raw, RawAttribution{Value: v})
		sum += v
	}
	entries := Normalize(raw)
	ranked := Rank(entries)
	w := BuildWaterfall(ranked, 0.3)
	s := Summarize(ranked, w)
	require.NotNil(t, s)
	assert.InDelta(t, sum, s.Delta, tolerance)
}

func TestDecompose(t *testing.T) {
	raw := []RawAttribution{
		{Feature: "glucose", Value: 0.08},
		{Feature: "wbc", Value: -0.03},
		{Feature: "plt", Value: 0.05},
	}
	d := Decompose(raw, fptr(0.40), nil)

	require.NotNil(t, d.Waterfall)
	require.NotNil(t, d.Summary)
	assert.InDelta(t, 0.40, d.Baseline, tolerance)
	assert.InDelta(t, 0.50, d.Waterfall.FinalValue, tolerance)
	assert.Len(t, d.Clusters, 3)
	assert.Len(t, d.Top(), 3)

	// empty input degrades to an absent decomposition, not a zero chart
	empty := Decompose(nil, fptr(0.40), nil)
	assert.Empty(t, empty.Entries)
	assert.Nil(t, empty.Waterfall)
	assert.Nil(t, empty.Summary)
	assert.Empty(t, empty.Clusters)
}
