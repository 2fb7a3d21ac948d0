package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByFeature(t *testing.T) {
	entries := Normalize([]RawAttribution{
		{Feature: "wbc", Value: 0.02},
		{Feature: "glucose", Value: 0.10},
		{Feature: "wbc", Value: -0.06},
		{Feature: "glucose", Value: 0.04},
		{Feature: "plt", Value: -0.01},
	})

	clusters := GroupByFeature(entries)
	require.Len(t, clusters, 3)

	// ordered by mean |value|: glucose 0.07, wbc 0.04, plt 0.01
	assert.Equal(t, "glucose", clusters[0].Feature)
	assert.Equal(t, "wbc", clusters[1].Feature)
	assert.Equal(t, "plt", clusters[2].Feature)
	assert.InDelta(t, 0.07, clusters[0].MeanAbsoluteContribution, tolerance)
	assert.InDelta(t, 0.04, clusters[1].MeanAbsoluteContribution, tolerance)

	// points inside a cluster are risk-increasing first
	require.Len(t, clusters[1].Points, 2)
	assert.InDelta(t, 0.02, clusters[1].Points[0].Value, tolerance)
	assert.InDelta(t, -0.06, clusters[1].Points[1].Value, tolerance)
}

func TestGroupByFeaturePartitionsAllEntries(t *testing.T) {
	// well past the display cap; clustering must still cover everything
	raw := make([]RawAttribution, 0, 20)
	for i := 0; i < 20; i++ {
		raw = append(raw, RawAttribution{
			Feature: string(rune('a' + i%5)),
			Value:   float64(i) * 0.01,
		})
	}
	entries := Normalize(raw)
	clusters := GroupByFeature(entries)

	total := 0
	for _, c := range clusters {
		total += len(c.Points)
	}
	assert.Equal(t, len(entries), total)
}

func TestGroupByFeatureEmpty(t *testing.T) {
	assert.Empty(t, GroupByFeature(nil))
}

func TestImpactSignConsistency(t *testing.T) {
	raw := []RawAttribution{
		{Value: 0.5}, {Value: -0.5}, {Value: 0.0}, {Value: 1e-12}, {Value: -1e-12},
	}
	for _, e := range Normalize(raw) {
		if e.Value >= 0 {
			assert.Equal(t, ImpactPositive, e.Impact)
		} else {
			assert.Equal(t, ImpactNegative, e.Impact)
		}
	}
}
