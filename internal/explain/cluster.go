package explain

import (
	"math"
	"sort"
)

// GroupByFeature partitions every entry (not just the display-capped set)
// into clusters keyed by feature identity. Points inside a cluster are
// sorted risk-increasing first; clusters are ordered by mean absolute
// contribution, which serves only as a sort key. Independent of the
// waterfall, so it may be computed in parallel with it.
func GroupByFeature(entries []AttributionEntry) []FeatureCluster {
	index := make(map[string]int, len(entries))
	clusters := make([]FeatureCluster, 0, len(entries))

	for _, e := range entries {
		i, ok := index[e.Feature]
		if !ok {
			i = len(clusters)
			index[e.Feature] = i
			clusters = append(clusters, FeatureCluster{Feature: e.Feature})
		}
		clusters[i].Points = append(clusters[i].Points, e)
	}

	for i := range clusters {
		points := clusters[i].Points
		sort.SliceStable(points, func(a, b int) bool {
			return points[a].Value > points[b].Value
		})
		sum := 0.0
		for _, p := range points {
			sum += math.Abs(p.Value)
		}
		clusters[i].MeanAbsoluteContribution = sum / float64(len(points))
	}

	sort.SliceStable(clusters, func(a, b int) bool {
		return clusters[a].MeanAbsoluteContribution > clusters[b].MeanAbsoluteContribution
	})
	return clusters
}
