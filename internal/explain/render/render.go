// Package render maps decomposition projections onto chart-ready geometry.
// No decomposition logic lives here: every position is an affine function of
// the shared waterfall scale and every color is a pure function of impact.
package render

import (
	"math"

	"github.com/virelia/pancrisk/internal/explain"
)

// The two fixed impact colors. Gradients of decomposition semantics are
// deliberately not supported.
const (
	ColorRiskIncreasing = "#ff0051"
	ColorRiskDecreasing = "#008bfb"
)

// ColorFor returns the fixed color for an impact tag.
func ColorFor(impact string) string {
	if impact == explain.ImpactNegative {
		return ColorRiskDecreasing
	}
	return ColorRiskIncreasing
}

// Bar is one row of the importance bar chart, width in [0, 1].
type Bar struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Width   float64 `json:"width"`
	Color   string  `json:"color"`
}

// Bars maps display-capped ranked entries onto bar rows scaled by the
// largest importance present.
func Bars(top []explain.AttributionEntry) []Bar {
	maxImportance := 0.0
	for _, e := range top {
		if e.Importance > maxImportance {
			maxImportance = e.Importance
		}
	}
	if maxImportance == 0 {
		maxImportance = 1
	}

	bars := make([]Bar, 0, len(top))
	for _, e := range top {
		bars = append(bars, Bar{
			Feature: e.Feature,
			Value:   e.Value,
			Width:   e.Importance / maxImportance,
			Color:   ColorFor(e.Impact),
		})
	}
	return bars
}

// Segment is one waterfall step projected onto [0, 1] coordinates.
type Segment struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	X0      float64 `json:"x0"`
	X1      float64 `json:"x1"`
	Color   string  `json:"color"`
}

// Waterfall projects each step's start and end through the shared scale.
// Returns nil when no waterfall exists; callers show an unavailable state.
func Waterfall(w *explain.WaterfallData) []Segment {
	if w == nil {
		return nil
	}
	r := w.Range()
	segments := make([]Segment, 0, len(w.Steps))
	for _, s := range w.Steps {
		color := ColorRiskIncreasing
		if s.Value < 0 {
			color = ColorRiskDecreasing
		}
		segments = append(segments, Segment{
			Feature: s.Feature,
			Value:   s.Value,
			X0:      (s.Start - w.Min) / r,
			X1:      (s.End - w.Min) / r,
			Color:   color,
		})
	}
	return segments
}

// SwarmPoint is one contribution inside a beeswarm row.
type SwarmPoint struct {
	Feature string  `json:"feature"`
	Row     int     `json:"row"`
	X       float64 `json:"x"`
	Offset  float64 `json:"offset"`
	Color   string  `json:"color"`
}

// Beeswarm lays clusters out one row per feature, x positioned on the
// shared waterfall scale, with a small deterministic vertical offset to
// separate coincident points.
func Beeswarm(clusters []explain.FeatureCluster, w *explain.WaterfallData) []SwarmPoint {
	if w == nil {
		return nil
	}
	r := w.Range()
	points := make([]SwarmPoint, 0, len(clusters))
	for row, cluster := range clusters {
		for i, p := range cluster.Points {
			offset := 0.0
			if len(cluster.Points) > 1 {
				offset = 0.3 * math.Sin(float64(i))
			}
			points = append(points, SwarmPoint{
				Feature: cluster.Feature,
				Row:     row,
				X:       (p.Value + w.Baseline - w.Min) / r,
				Offset:  offset,
				Color:   ColorFor(p.Impact),
			})
		}
	}
	return points
}

// TrendPoint is one vertex of the running-value trajectory.
type TrendPoint struct {
	Feature string  `json:"feature"`
	Y       float64 `json:"y"`
}

// Trajectory traces the accumulation from baseline through every step end,
// normalized onto [0, 1] by the shared scale.
func Trajectory(w *explain.WaterfallData) []TrendPoint {
	if w == nil {
		return nil
	}
	r := w.Range()
	points := make([]TrendPoint, 0, len(w.Steps)+1)
	points = append(points, TrendPoint{Feature: "baseline", Y: (w.Baseline - w.Min) / r})
	for _, s := range w.Steps {
		points = append(points, TrendPoint{Feature: s.Feature, Y: (s.End - w.Min) / r})
	}
	return points
}
