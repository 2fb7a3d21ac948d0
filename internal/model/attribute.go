package model

import (
	"math"

	"github.com/virelia/pancrisk/internal/explain"
)

// slope pairs a base coefficient with an optional steeper one applied above
// a threshold, mirroring the piecewise behavior of the reference attributor.
type slope struct {
	base      float64
	steep     float64
	threshold float64
	piecewise bool
	inverted  bool // deviation measured default-minus-reading
}

var attributionSlopes = map[string]slope{
	"wbc":       {base: 0.12},
	"rbc":       {base: 0.1, inverted: true},
	"plt":       {base: 0.002},
	"hgb":       {base: 0.004, inverted: true},
	"hct":       {base: 0.003, inverted: true},
	"mpv":       {base: 0.01, steep: 0.05, threshold: 10.0, piecewise: true},
	"pdw":       {base: 0.02},
	"mono":      {base: 0.1, steep: 0.3, threshold: 0.6, piecewise: true},
	"baso_abs":  {base: 0.5},
	"baso_pct":  {base: 0.1},
	"glucose":   {base: 0.05, steep: 0.15, threshold: 6.5, piecewise: true},
	"act":       {base: 0.005, steep: 0.01, threshold: 35, piecewise: true},
	"bilirubin": {base: 0.03, steep: 0.08, threshold: 20, piecewise: true},
}

// Attribute produces the deterministic SHAP-style attribution for a
// canonical-order feature vector: a linear deviation from the population
// default per feature, with a steeper coefficient past clinically relevant
// thresholds, plus a small sine perturbation so repeated panels do not
// collapse onto identical bars. Values are rounded to three decimals, the
// precision the reference explainer reports.
//
// Records are emitted in feature order; ranking and truncation belong to
// the explanation core, not here.
func Attribute(features []float64) []explain.RawAttribution {
	records := make([]explain.RawAttribution, 0, len(FeatureOrder))
	for idx, key := range FeatureOrder {
		reading := features[idx]
		s := attributionSlopes[key]

		coeff := s.base
		if s.piecewise && reading > s.threshold {
			coeff = s.steep
		}

		deviation := reading - FeatureDefaults[key]
		if s.inverted {
			deviation = -deviation
		}

		noise := math.Sin((reading+1)*float64(idx+1)*0.37) * 0.006
		value := round3(deviation*coeff + noise)

		records = append(records, explain.RawAttribution{
			Feature: key,
			Value:   value,
		})
	}
	return records
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
