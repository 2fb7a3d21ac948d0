package explain

import (
	"encoding/json"
	"fmt"
)

// Impact tags whether a contribution pushes the prediction up or down.
// A value of exactly zero is tagged positive.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
)

// AttributionEntry is one feature's contribution to one prediction. Entries
// are created fresh per request and never mutated afterwards.
type AttributionEntry struct {
	Feature    string  `json:"feature"`
	Value      float64 `json:"value"`
	Importance float64 `json:"importance"`
	Impact     string  `json:"impact"`
}

// RawAttribution is one unvalidated record from the scoring collaborator.
// Both the object form {feature, value|impact|shap, importance} and the
// positional [feature, value] pair decode into it. Field payloads stay
// untyped until Normalize resolves them, since upstreams disagree on which
// key carries the number.
type RawAttribution struct {
	Feature    string
	Value      any
	Impact     any
	Shap       any
	Importance any
	Slot       any // second element of the array form
}

// UnmarshalJSON accepts either an object record or a [feature, value] pair.
func (r *RawAttribution) UnmarshalJSON(data []byte) error {
	var obj struct {
		Feature    string `json:"feature"`
		Value      any    `json:"value"`
		Impact     any    `json:"impact"`
		Shap       any    `json:"shap"`
		Importance any    `json:"importance"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		r.Feature = obj.Feature
		r.Value = obj.Value
		r.Impact = obj.Impact
		r.Shap = obj.Shap
		r.Importance = obj.Importance
		return nil
	}

	var pair []any
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("attribution record is neither object nor pair: %w", err)
	}
	if len(pair) > 0 {
		if name, ok := pair[0].(string); ok {
			r.Feature = name
		}
	}
	if len(pair) > 1 {
		r.Slot = pair[1]
	}
	return nil
}

// Step is one rung of the waterfall: the running total before this feature
// is applied, and after.
type Step struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// WaterfallData is the ordered accumulation from baseline to final
// prediction. Min and Max cover the baseline, the final value, and every
// step endpoint; they are the single scale shared by every renderer.
type WaterfallData struct {
	Baseline   float64 `json:"baseline"`
	FinalValue float64 `json:"finalValue"`
	Steps      []Step  `json:"steps"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// rangeFloor guards consumers that normalize by Max-Min against a
// degenerate all-equal value set.
const rangeFloor = 1e-6

// Range returns Max-Min, floored so division by it is always safe.
func (w *WaterfallData) Range() float64 {
	r := w.Max - w.Min
	if r < rangeFloor {
		return rangeFloor
	}
	return r
}

// Summary holds aggregate facts derived from the decomposition. It is
// recomputable at any time from the same entry list and waterfall, and it
// must be fed the exact list the waterfall was built from.
type Summary struct {
	PositiveCount int                `json:"positiveCount"`
	NegativeCount int                `json:"negativeCount"`
	TopPositive   *AttributionEntry  `json:"topPositive"`
	TopNegative   *AttributionEntry  `json:"topNegative"`
	Delta         float64            `json:"delta"`
	TopThree      []AttributionEntry `json:"topThree"`
}

// FeatureCluster groups every contribution sharing a feature identity,
// for distribution-style (beeswarm) rendering.
type FeatureCluster struct {
	Feature                  string             `json:"feature"`
	Points                   []AttributionEntry `json:"points"`
	MeanAbsoluteContribution float64            `json:"meanAbsoluteContribution"`
}

// Decomposition bundles every projection of one prediction's attributions.
// One instance is built per request and threaded to all consumers so charts,
// summary text, and prompts can never disagree on baseline or scale.
type Decomposition struct {
	Entries   []AttributionEntry `json:"entries"`
	Ranked    []AttributionEntry `json:"ranked"`
	Baseline  float64            `json:"baseline"`
	Waterfall *WaterfallData     `json:"waterfall"`
	Summary   *Summary           `json:"summary"`
	Clusters  []FeatureCluster   `json:"clusters"`
}
