package explain

// Decompose runs the full pipeline: normalize, resolve the baseline, build
// the waterfall over the complete ranked list, then derive the summary and
// clusters from that same list. Callers receive one shared Decomposition
// per request; renderers and prompt builders consume it and never recompute.
//
// Aggregation policy: counts and delta cover the full normalized set, while
// chart surfaces display at most the top eight ranked entries (Top).
func Decompose(raw []RawAttribution, explicitBaseline, finalProbability *float64) *Decomposition {
	entries := Normalize(raw)
	ranked := Rank(entries)
	baseline := ResolveBaseline(entries, explicitBaseline, finalProbability)
	waterfall := BuildWaterfall(ranked, baseline)

	return &Decomposition{
		Entries:   entries,
		Ranked:    ranked,
		Baseline:  baseline,
		Waterfall: waterfall,
		Summary:   Summarize(ranked, waterfall),
		Clusters:  GroupByFeature(entries),
	}
}

// Top returns the display-capped ranked entries of this decomposition.
func (d *Decomposition) Top() []AttributionEntry {
	if len(d.Ranked) > rankCap {
		return d.Ranked[:rankCap]
	}
	return d.Ranked
}
