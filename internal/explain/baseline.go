package explain

// ResolveBaseline picks the decomposition's starting point. An explicit
// expected value wins; otherwise the baseline is back-solved from the final
// probability so that baseline + sum(values) reconstructs it; otherwise
// zero. The function is total: an explanation renders degraded rather than
// not at all when upstream data is incomplete.
func ResolveBaseline(entries []AttributionEntry, explicit, finalProbability *float64) float64 {
	if explicit != nil && isFinite(*explicit) {
		return *explicit
	}
	if finalProbability != nil && isFinite(*finalProbability) {
		sum := 0.0
		for _, e := range entries {
			sum += e.Value
		}
		return *finalProbability - sum
	}
	return 0
}
