package explain

// BuildWaterfall walks the ranked entries once, accumulating a running
// value from the baseline. Each step records the running total before and
// after its entry, so steps[i].start == steps[i-1].end by construction and
// the final value equals baseline + sum(values).
//
// An empty entry list yields nil: a decomposition with no contributing
// features carries no explanatory value and must render as "unavailable",
// not as a zero-bar chart.
func BuildWaterfall(ranked []AttributionEntry, baseline float64) *WaterfallData {
	if len(ranked) == 0 {
		return nil
	}

	steps := make([]Step, 0, len(ranked))
	running := baseline
	lo, hi := baseline, baseline

	for _, e := range ranked {
		step := Step{Feature: e.Feature, Value: e.Value, Start: running}
		running += e.Value
		step.End = running
		steps = append(steps, step)

		if step.End < lo {
			lo = step.End
		}
		if step.End > hi {
			hi = step.End
		}
	}

	return &WaterfallData{
		Baseline:   baseline,
		FinalValue: running,
		Steps:      steps,
		Min:        lo,
		Max:        hi,
	}
}
