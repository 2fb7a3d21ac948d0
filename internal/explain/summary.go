package explain

// Summarize derives aggregate facts from a built waterfall. The entries
// argument must be the same list, in the same order, that built the
// waterfall; the summary does not cross-validate and a re-filtered list
// silently breaks the delta invariant.
func Summarize(ranked []AttributionEntry, waterfall *WaterfallData) *Summary {
	if waterfall == nil {
		return nil
	}

	s := &Summary{Delta: waterfall.FinalValue - waterfall.Baseline}

	for i := range ranked {
		e := &ranked[i]
		switch {
		case e.Value > 0:
			s.PositiveCount++
			if s.TopPositive == nil {
				s.TopPositive = e
			}
		case e.Value < 0:
			s.NegativeCount++
			if s.TopNegative == nil {
				s.TopNegative = e
			}
		default:
			// zero contributions are tagged positive but lead neither list
			s.PositiveCount++
		}
	}

	n := len(ranked)
	if n > 3 {
		n = 3
	}
	s.TopThree = append([]AttributionEntry(nil), ranked[:n]...)
	return s
}
