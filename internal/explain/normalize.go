package explain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// rankCap bounds the ranked list used for charts and summary display.
const rankCap = 8

// Normalize converts raw collaborator records into canonical entries. The
// numeric value is probed from the aliases value, impact, shap, then the
// positional slot; a record whose number is NaN or infinite is dropped
// rather than failing the whole explanation, and a record with no numeric
// field at all resolves to zero. Output order matches input order.
func Normalize(raw []RawAttribution) []AttributionEntry {
	entries := make([]AttributionEntry, 0, len(raw))
	for i, rec := range raw {
		value, ok := resolveValue(rec)
		if !ok {
			continue
		}

		feature := rec.Feature
		if feature == "" {
			feature = fmt.Sprintf("Feature %d", i+1)
		}

		importance := math.Abs(value)
		if override, ok := toNumber(rec.Importance); ok && isFinite(override) && override >= 0 {
			importance = override
		}

		entries = append(entries, AttributionEntry{
			Feature:    feature,
			Value:      value,
			Importance: importance,
			Impact:     impactOf(value),
		})
	}
	return entries
}

// Rank returns a copy of entries sorted descending by importance. The sort
// is stable so equal importances keep their original input order, which
// makes repeated calls byte-for-byte reproducible.
func Rank(entries []AttributionEntry) []AttributionEntry {
	ranked := make([]AttributionEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}

// Top returns the ranked list capped for display. Aggregates are computed
// over the full list; only rendering is capped.
func Top(entries []AttributionEntry) []AttributionEntry {
	ranked := Rank(entries)
	if len(ranked) > rankCap {
		ranked = ranked[:rankCap]
	}
	return ranked
}

func impactOf(value float64) string {
	if value >= 0 {
		return ImpactPositive
	}
	return ImpactNegative
}

// resolveValue probes the accepted aliases in order. The first field holding
// a number wins: finite numbers are used, non-finite ones disqualify the
// record. Non-numeric payloads (e.g. an impact tag string) are skipped.
func resolveValue(rec RawAttribution) (float64, bool) {
	for _, candidate := range []any{rec.Value, rec.Impact, rec.Shap, rec.Slot} {
		v, ok := toNumber(candidate)
		if !ok {
			continue
		}
		if !isFinite(v) {
			return 0, false
		}
		return v, true
	}
	return 0, true
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
