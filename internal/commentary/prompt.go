package commentary

import (
	"fmt"
	"strings"

	"github.com/virelia/pancrisk/internal/explain"
	"github.com/virelia/pancrisk/internal/model"
)

// Input carries everything the generator needs for one commentary.
type Input struct {
	Prediction    int
	Probability   float64
	Decomposition *explain.Decomposition
	PatientValues map[string]float64
	Audience      Audience
	Locale        string
}

func (in Input) riskLevel() string {
	return model.RiskLevel(in.Probability)
}

// featureLabel resolves a display label for the locale, falling back to the
// raw feature key when no translation exists. Label tables are keyed by the
// uppercase feature code.
func featureLabel(feature, locale string) string {
	code := strings.ToUpper(feature)
	if labels, ok := model.FeatureLabels[locale]; ok {
		if l, ok := labels[code]; ok {
			return l
		}
	}
	if l, ok := model.FeatureLabels["en"][code]; ok {
		return l
	}
	return feature
}

func topDrivers(d *explain.Decomposition) []explain.AttributionEntry {
	if d == nil {
		return nil
	}
	if d.Summary != nil && len(d.Summary.TopThree) > 0 {
		return d.Summary.TopThree
	}
	if len(d.Ranked) > 3 {
		return d.Ranked[:3]
	}
	return d.Ranked
}

func driverLines(in Input, ab *audienceBundle) []string {
	var lines []string
	for _, e := range topDrivers(in.Decomposition) {
		term := ab.ImpactTerms[string(e.Impact)]
		if term == "" {
			term = ab.ImpactTerms["neutral"]
		}
		reading := ""
		if v, ok := in.PatientValues[e.Feature]; ok {
			reading = fmt.Sprintf(" (%.2f)", v)
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s, %+.3f", featureLabel(e.Feature, in.Locale), reading, term, e.Value))
	}
	if len(lines) == 0 {
		lines = append(lines, ab.DefaultDriver)
	}
	return lines
}

// BuildPrompt assembles the instruction block sent to an LLM backend. The
// same decomposition summary that powers the charts drives the narrative.
func BuildPrompt(in Input) string {
	lb, ab := bundleFor(in.Locale, in.Audience)
	risk := in.riskLevel()

	var b strings.Builder
	b.WriteString(lb.LanguagePrompt)
	b.WriteString("\n\n")
	b.WriteString(ab.AudienceGuidance)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Risk level: %s\n", lb.RiskLabels[risk])
	fmt.Fprintf(&b, "%s: %.1f%%\n", ab.ProbabilityLabel, in.Probability*100)

	if d := in.Decomposition; d != nil {
		final := d.Baseline
		if d.Waterfall != nil {
			final = d.Waterfall.FinalValue
		}
		if s := d.Summary; s != nil {
			fmt.Fprintf(&b, "Baseline: %.3f, final: %.3f, net shift: %+.3f\n", d.Baseline, final, s.Delta)
			fmt.Fprintf(&b, "Contributions: %d increasing risk, %d decreasing\n", s.PositiveCount, s.NegativeCount)
		}
	}

	b.WriteString("Key drivers:\n")
	for _, line := range driverLines(in, ab) {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\nWrite structured commentary with clear section headers matching the audience register. Do not invent laboratory values beyond those listed.")
	return b.String()
}
