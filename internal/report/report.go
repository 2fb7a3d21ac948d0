// Package report renders a scored analysis as a downloadable PDF. It
// consumes the decomposition and render geometry as-is and never rescores.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/virelia/pancrisk/internal/explain"
	"github.com/virelia/pancrisk/internal/explain/render"
	"github.com/virelia/pancrisk/internal/model"
)

type rgb struct{ r, g, b int }

var (
	accent  = rgb{15, 118, 110}
	neutral = rgb{15, 23, 42}
	muted   = rgb{100, 116, 139}
	panel   = rgb{248, 250, 252}
	border  = rgb{226, 232, 240}

	riskColors = map[string]rgb{
		"High":     {220, 38, 38},
		"Moderate": {217, 119, 6},
		"Low":      {22, 163, 74},
	}
)

// Input is everything one report needs.
type Input struct {
	Prediction    int
	Probability   float64
	RiskLevel     string
	PatientValues map[string]float64
	Decomposition *explain.Decomposition
	Commentary    string
	GeneratedAt   time.Time
}

// Build renders the PDF and returns its bytes. Core fonts only, so text is
// filtered to the latin range; localized labels fall back to English.
func Build(in Input) ([]byte, error) {
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now().UTC()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetModificationDate(in.GeneratedAt)
	pdf.SetTitle("Pancreatic Risk Assessment", true)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	writeHeader(pdf, in)
	writeRiskBanner(pdf, in)
	writeLabTable(pdf, in.PatientValues)
	writeContributions(pdf, in.Decomposition)
	writeCommentary(pdf, in.Commentary)
	writeFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *fpdf.Fpdf, in Input) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(neutral.r, neutral.g, neutral.b)
	pdf.CellFormat(0, 10, "AI-Assisted Pancreatic Risk Assessment", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(muted.r, muted.g, muted.b)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated on %s | AI-assisted decision support; not diagnostic.",
		in.GeneratedAt.Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeRiskBanner(pdf *fpdf.Fpdf, in Input) {
	color, ok := riskColors[in.RiskLevel]
	if !ok {
		color = accent
	}
	pdf.SetFillColor(color.r, color.g, color.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 13)
	banner := fmt.Sprintf("%s RISK  |  Probability %.1f%%", strings.ToUpper(in.RiskLevel), in.Probability*100)
	pdf.CellFormat(0, 12, sanitize(banner), "", 1, "C", true, 0, "")
	pdf.Ln(6)
}

func writeLabTable(pdf *fpdf.Fpdf, values map[string]float64) {
	sectionTitle(pdf, "Laboratory Results Summary")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(panel.r, panel.g, panel.b)
	pdf.SetTextColor(neutral.r, neutral.g, neutral.b)
	pdf.SetDrawColor(border.r, border.g, border.b)
	pdf.CellFormat(90, 7, "Test", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Value", "1", 0, "R", true, 0, "")
	pdf.CellFormat(60, 7, "Reference range", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, key := range model.FeatureOrder {
		v, ok := values[key]
		if !ok {
			v = model.FeatureDefaults[key]
		}
		rng := model.ReferenceRanges[key]
		outOfRange := v < rng.Min || v > rng.Max
		if outOfRange {
			pdf.SetTextColor(riskColors["High"].r, riskColors["High"].g, riskColors["High"].b)
		} else {
			pdf.SetTextColor(neutral.r, neutral.g, neutral.b)
		}
		label := model.FeatureLabels["en"][strings.ToUpper(key)]
		if label == "" {
			label = key
		}
		pdf.CellFormat(90, 6, sanitize(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", v), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%.1f - %.1f", rng.Min, rng.Max), "1", 1, "R", false, 0, "")
	}
	pdf.SetTextColor(muted.r, muted.g, muted.b)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Values shown as provided; verify units and reference ranges with the source laboratory.", "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeContributions(pdf *fpdf.Fpdf, d *explain.Decomposition) {
	if d == nil || d.Waterfall == nil {
		return
	}
	sectionTitle(pdf, "Risk Signal Decomposition")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(neutral.r, neutral.g, neutral.b)
	pdf.CellFormat(0, 6, fmt.Sprintf("Baseline %.3f  ->  final %.3f across %d signals.",
		d.Waterfall.Baseline, d.Waterfall.FinalValue, len(d.Waterfall.Steps)), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	const barSpan = 80.0
	bars := render.Bars(d.Top())
	for _, bar := range bars {
		c := pdfColor(bar.Color)
		label := model.FeatureLabels["en"][strings.ToUpper(bar.Feature)]
		if label == "" {
			label = bar.Feature
		}
		pdf.SetTextColor(neutral.r, neutral.g, neutral.b)
		pdf.CellFormat(70, 6, sanitize(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%+.3f", bar.Value), "", 0, "R", false, 0, "")

		x, y := pdf.GetXY()
		pdf.SetFillColor(c.r, c.g, c.b)
		pdf.Rect(x+3, y+1.2, barSpan*bar.Width, 3.6, "F")
		pdf.Ln(6)
	}
	pdf.Ln(4)
}

func writeCommentary(pdf *fpdf.Fpdf, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	sectionTitle(pdf, "Clinical Commentary")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(neutral.r, neutral.g, neutral.b)
	pdf.MultiCell(0, 5, sanitize(text), "", "L", false)
	pdf.Ln(2)
}

func writeFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(muted.r, muted.g, muted.b)
	pdf.MultiCell(0, 4, "This report is AI-assisted clinical decision support and does not establish a diagnosis. Clinical decisions remain with the treating physician.", "", "L", false)
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(accent.r, accent.g, accent.b)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

// pdfColor parses the render adapter's #rrggbb color strings.
func pdfColor(hex string) rgb {
	var c rgb
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &c.r, &c.g, &c.b); err != nil {
		return neutral
	}
	return c
}

// sanitize keeps the output within the core-font latin range. Cyrillic and
// other unsupported runes become placeholders rather than corrupt glyphs.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || (r >= 0x20 && r < 0x7f) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
