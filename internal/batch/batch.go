// Package batch scores CSV uploads of blood panels and summarizes the
// cohort, including a calibration curve when outcome labels are present.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/virelia/pancrisk/internal/commentary"
	"github.com/virelia/pancrisk/internal/explain"
	"github.com/virelia/pancrisk/internal/model"
)

const defaultMaxRecords = 250

var labelColumns = []string{"label", "target", "y", "outcome"}

// MaxRecordsFromEnv reads the row cap override, falling back to the default.
func MaxRecordsFromEnv() int {
	if raw := os.Getenv("MAX_BATCH_RECORDS"); raw != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxRecords
}

// Options control one batch run.
type Options struct {
	Language          string
	ClientType        string
	IncludeCommentary bool
}

// RowResult is the scored outcome of one CSV row.
type RowResult struct {
	Row           int                        `json:"row"`
	Prediction    int                        `json:"prediction"`
	Probability   float64                    `json:"probability"`
	RiskLevel     string                     `json:"risk_level"`
	PatientValues map[string]float64         `json:"patient_values"`
	Attributions  []explain.AttributionEntry `json:"shap_values"`
	Commentary    string                     `json:"commentary,omitempty"`
}

// RowError records a row that failed validation.
type RowError struct {
	Row     int      `json:"row"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// CalibrationBin is one probability bucket of the reliability curve.
type CalibrationBin struct {
	Bin          string   `json:"bin"`
	Count        int      `json:"count"`
	AvgProb      *float64 `json:"avg_prob"`
	ObservedRate *float64 `json:"observed_rate"`
}

// Calibration compares predicted probabilities against observed labels.
type Calibration struct {
	Bins       []CalibrationBin `json:"bins"`
	Sampled    int              `json:"sampled"`
	BrierScore *float64         `json:"brier_score"`
}

// Summary aggregates the whole batch.
type Summary struct {
	TotalRows      int            `json:"total_rows"`
	Processed      int            `json:"processed"`
	Failed         int            `json:"failed"`
	RiskCounts     map[string]int `json:"risk_counts"`
	ProbabilityAvg *float64       `json:"probability_avg"`
	ProbabilityP50 *float64       `json:"probability_p50"`
	ProbabilityP90 *float64       `json:"probability_p90"`
	LabelledRows   int            `json:"labelled_rows"`
}

// Result is the full batch response payload.
type Result struct {
	Summary     Summary     `json:"summary"`
	Calibration Calibration `json:"calibration"`
	Results     []RowResult `json:"results"`
	Errors      []RowError  `json:"errors"`
}

// Processor runs batch scoring. The commentary generator is optional and
// only consulted when Options.IncludeCommentary is set.
type Processor struct {
	maxRecords int
	generator  *commentary.Generator
	logger     *slog.Logger
}

func NewProcessor(maxRecords int, gen *commentary.Generator, logger *slog.Logger) *Processor {
	if maxRecords <= 0 {
		maxRecords = MaxRecordsFromEnv()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{maxRecords: maxRecords, generator: gen, logger: logger}
}

type calibrationPoint struct {
	prob  float64
	label int
}

// Process scores every row of the CSV. Row-level failures are collected,
// not fatal; malformed input or exceeding the row cap aborts the run.
func (p *Processor) Process(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty csv payload")
	}

	text := strings.TrimPrefix(string(data), "\uFEFF")
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv is missing headers: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	res := &Result{
		Results: []RowResult{},
		Errors:  []RowError{},
	}
	var points []calibrationPoint
	var probabilities []float64
	riskCounts := make(map[string]int)

	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed csv at row %d: %w", rowNum, err)
		}
		if rowNum > p.maxRecords {
			return nil, fmt.Errorf("row limit exceeded (max %d)", p.maxRecords)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values := normalizeRow(record, columns)
		if violations := model.Validate(values); len(violations) > 0 {
			res.Errors = append(res.Errors, RowError{
				Row:     rowNum,
				Error:   "validation_error",
				Details: violations,
			})
			continue
		}

		vector := model.RebuildVector(values)
		prediction, probability := model.PredictRisk(vector)
		d := explain.Decompose(model.Attribute(vector), nil, &probability)

		if label, ok := parseLabel(record, columns); ok {
			points = append(points, calibrationPoint{prob: probability, label: label})
		}

		row := RowResult{
			Row:           rowNum,
			Prediction:    prediction,
			Probability:   probability,
			RiskLevel:     model.RiskLevel(probability),
			PatientValues: values,
			Attributions:  d.Top(),
		}
		if opts.IncludeCommentary && p.generator != nil {
			row.Commentary = p.generator.Generate(ctx, commentary.Input{
				Prediction:    prediction,
				Probability:   probability,
				Decomposition: d,
				PatientValues: values,
				Audience:      commentary.NormalizeAudience(opts.ClientType),
				Locale:        commentary.NormalizeLocale(opts.Language),
			})
		}
		res.Results = append(res.Results, row)
		probabilities = append(probabilities, probability)
		riskCounts[row.RiskLevel]++
	}

	res.Calibration = calibrationCurve(points, 5)
	res.Summary = Summary{
		TotalRows:    len(res.Results) + len(res.Errors),
		Processed:    len(res.Results),
		Failed:       len(res.Errors),
		RiskCounts:   riskCounts,
		LabelledRows: len(points),
	}
	if len(probabilities) > 0 {
		sorted := append([]float64(nil), probabilities...)
		sort.Float64s(sorted)
		res.Summary.ProbabilityAvg = round6p(stat.Mean(probabilities, nil))
		res.Summary.ProbabilityP50 = round6p(stat.Quantile(0.5, stat.LinInterp, sorted, nil))
		res.Summary.ProbabilityP90 = round6p(stat.Quantile(0.9, stat.LinInterp, sorted, nil))
	}

	p.logger.Info("batch scored",
		slog.Int("processed", res.Summary.Processed),
		slog.Int("failed", res.Summary.Failed),
		slog.Int("labelled", res.Summary.LabelledRows))
	return res, nil
}

// normalizeRow maps a CSV record onto the canonical feature set, filling
// absent or unparsable readings with population defaults.
func normalizeRow(record []string, columns map[string]int) map[string]float64 {
	values := make(map[string]float64, len(model.FeatureOrder))
	for _, key := range model.FeatureOrder {
		values[key] = model.FeatureDefaults[key]
		idx, ok := columns[key]
		if !ok || idx >= len(record) {
			continue
		}
		raw := strings.TrimSpace(record[idx])
		if raw == "" {
			continue
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			values[key] = v
		}
	}
	return values
}

// parseLabel extracts a binary outcome from any recognized label column.
func parseLabel(record []string, columns map[string]int) (int, bool) {
	for _, name := range labelColumns {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return 0, false
		}
		label := int(v)
		if label == 0 || label == 1 {
			return label, true
		}
		return 0, false
	}
	return 0, false
}

func calibrationCurve(points []calibrationPoint, bins int) Calibration {
	cal := Calibration{Bins: []CalibrationBin{}, Sampled: len(points)}
	if len(points) == 0 {
		return cal
	}

	var brier float64
	for _, pt := range points {
		diff := pt.prob - float64(pt.label)
		brier += diff * diff
	}
	cal.BrierScore = round6p(brier / float64(len(points)))

	for i := 0; i < bins; i++ {
		lower := float64(i) / float64(bins)
		upper := float64(i+1) / float64(bins)
		last := i == bins-1
		bin := CalibrationBin{Bin: fmt.Sprintf("%.2f-%.2f", lower, upper)}

		var probSum, labelSum float64
		for _, pt := range points {
			if pt.prob < lower {
				continue
			}
			if pt.prob >= upper && !(last && pt.prob <= upper) {
				continue
			}
			bin.Count++
			probSum += pt.prob
			labelSum += float64(pt.label)
		}
		if bin.Count > 0 {
			avg := probSum / float64(bin.Count)
			rate := labelSum / float64(bin.Count)
			bin.AvgProb = &avg
			bin.ObservedRate = &rate
		}
		cal.Bins = append(cal.Bins, bin)
	}
	return cal
}

func round6p(v float64) *float64 {
	r := math.Round(v*1e6) / 1e6
	return &r
}
