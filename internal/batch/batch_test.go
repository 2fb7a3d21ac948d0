package batch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virelia/pancrisk/internal/commentary"
)

const benignRow = "6.0,4.5,250,140,42,9.0,14,0.5,0.03,0.8,5.0,28,10"
const elevatedRow = "9.8,4.2,400,115,38,10.5,15,0.65,0.04,0.9,7.2,36,24"

func panelHeader() string {
	return "wbc,rbc,plt,hgb,hct,mpv,pdw,mono,baso_abs,baso_pct,glucose,act,bilirubin"
}

func newProcessor() *Processor {
	return NewProcessor(10, commentary.NewGenerator(nil, 0, nil), nil)
}

func TestProcessScoresRows(t *testing.T) {
	data := []byte(panelHeader() + "\n" + benignRow + "\n" + elevatedRow + "\n")
	res, err := newProcessor().Process(context.Background(), data, Options{Language: "en", ClientType: "clinician"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.TotalRows)
	assert.Equal(t, 2, res.Summary.Processed)
	assert.Equal(t, 0, res.Summary.Failed)
	require.Len(t, res.Results, 2)

	low, high := res.Results[0], res.Results[1]
	assert.Equal(t, 1, low.Row)
	assert.Equal(t, 2, high.Row)
	assert.Greater(t, high.Probability, low.Probability)
	assert.Equal(t, "High", high.RiskLevel)
	assert.NotEmpty(t, high.Attributions)
	assert.LessOrEqual(t, len(high.Attributions), 8)
	assert.InDelta(t, 7.2, high.PatientValues["glucose"], 1e-9)

	require.NotNil(t, res.Summary.ProbabilityAvg)
	require.NotNil(t, res.Summary.ProbabilityP50)
	require.NotNil(t, res.Summary.ProbabilityP90)
	assert.LessOrEqual(t, *res.Summary.ProbabilityP50, *res.Summary.ProbabilityP90)
	assert.GreaterOrEqual(t, *res.Summary.ProbabilityAvg, low.Probability)
	assert.LessOrEqual(t, *res.Summary.ProbabilityAvg, high.Probability)
}

func TestProcessCaseInsensitiveColumnsAndDefaults(t *testing.T) {
	// Only two columns present, odd casing; the rest fall back to defaults.
	data := []byte("GLUCOSE,Bilirubin\n7.2,24\n")
	res, err := newProcessor().Process(context.Background(), data, Options{})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)

	row := res.Results[0]
	assert.InDelta(t, 7.2, row.PatientValues["glucose"], 1e-9)
	assert.InDelta(t, 24.0, row.PatientValues["bilirubin"], 1e-9)
	assert.InDelta(t, 5.8, row.PatientValues["wbc"], 1e-9)
	assert.InDelta(t, 184.0, row.PatientValues["plt"], 1e-9)
}

func TestProcessStripsByteOrderMark(t *testing.T) {
	data := []byte("\uFEFF" + panelHeader() + "\n" + benignRow + "\n")
	res, err := newProcessor().Process(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Processed)
}

func TestProcessCollectsValidationErrors(t *testing.T) {
	bad := strings.Replace(benignRow, "250", "9000", 1) // plt out of range
	data := []byte(panelHeader() + "\n" + benignRow + "\n" + bad + "\n")
	res, err := newProcessor().Process(context.Background(), data, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.Processed)
	assert.Equal(t, 1, res.Summary.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "validation_error", res.Errors[0].Error)
	assert.NotEmpty(t, res.Errors[0].Details)
}

func TestProcessRowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString(panelHeader() + "\n")
	for i := 0; i < 4; i++ {
		b.WriteString(benignRow + "\n")
	}
	p := NewProcessor(3, nil, nil)
	_, err := p.Process(context.Background(), []byte(b.String()), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row limit exceeded (max 3)")
}

func TestProcessEmptyPayload(t *testing.T) {
	_, err := newProcessor().Process(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestProcessCalibration(t *testing.T) {
	var b strings.Builder
	b.WriteString(panelHeader() + ",label\n")
	b.WriteString(benignRow + ",0\n")
	b.WriteString(benignRow + ",0\n")
	b.WriteString(elevatedRow + ",1\n")
	b.WriteString(elevatedRow + ",1\n")

	res, err := newProcessor().Process(context.Background(), []byte(b.String()), Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Summary.LabelledRows)
	assert.Equal(t, 4, res.Calibration.Sampled)
	require.Len(t, res.Calibration.Bins, 5)

	binned := 0
	for _, bin := range res.Calibration.Bins {
		binned += bin.Count
		if bin.Count > 0 {
			require.NotNil(t, bin.AvgProb)
			require.NotNil(t, bin.ObservedRate)
			assert.GreaterOrEqual(t, *bin.ObservedRate, 0.0)
			assert.LessOrEqual(t, *bin.ObservedRate, 1.0)
		} else {
			assert.Nil(t, bin.AvgProb)
			assert.Nil(t, bin.ObservedRate)
		}
	}
	assert.Equal(t, 4, binned)

	require.NotNil(t, res.Calibration.BrierScore)
	assert.GreaterOrEqual(t, *res.Calibration.BrierScore, 0.0)
	assert.LessOrEqual(t, *res.Calibration.BrierScore, 1.0)
}

func TestProcessIgnoresNonBinaryLabels(t *testing.T) {
	data := []byte(panelHeader() + ",outcome\n" + benignRow + ",2\n" + benignRow + ",x\n")
	res, err := newProcessor().Process(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.LabelledRows)
	assert.Nil(t, res.Calibration.BrierScore)
}

func TestProcessCommentaryOptIn(t *testing.T) {
	data := []byte(panelHeader() + "\n" + elevatedRow + "\n")

	plain, err := newProcessor().Process(context.Background(), data, Options{Language: "en", ClientType: "doctor"})
	require.NoError(t, err)
	assert.Empty(t, plain.Results[0].Commentary)

	with, err := newProcessor().Process(context.Background(), data, Options{
		Language: "en", ClientType: "doctor", IncludeCommentary: true,
	})
	require.NoError(t, err)
	assert.Contains(t, with.Results[0].Commentary, "CLINICAL DOSSIER")
}

func TestProcessDeterministic(t *testing.T) {
	data := []byte(panelHeader() + "\n" + benignRow + "\n" + elevatedRow + "\n")
	p := newProcessor()
	a, err := p.Process(context.Background(), data, Options{})
	require.NoError(t, err)
	b, err := p.Process(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCalibrationCurveBuckets(t *testing.T) {
	points := []calibrationPoint{
		{prob: 0.05, label: 0},
		{prob: 0.15, label: 0},
		{prob: 0.55, label: 1},
		{prob: 1.0, label: 1}, // upper edge lands in the final bin
	}
	cal := calibrationCurve(points, 5)
	require.Len(t, cal.Bins, 5)
	assert.Equal(t, 2, cal.Bins[0].Count)
	assert.Equal(t, 0, cal.Bins[1].Count)
	assert.Equal(t, 1, cal.Bins[2].Count)
	assert.Equal(t, 1, cal.Bins[4].Count)
	assert.InDelta(t, 0.1, *cal.Bins[0].AvgProb, 1e-9)
	assert.InDelta(t, 0.0, *cal.Bins[0].ObservedRate, 1e-9)

	// brier = ((0.05)^2 + (0.15)^2 + (0.45)^2 + 0) / 4
	want := (0.05*0.05 + 0.15*0.15 + 0.45*0.45) / 4
	assert.InDelta(t, want, *cal.BrierScore, 1e-6)
}
