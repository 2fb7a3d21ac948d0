// Package charts renders decomposition geometry as standalone go-echarts
// HTML pages, used as debug views alongside the JSON API.
package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/virelia/pancrisk/internal/explain"
	"github.com/virelia/pancrisk/internal/explain/render"
)

// Kinds lists the supported chart endpoints.
var Kinds = []string{"bar", "waterfall", "beeswarm", "trajectory"}

// Render builds the named chart for a decomposition and returns HTML.
func Render(kind string, d *explain.Decomposition) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("no decomposition to chart")
	}
	switch kind {
	case "bar":
		return renderHTML(contributionBar(d))
	case "waterfall":
		return renderHTML(waterfallBar(d))
	case "beeswarm":
		return renderHTML(beeswarmScatter(d))
	case "trajectory":
		return renderHTML(trajectoryLine(d))
	default:
		return nil, fmt.Errorf("unknown chart kind %q", kind)
	}
}

type renderer interface {
	Render(w io.Writer) error
}

func renderHTML(r renderer) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func contributionBar(d *explain.Decomposition) *charts.Bar {
	bars := render.Bars(d.Top())

	labels := make([]string, 0, len(bars))
	data := make([]opts.BarData, 0, len(bars))
	for _, b := range bars {
		labels = append(labels, b.Feature)
		data = append(data, opts.BarData{
			Value:     b.Value,
			ItemStyle: &opts.ItemStyle{Color: b.Color},
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Signal Contributions", Width: "900px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Signal Contributions",
			Subtitle: fmt.Sprintf("baseline=%.3f top=%d", d.Baseline, len(bars)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("contribution", data)
	return bar
}

// waterfallBar uses the stacked-bar trick: a transparent base series lifts
// each colored segment to its start position.
func waterfallBar(d *explain.Decomposition) *charts.Bar {
	segments := render.Waterfall(d.Waterfall)

	labels := make([]string, 0, len(segments))
	base := make([]opts.BarData, 0, len(segments))
	body := make([]opts.BarData, 0, len(segments))
	for _, s := range segments {
		labels = append(labels, s.Feature)
		lo := math.Min(s.X0, s.X1)
		base = append(base, opts.BarData{
			Value:     lo,
			ItemStyle: &opts.ItemStyle{Color: "rgba(0,0,0,0)"},
		})
		body = append(body, opts.BarData{
			Value:     math.Abs(s.X1 - s.X0),
			ItemStyle: &opts.ItemStyle{Color: s.Color},
		})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Risk Waterfall", Width: "900px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Risk Waterfall",
			Subtitle: waterfallSubtitle(d.Waterfall),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("base", base, charts.WithBarChartOpts(opts.BarChart{Stack: "wf"}))
	bar.AddSeries("shift", body, charts.WithBarChartOpts(opts.BarChart{Stack: "wf"}))
	return bar
}

func waterfallSubtitle(w *explain.WaterfallData) string {
	if w == nil {
		return "empty"
	}
	return fmt.Sprintf("baseline=%.3f final=%.3f", w.Baseline, w.FinalValue)
}

func beeswarmScatter(d *explain.Decomposition) *charts.Scatter {
	points := render.Beeswarm(d.Clusters, d.Waterfall)

	data := make([]opts.ScatterData, 0, len(points))
	labels := make([]string, 0, len(d.Clusters))
	rowOf := make(map[string]int, len(d.Clusters))
	for i, c := range d.Clusters {
		labels = append(labels, c.Feature)
		rowOf[c.Feature] = i
	}
	for _, p := range points {
		data = append(data, opts.ScatterData{
			Value:      []interface{}{p.X, float64(rowOf[p.Feature]) + p.Offset},
			SymbolSize: 8,
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Signal Beeswarm", Width: "900px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Signal Beeswarm",
			Subtitle: fmt.Sprintf("features=%d points=%d", len(labels), len(points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "feature row"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "position"}),
	)
	scatter.AddSeries("points", data)
	return scatter
}

func trajectoryLine(d *explain.Decomposition) *charts.Line {
	trend := render.Trajectory(d.Waterfall)

	labels := make([]string, 0, len(trend))
	data := make([]opts.LineData, 0, len(trend))
	for _, p := range trend {
		labels = append(labels, p.Feature)
		data = append(data, opts.LineData{Value: p.Y})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Risk Trajectory", Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Risk Trajectory",
			Subtitle: waterfallSubtitle(d.Waterfall),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(labels)
	line.AddSeries("probability", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}
