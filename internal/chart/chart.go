// Package chart describes dashboard charts independently of how they are drawn
// and renders them as standalone ECharts pages.
package chart

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/spendboard/internal/analysis"
)

// Kind is the chart type.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
)

// ErrEmpty is returned when rendering a spec without data.
var ErrEmpty = errors.New("chart has no data")

// Spec is a renderer-neutral chart description: kind, title, axis labels and
// one labelled series.
type Spec struct {
	Kind   Kind           `json:"kind"`
	Title  string         `json:"title"`
	XLabel string         `json:"x_label,omitempty"`
	YLabel string         `json:"y_label,omitempty"`
	Labels []string       `json:"labels"`
	Values []float64      `json:"values"`
	Bins   []analysis.Bin `json:"bins,omitempty"`
}

// Empty reports whether the spec has nothing to draw.
func (s Spec) Empty() bool { return len(s.Values) == 0 }

// Histogram builds a frequency histogram spec from precomputed bins.
func Histogram(title, xlabel string, bins []analysis.Bin) Spec {
	s := Spec{Kind: KindHistogram, Title: title, XLabel: xlabel, YLabel: "Frequency", Bins: bins}
	for _, b := range bins {
		s.Labels = append(s.Labels, analysis.BinLabel(b))
		s.Values = append(s.Values, float64(b.Count))
	}
	return s
}

// Bar builds a bar chart spec. labels and values must have equal length.
func Bar(title, xlabel, ylabel string, labels []string, values []float64) Spec {
	return Spec{Kind: KindBar, Title: title, XLabel: xlabel, YLabel: ylabel, Labels: labels, Values: values}
}

// Pie builds a pie chart spec with percentage labels.
func Pie(title string, labels []string, values []float64) Spec {
	return Spec{Kind: KindPie, Title: title, Labels: labels, Values: values}
}

// Render writes s as a self-contained HTML page.
func Render(w io.Writer, s Spec) error {
	if s.Empty() {
		return ErrEmpty
	}
	if len(s.Labels) != len(s.Values) {
		return fmt.Errorf("chart %q: %d labels for %d values", s.Title, len(s.Labels), len(s.Values))
	}
	init := opts.Initialization{PageTitle: s.Title, Width: "100%", Height: "420px"}
	switch s.Kind {
	case KindHistogram, KindBar:
		return barChart(init, s).Render(w)
	case KindPie:
		return pieChart(init, s).Render(w)
	default:
		return fmt.Errorf("chart %q: unknown kind %q", s.Title, s.Kind)
	}
}

func barChart(init opts.Initialization, s Spec) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Left: "center"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.XLabel, NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.YLabel}),
	)
	data := make([]opts.BarData, len(s.Values))
	for i, v := range s.Values {
		data[i] = opts.BarData{Value: v}
	}
	bar.SetXAxis(s.Labels)
	if s.Kind == KindHistogram {
		// adjacent bins touch
		bar.AddSeries(s.YLabel, data, charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}))
	} else {
		bar.AddSeries(s.YLabel, data)
	}
	return bar
}

func pieChart(init opts.Initialization, s Spec) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: s.Title, Left: "center"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)
	data := make([]opts.PieData, len(s.Values))
	for i, v := range s.Values {
		data[i] = opts.PieData{Name: s.Labels[i], Value: v}
	}
	pie.AddSeries(s.Title, data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}))
	return pie
}
