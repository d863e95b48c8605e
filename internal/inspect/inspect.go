// Package inspect summarizes a single column and picks the chart that fits it.
package inspect

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/chart"
)

// ErrUnknownColumn is returned when the table has no such column.
var ErrUnknownColumn = errors.New("unknown column")

// DefaultTopN is the number of categories charted for categorical columns.
const DefaultTopN = 10

// Options tunes the chart part of an inspection.
type Options struct {
	TopN int // categorical bar length; <= 0 means DefaultTopN
	Bins int // histogram bins; 0 selects Sturges' rule
}

// Result is a column summary plus the chart to display next to it.
type Result struct {
	Summary analysis.Summary `json:"summary"`
	Chart   chart.Spec       `json:"chart"`
}

// Inspect describes column of t. Numeric columns get a histogram over every
// non-null value, categorical ones a bar of their most frequent values.
func Inspect(t *analysis.Table, column string, opt Options) (Result, error) {
	c, ok := t.Column(column)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	res := Result{Summary: analysis.Describe(c)}
	if c.IsNumeric() {
		bins := analysis.Histogram(c.Floats(), opt.Bins)
		res.Chart = chart.Histogram("Distribution of "+c.Name, c.Name, bins)
		return res, nil
	}
	n := opt.TopN
	if n <= 0 {
		n = DefaultTopN
	}
	top := analysis.TopValues(c, n)
	labels := make([]string, len(top))
	values := make([]float64, len(top))
	for i, kv := range top {
		labels[i] = kv.Value
		values[i] = float64(kv.Count)
	}
	res.Chart = chart.Bar("Top Categories in "+c.Name, c.Name, "Count", labels, values)
	return res, nil
}
