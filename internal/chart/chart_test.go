package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/spendboard/internal/analysis"
)

func TestHistogramSpec(t *testing.T) {
	bins := analysis.Histogram([]float64{1, 2, 3, 4}, 2)
	s := Histogram("Distribution of age", "age", bins)
	assert.Equal(t, KindHistogram, s.Kind)
	assert.Equal(t, "Frequency", s.YLabel)
	assert.Equal(t, []float64{2, 2}, s.Values)
	assert.Len(t, s.Labels, 2)
	assert.False(t, s.Empty())
}

func TestRenderKinds(t *testing.T) {
	specs := []Spec{
		Histogram("Distribution of annual_spend", "annual_spend", analysis.Histogram([]float64{5, 10, 15}, 0)),
		Bar("Top Categories in region", "region", "Count", []string{"north", "south"}, []float64{3, 2}),
		Pie("Promotion Contribution", []string{"units", "revenue"}, []float64{40, 60}),
	}
	for _, s := range specs {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, s), s.Title)
		out := buf.String()
		assert.True(t, strings.Contains(out, s.Title), "title missing for %s", s.Kind)
		assert.Contains(t, out, "echarts")
	}
}

func TestRenderEmptyAndMismatched(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Bar("Nothing", "", "", nil, nil))
	assert.True(t, errors.Is(err, ErrEmpty))

	err = Render(&buf, Bar("Broken", "", "", []string{"a"}, []float64{1, 2}))
	assert.Error(t, err)

	err = Render(&buf, Spec{Kind: "radar", Title: "x", Labels: []string{"a"}, Values: []float64{1}})
	assert.Error(t, err)
}
