package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/chart"
	"github.com/KaramelBytes/spendboard/internal/fixtures"
	"github.com/KaramelBytes/spendboard/internal/insights"
	"github.com/KaramelBytes/spendboard/internal/models"
	"github.com/KaramelBytes/spendboard/internal/parser"
)

func newDashboard(t *testing.T) (*Dashboard, string, string) {
	t.Helper()
	dataDir, modelsDir, err := fixtures.Write(t.TempDir())
	require.NoError(t, err)
	loader := parser.NewLoader(analysis.DefaultOptions(), nil, nil)
	reg := models.NewRegistry(modelsDir, nil, nil)
	return New(loader, reg, Settings{DataDir: dataDir}, nil, nil), dataDir, modelsDir
}

func TestRenderDefaultSelection(t *testing.T) {
	d, _, _ := newDashboard(t)
	p, err := d.Render(context.Background(), Selection{})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, Selection{Dataset: "Customers", Column: "customer_id", Model: "Linear Regression"}, p.Selection)
	assert.Equal(t, []string{"Customers", "Sales", "Products", "Stores", "Promotion Sales"}, p.Datasets)

	require.Len(t, p.Overview, 2)
	assert.Equal(t, "Customers", p.Overview[0].Name)
	assert.Equal(t, 6, p.Overview[0].Rows)
	assert.Equal(t, 5, p.Overview[0].Cols)
	assert.Len(t, p.Overview[0].Head, 5)
	assert.Equal(t, "Sales", p.Overview[1].Name)

	require.NotNil(t, p.Inspection)
	assert.Equal(t, chart.KindBar, p.Inspection.Chart.Kind)

	assert.Len(t, p.Scores, 3)
	assert.Equal(t, "Model Accuracy Comparison", p.ScoreChart.Title)

	ex := p.Explanation
	assert.Equal(t, "Impact", ex.Label)
	assert.Equal(t, models.AlignPositional, ex.Alignment)
	assert.Equal(t, []models.FeatureWeight{
		{Feature: "annual_spend", Weight: 18.25},
		{Feature: "age", Weight: 4.5},
		{Feature: "visits", Weight: -2},
	}, ex.Weights)

	require.Len(t, p.Insights, 3)
	assert.Len(t, p.Takeaways, 4)
}

func TestRenderSelectionSwitchResetsColumn(t *testing.T) {
	d, _, _ := newDashboard(t)
	ctx := context.Background()

	p, err := d.Render(ctx, Selection{Dataset: "Customers", Column: "annual_spend", Model: "gradient_boosting"})
	require.NoError(t, err)
	assert.Equal(t, "annual_spend", p.Selection.Column)
	assert.Equal(t, chart.KindHistogram, p.Inspection.Chart.Kind)
	assert.Equal(t, "Gradient Boosting", p.Selection.Model)
	assert.Equal(t, models.AlignDeclared, p.Explanation.Alignment)
	assert.Equal(t, "annual_spend", p.Explanation.Weights[0].Feature)

	p, err = d.Render(ctx, Selection{Dataset: "Stores", Column: "annual_spend", Model: "nope"})
	require.NoError(t, err)
	assert.Equal(t, "store_id", p.Selection.Column)
	assert.Equal(t, []string{"store_id", "city", "sqft"}, p.Columns)
	assert.Equal(t, DefaultModel, p.Selection.Model)
}

func TestRenderMissingFileIsFatal(t *testing.T) {
	d, dataDir, _ := newDashboard(t)
	missing := filepath.Join(dataDir, "stores.xls")
	require.NoError(t, os.Remove(missing))

	_, err := d.Render(context.Background(), Selection{})
	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "File not found: "+missing, fe.Message)
	assert.ErrorIs(t, err, parser.ErrNotFound)
}

func TestRenderUnreadableFileIsFatal(t *testing.T) {
	d, dataDir, _ := newDashboard(t)
	bad := filepath.Join(dataDir, "products.xls")
	require.NoError(t, os.WriteFile(bad, []byte{0xD0, 0xCF, 0x11, 0xE0, 0x00, 0x01}, 0o644))

	_, err := d.Render(context.Background(), Selection{})
	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Cannot read file: "+bad, fe.Message)
}

func TestRenderMissingArtifactIsFatal(t *testing.T) {
	d, _, modelsDir := newDashboard(t)
	require.NoError(t, os.Remove(filepath.Join(modelsDir, "rf_model.json")))

	_, err := d.Render(context.Background(), Selection{Model: "Random Forest"})
	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.True(t, strings.HasPrefix(fe.Message, "Cannot load model: "))

	// a broken artifact halts the page whichever model is selected
	_, err = d.Render(context.Background(), Selection{Model: "linear"})
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Cannot load model: "+filepath.Join(modelsDir, "rf_model.json"), fe.Message)
}

func TestRenderMissingUnselectedArtifactIsFatal(t *testing.T) {
	d, _, modelsDir := newDashboard(t)
	require.NoError(t, os.Remove(filepath.Join(modelsDir, "gb_model.json")))

	_, err := d.Render(context.Background(), Selection{})
	var fe *FatalError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Cannot load model: "+filepath.Join(modelsDir, "gb_model.json"), fe.Message)
}

func TestRenderWithoutStoreIDSkipsVolume(t *testing.T) {
	d, dataDir, _ := newDashboard(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "sales_header.xls"), []byte("sale_id,total\n1,10\n"), 0o644))

	p, err := d.Render(context.Background(), Selection{})
	require.NoError(t, err)
	_, found := insights.Find(p.Insights, insights.KeyStoreVolume)
	assert.False(t, found)
	assert.Len(t, p.Insights, 2)
}

func TestPageMarkdown(t *testing.T) {
	d, _, _ := newDashboard(t)
	p, err := d.Render(context.Background(), Selection{Dataset: "Sales", Column: "total", Model: "Random Forest"})
	require.NoError(t, err)

	md := p.Markdown()
	for _, want := range []string{
		"## Dataset Overview",
		"### Customers",
		"Rows: 6, Columns: 5",
		"- total: numeric (count 6)",
		"**Distribution of total**",
		"| Random Forest | 0.81 | 260.3 |",
		"## Model Insights: Random Forest",
		"- Captures non-linear patterns",
		"| Feature | Importance |",
		"Feature alignment: positional",
		"### Volume by Store",
		"## Business Takeaways",
	} {
		assert.Contains(t, md, want)
	}
}

func TestDatasetAndColumnHelpers(t *testing.T) {
	d, _, _ := newDashboard(t)
	ctx := context.Background()

	rep, err := d.Dataset(ctx, "stores", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Rows)

	res, err := d.Column(ctx, "Customers", "region")
	require.NoError(t, err)
	assert.Equal(t, "north", *res.Summary.Top)

	_, err = d.Explain(ctx, "svm")
	assert.ErrorIs(t, err, models.ErrUnknownModel)

	list, err := d.Insights(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
