package models

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/spendboard/internal/analysis"
)

func writeArtifact(t *testing.T, dir, file, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644))
}

func customers(header []string, row []string) *analysis.Table {
	return analysis.NewTable("customers.xls", header, [][]string{row}, analysis.DefaultOptions())
}

func TestScoresFixed(t *testing.T) {
	rows := Scores()
	require.Len(t, rows, 3)
	assert.Equal(t, []ScoreRow{
		{Model: "Linear Regression", R2: 0.62, RMSE: 420.5},
		{Model: "Random Forest", R2: 0.81, RMSE: 260.3},
		{Model: "Gradient Boosting", R2: 0.84, RMSE: 245.7},
	}, rows)

	sc := ScoreChart()
	assert.Equal(t, "Model Accuracy Comparison", sc.Title)
	assert.Equal(t, []float64{0.62, 0.81, 0.84}, sc.Values)
}

func TestLookup(t *testing.T) {
	d, err := Lookup("random forest")
	require.NoError(t, err)
	assert.Equal(t, "random_forest", d.Key)
	assert.Equal(t, "Importance", d.Label)

	d, err = Lookup("linear")
	require.NoError(t, err)
	assert.Equal(t, "Impact", d.Label)

	_, err = Lookup("svm")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestExplainLinearSingleCoefficient(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "lr_model.json", `{"estimator": "LinearRegression", "coef": [3.25]}`)
	r := NewRegistry(dir, nil, nil)

	ex, err := r.Explain(context.Background(), "linear", customers([]string{"age", "region"}, []string{"30", "north"}))
	require.NoError(t, err)
	assert.Equal(t, AlignPositional, ex.Alignment)
	assert.Equal(t, "Impact", ex.Label)
	assert.Equal(t, []FeatureWeight{{Feature: "age", Weight: 3.25}}, ex.Weights)
}

func TestExplainSortedStable(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "rf_model.json", "estimator: RandomForestRegressor\nfeature_importances: [0.1, 0.4, 0.1, 0.4]\n")
	r := NewRegistry(dir, nil, nil)
	tbl := customers([]string{"age", "visits", "region", "tenure", "basket"}, []string{"1", "2", "x", "3", "4"})

	ex, err := r.Explain(context.Background(), "Random Forest", tbl)
	require.NoError(t, err)
	require.Len(t, ex.Weights, 4)
	got := []string{ex.Weights[0].Feature, ex.Weights[1].Feature, ex.Weights[2].Feature, ex.Weights[3].Feature}
	assert.Equal(t, []string{"visits", "basket", "age", "tenure"}, got)
	assert.Equal(t, "Feature Importance", ex.Chart().Title)
}

func TestExplainPositionalShortTable(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "gb_model.json", `{"feature_importances": [0.2, 0.5, 0.3]}`)
	r := NewRegistry(dir, nil, nil)

	ex, err := r.Explain(context.Background(), "gradient_boosting", customers([]string{"age", "region"}, []string{"1", "x"}))
	require.NoError(t, err)
	assert.Equal(t, []FeatureWeight{
		{Feature: "feature_1", Weight: 0.5},
		{Feature: "feature_2", Weight: 0.3},
		{Feature: "age", Weight: 0.2},
	}, ex.Weights)
}

// Positional alignment mislabels weights once the source columns move; the
// declared schema in the artifact does not.
func TestExplainDeclaredSurvivesColumnReorder(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "lr_model.json", `{"coef": [1.5, -0.5], "feature_names_in": ["visits", "age"]}`)
	r := NewRegistry(dir, nil, nil)

	reordered := customers([]string{"age", "visits"}, []string{"30", "4"})
	ex, err := r.Explain(context.Background(), "linear", reordered)
	require.NoError(t, err)
	assert.Equal(t, AlignDeclared, ex.Alignment)
	assert.Equal(t, []FeatureWeight{{Feature: "visits", Weight: 1.5}, {Feature: "age", Weight: -0.5}}, ex.Weights)
	assert.Empty(t, ex.Missing)

	ex, err = r.Explain(context.Background(), "linear", customers([]string{"age"}, []string{"30"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"visits"}, ex.Missing)
}

func TestLoadFailuresAreFatalAndRetried(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(dir, nil, nil)

	_, err := r.Load(context.Background(), "linear")
	var ae *ArtifactError
	require.True(t, errors.As(err, &ae))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "Cannot load model: "+filepath.Join(dir, "lr_model.json"), ae.UserMessage())

	writeArtifact(t, dir, "lr_model.json", `{"coef": [1]}`)
	a, err := r.Load(context.Background(), "linear")
	require.NoError(t, err)
	b, err := r.Load(context.Background(), "Linear Regression")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestLoadRejectsWrongKind(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "rf_model.json", `{"coef": [1, 2]}`)
	_, err := NewRegistry(dir, nil, nil).Load(context.Background(), "random_forest")
	assert.Error(t, err)
}

func TestDecodeArtifactValidation(t *testing.T) {
	cases := map[string]string{
		"ambiguous":      `{"coef": [1], "feature_importances": [1]}`,
		"empty":          `{"estimator": "x"}`,
		"names mismatch": `{"coef": [1, 2], "feature_names_in": ["a"]}`,
		"unknown field":  `{"coef": [1], "n_estimators": 100}`,
		"not finite":     "coef: [.nan]\n",
		"bad kind":       `{"kind": "svm", "coef": [1]}`,
	}
	for name, body := range cases {
		_, err := DecodeArtifact([]byte(body))
		assert.Error(t, err, name)
	}

	a, err := DecodeArtifact([]byte(`{"kind": "linear", "coef": [0.5], "intercept": 12}`))
	require.NoError(t, err)
	require.NotNil(t, a.Intercept)
	assert.Equal(t, 12.0, *a.Intercept)
}
