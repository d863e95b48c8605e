// Package models exposes the three pre-trained spend models: their fixed
// evaluation scores and the feature weights read from their artifacts.
package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/chart"
	"github.com/KaramelBytes/spendboard/internal/memo"
)

// ErrUnknownModel is returned for names outside the registry.
var ErrUnknownModel = errors.New("unknown model")

// ScoreRow is a precomputed evaluation result. These values are constants and
// are not derived from the artifacts.
type ScoreRow struct {
	Model string  `json:"model"`
	R2    float64 `json:"r2"`
	RMSE  float64 `json:"rmse"`
}

// Definition describes one registered model.
type Definition struct {
	Key   string       `json:"key"`
	Name  string       `json:"name"`
	File  string       `json:"file"`
	Kind  ArtifactKind `json:"kind"`
	Label string       `json:"label"`
	Notes []string     `json:"notes"`
	Score ScoreRow     `json:"score"`
}

// Definitions lists the registered models in display order.
var Definitions = []Definition{
	{
		Key: "linear", Name: "Linear Regression", File: "lr_model.json", Kind: KindLinear, Label: "Impact",
		Notes: []string{
			"Assumes linear relationship between features and spend",
			"Easy to interpret",
			"Lower accuracy due to complex customer behavior",
		},
		Score: ScoreRow{Model: "Linear Regression", R2: 0.62, RMSE: 420.5},
	},
	{
		Key: "random_forest", Name: "Random Forest", File: "rf_model.json", Kind: KindTreeEnsemble, Label: "Importance",
		Notes: []string{
			"Captures non-linear patterns",
			"Robust to noise",
			"Good balance between accuracy and stability",
		},
		Score: ScoreRow{Model: "Random Forest", R2: 0.81, RMSE: 260.3},
	},
	{
		Key: "gradient_boosting", Name: "Gradient Boosting", File: "gb_model.json", Kind: KindTreeEnsemble, Label: "Importance",
		Notes: []string{
			"Best performing model",
			"Learns complex interactions",
			"Slightly harder to interpret",
		},
		Score: ScoreRow{Model: "Gradient Boosting", R2: 0.84, RMSE: 245.7},
	},
}

// Lookup resolves a model key or display name, case-insensitively.
func Lookup(name string) (Definition, error) {
	n := strings.TrimSpace(name)
	for _, d := range Definitions {
		if strings.EqualFold(d.Key, n) || strings.EqualFold(d.Name, n) {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

// Scores returns one row per registered model, in display order.
func Scores() []ScoreRow {
	out := make([]ScoreRow, len(Definitions))
	for i, d := range Definitions {
		out[i] = d.Score
	}
	return out
}

// ScoreChart is the R² comparison across models.
func ScoreChart() chart.Spec {
	rows := Scores()
	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Model
		values[i] = r.R2
	}
	return chart.Bar("Model Accuracy Comparison", "Model", "R² Score", labels, values)
}

// ArtifactError reports an artifact that could not be loaded. It is fatal to a
// dashboard render.
type ArtifactError struct {
	Model string
	Path  string
	Err   error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("load model %s (%s): %v", e.Model, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// UserMessage is the message shown when a render halts on this error.
func (e *ArtifactError) UserMessage() string {
	return "Cannot load model: " + e.Path
}

// Registry loads artifacts from a directory, each at most once.
type Registry struct {
	dir    string
	logger *slog.Logger
	cache  *memo.Memo[*Artifact]
}

// NewRegistry returns a registry reading artifacts from dir. logger and rec may be nil.
func NewRegistry(dir string, logger *slog.Logger, rec memo.Recorder) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{dir: dir, logger: logger.With("component", "models")}
	r.cache = memo.New("models", r.read, rec)
	return r
}

// Path returns where the artifact for def is read from.
func (r *Registry) Path(def Definition) string {
	return filepath.Join(r.dir, def.File)
}

// Load returns the artifact for a model key or name.
func (r *Registry) Load(ctx context.Context, name string) (*Artifact, error) {
	def, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	a, err := r.cache.Get(ctx, def.Key)
	if err != nil {
		return nil, &ArtifactError{Model: def.Name, Path: r.Path(def), Err: err}
	}
	return a, nil
}

func (r *Registry) read(_ context.Context, key string) (*Artifact, error) {
	def, err := Lookup(key)
	if err != nil {
		return nil, err
	}
	path := r.Path(def)
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("artifact read failed", "model", def.Name, "path", path, "error", err)
		return nil, err
	}
	a, err := DecodeArtifact(data)
	if err != nil {
		r.logger.Warn("artifact invalid", "model", def.Name, "path", path, "error", err)
		return nil, err
	}
	if a.Kind != def.Kind {
		return nil, fmt.Errorf("expected a %s artifact, got %s", def.Kind, a.Kind)
	}
	r.logger.Debug("artifact loaded", "model", def.Name, "estimator", a.Estimator, "weights", len(a.Weights()))
	return a, nil
}

// Alignment records how feature names were attached to weights.
type Alignment string

const (
	// AlignDeclared uses the feature names stored in the artifact.
	AlignDeclared Alignment = "declared"
	// AlignPositional takes the leading numeric columns of the customers table.
	// Reordering those columns silently mislabels the weights.
	AlignPositional Alignment = "positional"
)

// FeatureWeight is one named weight.
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Explanation is a model's weights, highest first.
type Explanation struct {
	Model     string          `json:"model"`
	Label     string          `json:"label"`
	Kind      ArtifactKind    `json:"kind"`
	Alignment Alignment       `json:"alignment"`
	Weights   []FeatureWeight `json:"weights"`
	// Missing lists declared features the customers table does not have.
	Missing []string `json:"missing,omitempty"`
	Notes   []string `json:"notes"`
}

// Chart returns the weights as a bar chart.
func (e Explanation) Chart() chart.Spec {
	labels := make([]string, len(e.Weights))
	values := make([]float64, len(e.Weights))
	for i, w := range e.Weights {
		labels[i] = w.Feature
		values[i] = w.Weight
	}
	title := "Feature Importance"
	if e.Kind == KindLinear {
		title = "Feature Impact"
	}
	return chart.Bar(title, "Feature", e.Label, labels, values)
}

// Explain names the weights of a model and sorts them by descending weight,
// keeping file order among equal weights.
func (r *Registry) Explain(ctx context.Context, name string, customers *analysis.Table) (Explanation, error) {
	def, err := Lookup(name)
	if err != nil {
		return Explanation{}, err
	}
	a, err := r.Load(ctx, def.Key)
	if err != nil {
		return Explanation{}, err
	}
	weights := a.Weights()
	names, align := featureNames(a, customers, len(weights))

	ex := Explanation{Model: def.Name, Label: def.Label, Kind: a.Kind, Alignment: align, Notes: def.Notes}
	ex.Weights = make([]FeatureWeight, len(weights))
	for i, w := range weights {
		ex.Weights[i] = FeatureWeight{Feature: names[i], Weight: w}
	}
	sort.SliceStable(ex.Weights, func(i, j int) bool { return ex.Weights[i].Weight > ex.Weights[j].Weight })

	if align == AlignDeclared && customers != nil {
		for _, n := range names {
			if !customers.HasColumn(n) {
				ex.Missing = append(ex.Missing, n)
			}
		}
		if len(ex.Missing) > 0 {
			r.logger.Warn("declared features absent from customers", "model", def.Name, "missing", ex.Missing)
		}
	}
	return ex, nil
}

func featureNames(a *Artifact, customers *analysis.Table, k int) ([]string, Alignment) {
	if len(a.FeatureNamesIn) == k {
		return a.FeatureNamesIn, AlignDeclared
	}
	var numeric []string
	if customers != nil {
		numeric = customers.NumericColumns()
	}
	names := make([]string, k)
	for i := range names {
		if i < len(numeric) {
			names[i] = numeric[i]
		} else {
			names[i] = fmt.Sprintf("feature_%d", i)
		}
	}
	return names, AlignPositional
}
