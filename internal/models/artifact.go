package models

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ArtifactKind is the capability shape of a model artifact.
type ArtifactKind string

const (
	KindLinear       ArtifactKind = "linear"
	KindTreeEnsemble ArtifactKind = "tree_ensemble"
)

// Artifact is an exported pre-trained model. Field names follow the fitted
// attributes of the estimator it was exported from. JSON files decode too.
type Artifact struct {
	Estimator          string       `yaml:"estimator" json:"estimator"`
	Kind               ArtifactKind `yaml:"kind" json:"kind"`
	Coef               []float64    `yaml:"coef,omitempty" json:"coef,omitempty"`
	FeatureImportances []float64    `yaml:"feature_importances,omitempty" json:"feature_importances,omitempty"`
	FeatureNamesIn     []string     `yaml:"feature_names_in,omitempty" json:"feature_names_in,omitempty"`
	Intercept          *float64     `yaml:"intercept,omitempty" json:"intercept,omitempty"`
}

// Weights returns the coefficient vector for linear artifacts and the
// importance vector for ensembles.
func (a *Artifact) Weights() []float64 {
	if a.Kind == KindLinear {
		return a.Coef
	}
	return a.FeatureImportances
}

// DecodeArtifact parses and validates an artifact document. A missing kind is
// inferred from which weight vector is present.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if a.Kind == "" {
		switch {
		case len(a.Coef) > 0 && len(a.FeatureImportances) == 0:
			a.Kind = KindLinear
		case len(a.FeatureImportances) > 0 && len(a.Coef) == 0:
			a.Kind = KindTreeEnsemble
		default:
			return nil, errors.New("artifact kind is ambiguous: expected exactly one of coef or feature_importances")
		}
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	switch a.Kind {
	case KindLinear, KindTreeEnsemble:
	default:
		return fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
	w := a.Weights()
	if len(w) == 0 {
		return fmt.Errorf("%s artifact has no weights", a.Kind)
	}
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %d is not finite", i)
		}
	}
	if n := len(a.FeatureNamesIn); n > 0 && n != len(w) {
		return fmt.Errorf("feature_names_in has %d names for %d weights", n, len(w))
	}
	return nil
}
