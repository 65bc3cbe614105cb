// Package model holds the process-wide vectorizer and classifier pair.
package model

import (
	"fmt"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/features"
	"github.com/kailas-cloud/veritas/internal/domain/verdict"
)

// Info describes a loaded artifact pair.
type Info struct {
	Version        string `json:"version"`
	Kind           Kind   `json:"kind"`
	VocabularySize int    `json:"vocabulary_size"`
	WeightCount    int    `json:"weight_count"`
	Explainable    string `json:"explainable"`
}

// Model is the versioned vectorizer + classifier pair.
// A nil *Model means the artifacts failed to load; every call then returns ErrModelUnavailable.
type Model struct {
	version    string
	vectorizer *Vectorizer
	classifier Classifier
}

// New pairs a vectorizer and a classifier under one version.
func New(version string, vec *Vectorizer, clf Classifier) (*Model, error) {
	if vec == nil || clf == nil {
		return nil, fmt.Errorf("%w: vectorizer and classifier are required", domain.ErrModelUnavailable)
	}
	return &Model{version: version, vectorizer: vec, classifier: clf}, nil
}

// Load reads both artifacts and checks that their versions agree.
func Load(vectorizerPath, classifierPath string) (*Model, error) {
	var va VectorizerArtifact
	if err := readJSON(vectorizerPath, &va); err != nil {
		return nil, fmt.Errorf("%w: vectorizer: %w", domain.ErrModelUnavailable, err)
	}
	var ca ClassifierArtifact
	if err := readJSON(classifierPath, &ca); err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", domain.ErrModelUnavailable, err)
	}
	return FromArtifacts(va, ca)
}

// FromArtifacts builds a Model from decoded artifacts.
func FromArtifacts(va VectorizerArtifact, ca ClassifierArtifact) (*Model, error) {
	if va.Version != ca.Version {
		return nil, fmt.Errorf("%w: artifact version mismatch: vectorizer %q, classifier %q",
			domain.ErrModelUnavailable, va.Version, ca.Version)
	}
	vec, err := va.BuildVectorizer()
	if err != nil {
		return nil, fmt.Errorf("%w: vectorizer: %w", domain.ErrModelUnavailable, err)
	}
	clf, err := ca.BuildClassifier(vec.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", domain.ErrModelUnavailable, err)
	}
	return New(va.Version, vec, clf)
}

// Available reports whether the model can classify.
func (m *Model) Available() bool { return m != nil }

// Vectorize maps a representation string to a feature vector.
func (m *Model) Vectorize(text string) (features.Vector, error) {
	if m == nil {
		return features.Vector{}, domain.ErrModelUnavailable
	}
	return m.vectorizer.Transform(text), nil
}

// Classify vectorizes text and predicts its verdict.
func (m *Model) Classify(text string) (verdict.Verdict, features.Vector, error) {
	vec, err := m.Vectorize(text)
	if err != nil {
		return verdict.Verdict{}, features.Vector{}, err
	}
	v, err := m.classifier.Predict(vec)
	if err != nil {
		return verdict.Verdict{}, vec, fmt.Errorf("%w: %w", domain.ErrClassification, err)
	}
	return v, vec, nil
}

// Token returns the vocabulary entry for a feature index.
func (m *Model) Token(idx int) string {
	if m == nil {
		return ""
	}
	return m.vectorizer.Token(idx)
}

// Classifier exposes the classifier for weight inspection.
func (m *Model) Classifier() Classifier {
	if m == nil {
		return nil
	}
	return m.classifier
}

// Info summarizes the loaded artifacts.
func (m *Model) Info() Info {
	if m == nil {
		return Info{}
	}
	info := Info{
		Version:        m.version,
		Kind:           m.classifier.Kind(),
		VocabularySize: m.vectorizer.Size(),
		Explainable:    "magnitude",
	}
	switch c := m.classifier.(type) {
	case LinearModel:
		info.WeightCount = len(c.Coefficients())
		info.Explainable = "coefficients"
	case ImportanceModel:
		if n := len(c.FeatureImportances()); n > 0 {
			info.WeightCount = n
			info.Explainable = "importances"
		}
	}
	return info
}
