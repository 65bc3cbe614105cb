package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// VectorizerArtifact is the on-disk form of a fitted TF-IDF vectorizer.
type VectorizerArtifact struct {
	Version     string         `json:"version"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Lowercase   *bool          `json:"lowercase,omitempty"`
	SublinearTF bool           `json:"sublinear_tf,omitempty"`
}

// ClassifierArtifact is the on-disk form of a trained binary classifier.
type ClassifierArtifact struct {
	Version            string     `json:"version"`
	Kind               Kind       `json:"kind"`
	Classes            []string   `json:"classes,omitempty"`
	Coef               []float64  `json:"coef,omitempty"`
	Intercept          float64    `json:"intercept,omitempty"`
	Nodes              []TreeNode `json:"nodes,omitempty"`
	FeatureImportances []float64  `json:"feature_importances,omitempty"`
}

// BuildVectorizer validates the artifact and builds the transform.
func (a VectorizerArtifact) BuildVectorizer() (*Vectorizer, error) {
	lowercase := true
	if a.Lowercase != nil {
		lowercase = *a.Lowercase
	}
	return NewVectorizer(a.Vocabulary, a.IDF, lowercase, a.SublinearTF)
}

// BuildClassifier validates the artifact against a vocabulary of size dim.
// Weight vectors of a different length are accepted; the explainer aligns them.
func (a ClassifierArtifact) BuildClassifier(dim int) (Classifier, error) {
	cls, err := newClasses(a.Classes)
	if err != nil {
		return nil, err
	}
	switch a.Kind {
	case KindLogisticRegression:
		if len(a.Coef) == 0 {
			return nil, fmt.Errorf("%s: missing coef", a.Kind)
		}
		return &Logistic{coef: copyFloats(a.Coef), intercept: a.Intercept, classes: cls}, nil
	case KindLinearSVC:
		if len(a.Coef) == 0 {
			return nil, fmt.Errorf("%s: missing coef", a.Kind)
		}
		return &LinearSVC{coef: copyFloats(a.Coef), intercept: a.Intercept, classes: cls}, nil
	case KindDecisionTree:
		if err := validateTree(a.Nodes, dim); err != nil {
			return nil, fmt.Errorf("%s: %w", a.Kind, err)
		}
		nodes := make([]TreeNode, len(a.Nodes))
		copy(nodes, a.Nodes)
		return &Tree{nodes: nodes, importances: copyFloats(a.FeatureImportances), classes: cls}, nil
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", a.Kind)
	}
}

func copyFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
