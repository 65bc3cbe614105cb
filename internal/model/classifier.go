package model

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/veritas/internal/domain/features"
	"github.com/kailas-cloud/veritas/internal/domain/verdict"
)

// Kind names a supported classifier family.
type Kind string

const (
	KindLogisticRegression Kind = "logistic_regression"
	KindLinearSVC          Kind = "linear_svc"
	KindDecisionTree       Kind = "decision_tree"
)

// Classifier predicts a verdict for a feature vector.
type Classifier interface {
	Kind() Kind
	Predict(v features.Vector) (verdict.Verdict, error)
}

// LinearModel is implemented by classifiers that expose per-feature coefficients.
type LinearModel interface {
	Coefficients() []float64
}

// ImportanceModel is implemented by classifiers that expose per-feature importances.
type ImportanceModel interface {
	FeatureImportances() []float64
}

// classes maps the binary positive/negative slots onto labels.
// positiveIsReal is true when the second class (decision > 0) is REAL.
type classes struct {
	positiveIsReal bool
}

func newClasses(labels []string) (classes, error) {
	if len(labels) == 0 {
		return classes{positiveIsReal: true}, nil
	}
	if len(labels) != 2 {
		return classes{}, fmt.Errorf("expected 2 classes, got %d", len(labels))
	}
	first, err := parseLabel(labels[0])
	if err != nil {
		return classes{}, err
	}
	second, err := parseLabel(labels[1])
	if err != nil {
		return classes{}, err
	}
	if first == second {
		return classes{}, fmt.Errorf("duplicate class %q", first)
	}
	return classes{positiveIsReal: second == verdict.LabelReal}, nil
}

// parseLabel accepts REAL/FAKE and the 1/0 encoding used by the training data.
func parseLabel(s string) (verdict.Label, error) {
	switch s {
	case "REAL", "real", "1":
		return verdict.LabelReal, nil
	case "FAKE", "fake", "0":
		return verdict.LabelFake, nil
	default:
		return "", fmt.Errorf("unknown class label %q", s)
	}
}

func (c classes) label(positive bool) verdict.Label {
	if positive == c.positiveIsReal {
		return verdict.LabelReal
	}
	return verdict.LabelFake
}

func (c classes) realProbability(pPositive float64) float64 {
	if c.positiveIsReal {
		return pPositive
	}
	return 1 - pPositive
}

// Logistic is a logistic-regression classifier with calibrated probabilities.
type Logistic struct {
	coef      []float64
	intercept float64
	classes   classes
}

func (m *Logistic) Kind() Kind { return KindLogisticRegression }

func (m *Logistic) Coefficients() []float64 { return m.coef }

func (m *Logistic) Predict(v features.Vector) (verdict.Verdict, error) {
	d := v.Dot(m.coef) + m.intercept
	p := sigmoid(d)
	if math.IsNaN(p) {
		return verdict.Verdict{}, fmt.Errorf("non-finite decision value %v", d)
	}
	return verdict.New(m.classes.label(d > 0), m.classes.realProbability(p), verdict.ScoreCalibrated)
}

// LinearSVC is a linear SVM: it has a decision rule but no probabilities.
type LinearSVC struct {
	coef      []float64
	intercept float64
	classes   classes
}

func (m *LinearSVC) Kind() Kind { return KindLinearSVC }

func (m *LinearSVC) Coefficients() []float64 { return m.coef }

func (m *LinearSVC) Predict(v features.Vector) (verdict.Verdict, error) {
	d := v.Dot(m.coef) + m.intercept
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return verdict.Verdict{}, fmt.Errorf("non-finite decision value %v", d)
	}
	return verdict.Hard(m.classes.label(d > 0)), nil
}

// TreeNode is one node of a fitted decision tree.
// Leaves have Feature < 0; Value holds per-class sample counts.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"`
}

// Tree is a decision-tree classifier; leaf class frequencies act as probabilities.
type Tree struct {
	nodes       []TreeNode
	importances []float64
	classes     classes
}

func (m *Tree) Kind() Kind { return KindDecisionTree }

// FeatureImportances returns nil when the artifact carried none.
func (m *Tree) FeatureImportances() []float64 { return m.importances }

func (m *Tree) Predict(v features.Vector) (verdict.Verdict, error) {
	node := 0
	for steps := 0; steps <= len(m.nodes); steps++ {
		n := m.nodes[node]
		if n.Feature < 0 {
			return m.leafVerdict(n)
		}
		if v.At(n.Feature) <= n.Threshold {
			node = n.Left
		} else {
			node = n.Right
		}
	}
	return verdict.Verdict{}, fmt.Errorf("tree walk did not reach a leaf")
}

func (m *Tree) leafVerdict(n TreeNode) (verdict.Verdict, error) {
	total := n.Value[0] + n.Value[1]
	if total <= 0 {
		return verdict.Verdict{}, fmt.Errorf("leaf has no samples")
	}
	pPositive := n.Value[1] / total
	return verdict.New(m.classes.label(n.Value[1] > n.Value[0]), m.classes.realProbability(pPositive), verdict.ScoreCalibrated)
}

func validateTree(nodes []TreeNode, dim int) error {
	if len(nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range nodes {
		if n.Feature < 0 {
			if len(n.Value) != 2 {
				return fmt.Errorf("leaf %d: expected 2 class counts, got %d", i, len(n.Value))
			}
			continue
		}
		if n.Feature >= dim {
			return fmt.Errorf("node %d: feature %d outside vocabulary", i, n.Feature)
		}
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
