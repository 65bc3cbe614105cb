package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/verdict"
)

func mustModel(t *testing.T, kind Kind) *Model {
	t.Helper()
	va, ca := testArtifacts(kind)
	m, err := FromArtifacts(va, ca)
	if err != nil {
		t.Fatalf("FromArtifacts: %v", err)
	}
	return m
}

func TestClassify_Logistic(t *testing.T) {
	m := mustModel(t, KindLogisticRegression)

	rv, _, err := m.Classify("official report")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if rv.Label() != verdict.LabelReal || rv.Kind() != verdict.ScoreCalibrated {
		t.Errorf("got %s/%s, want REAL/calibrated", rv.Label(), rv.Kind())
	}
	if rv.Trust() <= 0.5 || rv.Trust() > 1 {
		t.Errorf("trust = %v", rv.Trust())
	}

	fake, _, err := m.Classify("fake hoax")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if fake.Label() != verdict.LabelFake || fake.Trust() >= 0.5 || fake.Trust() < 0 {
		t.Errorf("got %s %v, want FAKE < 0.5", fake.Label(), fake.Trust())
	}
}

func TestClassify_SwappedClasses(t *testing.T) {
	va, ca := testArtifacts(KindLogisticRegression)
	ca.Classes = []string{"REAL", "FAKE"}
	m, err := FromArtifacts(va, ca)
	if err != nil {
		t.Fatalf("FromArtifacts: %v", err)
	}
	v, _, _ := m.Classify("official report")
	if v.Label() != verdict.LabelFake || v.Trust() >= 0.5 {
		t.Errorf("got %s %v, want FAKE with low trust", v.Label(), v.Trust())
	}
}

func TestClassify_LinearSVCIsHard(t *testing.T) {
	m := mustModel(t, KindLinearSVC)
	v, _, err := m.Classify("official report")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if v.Kind() != verdict.ScoreHard || v.Trust() != 1 || v.Label() != verdict.LabelReal {
		t.Errorf("got %+v, want hard REAL", v)
	}
	v, _, _ = m.Classify("fake hoax")
	if v.Trust() != 0 || v.Label() != verdict.LabelFake {
		t.Errorf("got %+v, want hard FAKE", v)
	}
}

func TestClassify_Tree(t *testing.T) {
	m := mustModel(t, KindDecisionTree)

	v, _, err := m.Classify("official report")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if v.Label() != verdict.LabelReal || v.Trust() != 0.75 {
		t.Errorf("got %s %v, want REAL 0.75", v.Label(), v.Trust())
	}

	v, _, _ = m.Classify("fake")
	if v.Label() != verdict.LabelFake || v.Trust() != 0.1 {
		t.Errorf("got %s %v, want FAKE 0.1", v.Label(), v.Trust())
	}
}

func TestFromArtifacts_VersionMismatch(t *testing.T) {
	va, ca := testArtifacts(KindLogisticRegression)
	ca.Version = "test-2"
	_, err := FromArtifacts(va, ca)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestFromArtifacts_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ClassifierArtifact)
	}{
		{"unknown kind", func(c *ClassifierArtifact) { c.Kind = "naive_bayes" }},
		{"missing coef", func(c *ClassifierArtifact) { c.Coef = nil }},
		{"bad classes", func(c *ClassifierArtifact) { c.Classes = []string{"1", "1"} }},
		{"three classes", func(c *ClassifierArtifact) { c.Classes = []string{"0", "1", "2"} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			va, ca := testArtifacts(KindLogisticRegression)
			tc.mutate(&ca)
			if _, err := FromArtifacts(va, ca); !errors.Is(err, domain.ErrModelUnavailable) {
				t.Errorf("expected ErrModelUnavailable, got %v", err)
			}
		})
	}
}

func TestFromArtifacts_InvalidTree(t *testing.T) {
	va, ca := testArtifacts(KindDecisionTree)
	ca.Nodes[0].Left = 0
	if _, err := FromArtifacts(va, ca); err == nil {
		t.Error("expected error for cyclic tree")
	}
}

func TestNilModel(t *testing.T) {
	var m *Model
	if m.Available() {
		t.Error("nil model must be unavailable")
	}
	if _, _, err := m.Classify("anything"); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
	if m.Token(0) != "" || m.Classifier() != nil {
		t.Error("nil model must expose nothing")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	va, ca := testArtifacts(KindLogisticRegression)
	vp := writeArtifact(t, dir, "vectorizer.json", va)
	cp := writeArtifact(t, dir, "classifier.json", ca)

	m, err := Load(vp, cp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	info := m.Info()
	if info.Version != "test-1" || info.VocabularySize != 5 || info.WeightCount != 5 || info.Explainable != "coefficients" {
		t.Errorf("Info() = %+v", info)
	}
	if m.Token(3) != "official" {
		t.Errorf("Token(3) = %q", m.Token(3))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), "also-missing.json")
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func writeArtifact(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}
