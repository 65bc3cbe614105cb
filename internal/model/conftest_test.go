package model

// testArtifacts returns a tiny consistent artifact pair:
// vocabulary {fake, hoax, news, official, report}.
func testArtifacts(kind Kind) (VectorizerArtifact, ClassifierArtifact) {
	va := VectorizerArtifact{
		Version: "test-1",
		Vocabulary: map[string]int{
			"fake": 0, "hoax": 1, "news": 2, "official": 3, "report": 4,
		},
		IDF: []float64{2, 2, 1, 1.5, 1.5},
	}
	ca := ClassifierArtifact{
		Version: "test-1",
		Kind:    kind,
		Classes: []string{"0", "1"},
	}
	switch kind {
	case KindLogisticRegression, KindLinearSVC:
		ca.Coef = []float64{-3, -2, 0.1, 2.5, 1.5}
		ca.Intercept = 0.2
	case KindDecisionTree:
		ca.Nodes = []TreeNode{
			{Feature: 0, Threshold: 0.1, Left: 1, Right: 2},
			{Feature: -1, Value: []float64{1, 3}},
			{Feature: -1, Value: []float64{9, 1}},
		}
		ca.FeatureImportances = []float64{1, 0, 0, 0, 0}
	}
	return va, ca
}
