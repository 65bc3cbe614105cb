package explain

// Vocabulary maps feature indices back to tokens.
type Vocabulary interface {
	Token(idx int) string
}

// LinearModel exposes per-feature coefficients.
type LinearModel interface {
	Coefficients() []float64
}

// ImportanceModel exposes per-feature importances (tree models).
type ImportanceModel interface {
	FeatureImportances() []float64
}
