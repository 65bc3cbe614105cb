package explanation

import "math"

// DefaultTopK is the number of contributions kept when the caller does not say otherwise.
const DefaultTopK = 3

// NoiseThreshold drops contributions whose magnitude is numerical noise.
const NoiseThreshold = 1e-9

// Contribution is the influence of one vocabulary token on a classification.
type Contribution struct {
	Token string
	// Score is feature value × feature weight (or the raw value in degraded mode).
	Score float64
	// RawWeight is the tf-idf feature value.
	RawWeight float64
}

// Mode tells how contributions were weighted.
type Mode string

const (
	ModeCoefficients Mode = "coefficients"
	ModeImportances  Mode = "importances"
	// ModeMagnitude is the degraded heuristic: contribution = feature value.
	ModeMagnitude Mode = "magnitude"
)

// Explanation is an ordered list of at most k contributions,
// sorted by non-increasing absolute score.
type Explanation struct {
	items []Contribution
	mode  Mode
}

// New wraps already-ordered contributions.
func New(items []Contribution, mode Mode) Explanation {
	cp := make([]Contribution, len(items))
	copy(cp, items)
	return Explanation{items: cp, mode: mode}
}

// Items returns a copy of the contributions.
func (e Explanation) Items() []Contribution {
	out := make([]Contribution, len(e.items))
	copy(out, e.items)
	return out
}

// Len returns the number of contributions.
func (e Explanation) Len() int { return len(e.items) }

// Mode returns the weighting mode.
func (e Explanation) Mode() Mode { return e.mode }

// Degraded reports whether the explanation is heuristic.
func (e Explanation) Degraded() bool { return e.mode == ModeMagnitude }

// Sorted reports whether contributions are in non-increasing absolute order.
func (e Explanation) Sorted() bool {
	for i := 1; i < len(e.items); i++ {
		if math.Abs(e.items[i].Score) > math.Abs(e.items[i-1].Score) {
			return false
		}
	}
	return true
}
