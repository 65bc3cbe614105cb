package explain

import (
	"math"
	"sort"

	"github.com/kailas-cloud/veritas/internal/domain/explanation"
	"github.com/kailas-cloud/veritas/internal/domain/features"
)

// Service attributes a classification to its most influential tokens.
// Weights are resolved once; the service is read-only and safe for concurrent use.
type Service struct {
	vocab   Vocabulary
	weights []float64
	mode    explanation.Mode
}

// New picks the weight source from the classifier: coefficients, then importances,
// else the degraded magnitude mode.
func New(vocab Vocabulary, classifier any) *Service {
	s := &Service{vocab: vocab, mode: explanation.ModeMagnitude}
	switch c := classifier.(type) {
	case LinearModel:
		if w := c.Coefficients(); len(w) > 0 {
			s.weights, s.mode = w, explanation.ModeCoefficients
		}
	case ImportanceModel:
		if w := c.FeatureImportances(); len(w) > 0 {
			s.weights, s.mode = w, explanation.ModeImportances
		}
	}
	return s
}

// Mode returns the weighting mode in use.
func (s *Service) Mode() explanation.Mode { return s.mode }

// Explain returns at most k contributions sorted by descending absolute score.
// When the weight vector is shorter than the feature vector, the remainder is unweighted.
func (s *Service) Explain(vec features.Vector, k int) explanation.Explanation {
	if k <= 0 {
		k = explanation.DefaultTopK
	}

	entries := vec.Entries()
	contribs := make([]explanation.Contribution, 0, len(entries))
	for _, e := range entries {
		score := e.Value
		if e.Index < len(s.weights) {
			score = e.Value * s.weights[e.Index]
		}
		if math.IsNaN(score) || math.Abs(score) < explanation.NoiseThreshold {
			continue
		}
		contribs = append(contribs, explanation.Contribution{
			Token:     s.vocab.Token(e.Index),
			Score:     score,
			RawWeight: e.Value,
		})
	}

	// entries are index-ordered, so ties keep vocabulary order
	sort.SliceStable(contribs, func(i, j int) bool {
		return math.Abs(contribs[i].Score) > math.Abs(contribs[j].Score)
	})
	if len(contribs) > k {
		contribs = contribs[:k]
	}
	return explanation.New(contribs, s.mode)
}
