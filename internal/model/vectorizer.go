package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/kailas-cloud/veritas/internal/domain/features"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vectorizer is a fitted TF-IDF transform over a fixed vocabulary.
// It is read-only after construction and safe for concurrent use.
type Vectorizer struct {
	vocabulary  map[string]int
	tokens      []string
	idf         []float64
	lowercase   bool
	sublinearTF bool
}

// NewVectorizer validates and builds a Vectorizer.
// idf must have one entry per vocabulary index.
func NewVectorizer(vocabulary map[string]int, idf []float64, lowercase, sublinearTF bool) (*Vectorizer, error) {
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}
	if len(idf) != len(vocabulary) {
		return nil, fmt.Errorf("idf has %d entries, vocabulary has %d", len(idf), len(vocabulary))
	}
	tokens := make([]string, len(vocabulary))
	for tok, idx := range vocabulary {
		if idx < 0 || idx >= len(tokens) {
			return nil, fmt.Errorf("token %q has index %d outside [0,%d)", tok, idx, len(tokens))
		}
		if tokens[idx] != "" {
			return nil, fmt.Errorf("index %d assigned to both %q and %q", idx, tokens[idx], tok)
		}
		tokens[idx] = tok
	}
	vocab := make(map[string]int, len(vocabulary))
	for k, v := range vocabulary {
		vocab[k] = v
	}
	idfCopy := make([]float64, len(idf))
	copy(idfCopy, idf)
	return &Vectorizer{
		vocabulary:  vocab,
		tokens:      tokens,
		idf:         idfCopy,
		lowercase:   lowercase,
		sublinearTF: sublinearTF,
	}, nil
}

// Size returns the vocabulary size.
func (v *Vectorizer) Size() int { return len(v.tokens) }

// Token returns the vocabulary entry at idx, or "" when out of range.
func (v *Vectorizer) Token(idx int) string {
	if idx < 0 || idx >= len(v.tokens) {
		return ""
	}
	return v.tokens[idx]
}

// Transform maps text to an L2-normalised tf-idf vector.
// Out-of-vocabulary tokens are ignored.
func (v *Vectorizer) Transform(text string) features.Vector {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	counts := make(map[int]float64)
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	var norm float64
	for idx, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.idf[idx]
		counts[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx, w := range counts {
			counts[idx] = w / norm
		}
	}
	return features.New(len(v.tokens), counts)
}
