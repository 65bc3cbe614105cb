package features

import "sort"

// Entry is one non-zero component of a Vector.
type Entry struct {
	Index int
	Value float64
}

// Vector is a sparse vector over a fixed vocabulary.
// Entries are sorted by Index and never contain zero values.
type Vector struct {
	dim     int
	entries []Entry
}

// New builds a Vector of dimension dim from index→value pairs.
// Zero values and indices outside [0, dim) are dropped.
func New(dim int, values map[int]float64) Vector {
	entries := make([]Entry, 0, len(values))
	for idx, v := range values {
		if idx < 0 || idx >= dim || v == 0 {
			continue
		}
		entries = append(entries, Entry{Index: idx, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	return Vector{dim: dim, entries: entries}
}

// Dim returns the vocabulary size.
func (v Vector) Dim() int { return v.dim }

// Entries returns a copy of the non-zero components.
func (v Vector) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// NNZ returns the number of non-zero components.
func (v Vector) NNZ() int { return len(v.entries) }

// IsZero reports whether the vector has no non-zero components.
func (v Vector) IsZero() bool { return len(v.entries) == 0 }

// Dot computes the dot product with a dense weight slice.
// Components beyond len(weights) contribute nothing.
func (v Vector) Dot(weights []float64) float64 {
	var sum float64
	for _, e := range v.entries {
		if e.Index < len(weights) {
			sum += e.Value * weights[e.Index]
		}
	}
	return sum
}

// At returns the value at idx (0 when absent).
func (v Vector) At(idx int) float64 {
	i := sort.Search(len(v.entries), func(i int) bool { return v.entries[i].Index >= idx })
	if i < len(v.entries) && v.entries[i].Index == idx {
		return v.entries[i].Value
	}
	return 0
}

// Dense expands the vector into a slice of length Dim.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.dim)
	for _, e := range v.entries {
		out[e.Index] = e.Value
	}
	return out
}
