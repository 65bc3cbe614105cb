// Package rank orders processed items by trust.
package rank

import (
	"sort"

	"github.com/kailas-cloud/veritas/internal/domain/item"
)

// DefaultTopN is the size of the slice handed to the summarizer.
const DefaultTopN = 3

// ByTrust returns a copy of items sorted by trust score, highest first.
// Items with equal trust keep their input order.
func ByTrust(items []item.Item) []item.Item {
	out := make([]item.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Trust() > out[j].Trust()
	})
	return out
}

// Top returns the first n ranked items (DefaultTopN when n <= 0).
func Top(ranked []item.Item, n int) []item.Item {
	if n <= 0 {
		n = DefaultTopN
	}
	if len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}
