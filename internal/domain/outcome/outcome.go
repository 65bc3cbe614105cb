// Package outcome holds the per-hit result variant folded by the pipeline.
package outcome

import (
	"github.com/kailas-cloud/veritas/internal/domain/features"
	"github.com/kailas-cloud/veritas/internal/domain/item"
)

// Status is the terminal state of one hit.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is Success(item) | Skipped(reason) | Failed(reason).
// The feature vector travels with a successful item to the clustering barrier.
type Outcome struct {
	status Status
	item   item.Item
	vector features.Vector
	reason error
	// Fallback is true when the document was synthesized from search metadata.
	fallback bool
}

// Success creates a successful outcome.
func Success(it item.Item, vec features.Vector, fallback bool) Outcome {
	return Outcome{status: StatusSuccess, item: it, vector: vec, fallback: fallback}
}

// Skipped creates an outcome for a hit excluded before classification.
func Skipped(reason error, fallback bool) Outcome {
	return Outcome{status: StatusSkipped, reason: reason, fallback: fallback}
}

// Failed creates an outcome for a hit that could not be classified.
func Failed(reason error, fallback bool) Outcome {
	return Outcome{status: StatusFailed, reason: reason, fallback: fallback}
}

// Status returns the outcome kind.
func (o Outcome) Status() Status { return o.status }

// OK reports whether the outcome carries an item.
func (o Outcome) OK() bool { return o.status == StatusSuccess }

// Item returns the item of a successful outcome.
func (o Outcome) Item() item.Item { return o.item }

// Vector returns the feature vector of a successful outcome.
func (o Outcome) Vector() features.Vector { return o.vector }

// Reason returns why the hit was dropped, nil on success.
func (o Outcome) Reason() error { return o.reason }

// Fallback reports whether the document came from search metadata.
func (o Outcome) Fallback() bool { return o.fallback }
