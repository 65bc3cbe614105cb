package pipeline

import (
	"context"

	"github.com/kailas-cloud/veritas/internal/domain/article"
	"github.com/kailas-cloud/veritas/internal/domain/explanation"
	"github.com/kailas-cloud/veritas/internal/domain/features"
	"github.com/kailas-cloud/veritas/internal/domain/hit"
	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/summary"
	"github.com/kailas-cloud/veritas/internal/domain/verdict"
)

// SearchProvider returns candidate hits. It is total: on failure it returns a fallback set.
type SearchProvider interface {
	Search(ctx context.Context, prompt string, maxResults int) []hit.Hit
}

// DocumentFetcher downloads and extracts one document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (article.Document, error)
}

// Classifier scores a representation string. Shared, read-only.
type Classifier interface {
	Available() bool
	Classify(text string) (verdict.Verdict, features.Vector, error)
}

// Explainer attributes a classification to its top tokens.
type Explainer interface {
	Explain(vec features.Vector, k int) explanation.Explanation
}

// RecencyEstimator converts a publish date into elapsed days.
type RecencyEstimator interface {
	Estimate(raw string) (days int, ok bool)
}

// Projector is the optional batch clustering stage.
type Projector interface {
	Enabled() bool
	Project(vectors []features.Vector) ([]item.Placement, error)
}

// Summarizer is the optional narrative stage. It is total.
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, prompt string, items []item.Item) summary.Summary
}
