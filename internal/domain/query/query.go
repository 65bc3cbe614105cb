package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/veritas/internal/domain"
)

// DefaultMaxResults is used when the caller does not ask for a specific number of hits.
const DefaultMaxResults = 5

// Query is a single user request (immutable value object).
type Query struct {
	prompt     string
	maxResults int
}

// New validates and creates a Query.
// maxResults == 0 falls back to DefaultMaxResults; values above limit are clamped (limit <= 0 disables the cap).
func New(prompt string, maxResults, limit int) (Query, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Query{}, domain.ErrEmptyPrompt
	}
	if maxResults < 0 {
		return Query{}, fmt.Errorf("max_results must be positive, got %d: %w", maxResults, domain.ErrInvalidRequest)
	}
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	if limit > 0 && maxResults > limit {
		maxResults = limit
	}
	return Query{prompt: prompt, maxResults: maxResults}, nil
}

// Prompt returns the natural-language query.
func (q Query) Prompt() string { return q.prompt }

// MaxResults returns the number of search hits to retrieve.
func (q Query) MaxResults() int { return q.maxResults }
