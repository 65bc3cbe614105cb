package veritas

import "github.com/kailas-cloud/veritas/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyPrompt      = domain.ErrEmptyPrompt
	ErrInvalidRequest   = domain.ErrInvalidRequest
	ErrModelUnavailable = domain.ErrModelUnavailable
	ErrEmptyText        = domain.ErrEmptyText
	ErrClassification   = domain.ErrClassification
	ErrUpstream         = domain.ErrUpstream
)
