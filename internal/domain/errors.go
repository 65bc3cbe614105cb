package domain

import "errors"

// KeyPrefix namespaces every key veritas writes to the shared store.
const KeyPrefix = "veritas:"

var (
	// ErrEmptyPrompt signals a query without a prompt.
	ErrEmptyPrompt = errors.New("prompt is required")
	// ErrInvalidRequest signals a malformed request (bad max_results, bad url).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrModelUnavailable signals that the vectorizer/classifier artifacts failed to load at startup.
	// Every request is rejected until the artifacts are fixed and the process restarted.
	ErrModelUnavailable = errors.New("classification model unavailable")

	// ErrUpstream signals a failing external collaborator (search, fetch, summarize).
	ErrUpstream = errors.New("upstream error")

	// ErrEmptyText signals a document whose representation has no content.
	ErrEmptyText = errors.New("empty extracted text")
	// ErrClassification signals that the classifier could not score a document.
	ErrClassification = errors.New("classification failed")

	// ErrDegraded signals an optional stage that was omitted for a batch.
	ErrDegraded = errors.New("stage degraded")

	// ErrRateLimited signals a hit rate limit.
	ErrRateLimited = errors.New("rate limited")
	// ErrBudgetExceeded signals an exhausted summarizer token budget.
	ErrBudgetExceeded = errors.New("summarizer budget exceeded")

	// ErrInvalidEmailDomain signals an e-mail outside the allowed domain.
	ErrInvalidEmailDomain = errors.New("email domain not allowed")
	// ErrVerificationFailed signals a wrong, expired or already used code.
	ErrVerificationFailed = errors.New("invalid verification code")
	// ErrVerificationDisabled signals that e-mail verification is not configured.
	ErrVerificationDisabled = errors.New("verification disabled")
)
