package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAllProxiesFailed indicates every proxy strategy in the
	// fetch client's chain failed for one request. Adapters treat
	// it as a provider-local failure and return empty.
	ErrAllProxiesFailed = errors.New("all proxy strategies failed")

	// ErrQuotaExhausted indicates a metered provider has reached
	// its usage ceiling. This is an expected steady state, not an
	// exceptional condition; callers branch on CanUse instead of
	// waiting to observe this error.
	ErrQuotaExhausted = errors.New("search quota exhausted")

	// ErrProviderUnavailable indicates a provider is missing its
	// credential or is otherwise not admissible for a run.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrUnknownTopic indicates a topic name not present in any
	// loaded topic pack.
	ErrUnknownTopic = errors.New("unknown topic")
)
