package driven

import (
	"context"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
)

// Wave identifies which concurrent batch of the aggregation run a
// provider belongs to. Waves run strictly in order; providers within
// a wave run concurrently.
type Wave int

// Aggregation waves.
const (
	// WaveDirect holds always-on providers with native JSON APIs
	// that accept direct requests.
	WaveDirect Wave = iota + 1

	// WaveProxied holds providers that must be scraped through the
	// proxy-failover fetch client.
	WaveProxied

	// WaveOptional holds credential or quota gated providers, only
	// run when the caller opts in.
	WaveOptional
)

// SearchOptions tunes one provider search call.
type SearchOptions struct {
	// MaxItems caps the number of returned items. Zero means the
	// provider's own default cap.
	MaxItems int

	// PainPhrases are crossed with topic keywords by providers that
	// issue multiple query permutations ("<keyword> <phrase>").
	PainPhrases []string
}

// ProviderInfo describes a provider for admission decisions and the
// source-status diagnostic.
type ProviderInfo struct {
	// Name is the provider's source tag.
	Name domain.Source

	// RequiresCredential is true when a configured key is the
	// admission gate. The core never validates key correctness
	// beyond observing request failures.
	RequiresCredential bool

	// Configured reports whether that key is present. Only
	// meaningful when RequiresCredential is true: a provider can be
	// configured yet unavailable (e.g. quota exhausted).
	Configured bool

	// RateLimit is a human-readable description of the provider's
	// rate limit, for operational tooling.
	RateLimit string

	// Wave is the batch this provider runs in.
	Wave Wave
}

// Feed binds one provider query intent to the semantic bucket its
// results land in. A provider with more than one query intent is
// registered as multiple feeds.
type Feed struct {
	Provider EvidenceProvider
	Bucket   domain.Bucket
}

// EvidenceProvider is one external source integration.
//
// Search deliberately cannot express failure: any network, parse, or
// rate-limit problem is absorbed inside the adapter and an empty
// slice is returned, at most with diagnostic logging. A single flaky
// provider must never abort an aggregation run.
type EvidenceProvider interface {
	// Info returns the provider's static description.
	Info() ProviderInfo

	// Available reports whether the provider is currently
	// admissible: configured, and for metered providers, not
	// quota-exhausted.
	Available(ctx context.Context) bool

	// Search queries the provider for the given keywords and maps
	// the response into normalised evidence items. Never fails.
	Search(ctx context.Context, keywords []string, opts SearchOptions) []domain.EvidenceItem
}
