package driving

import (
	"context"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
)

// AggregationService coordinates all evidence providers for one topic.
type AggregationService interface {
	// Aggregate fans out to all admissible providers in waves and
	// returns the merged, deduplicated evidence bundle.
	//
	// The only failure it surfaces is cancellation (the ctx error);
	// every provider-local failure is absorbed. Total provider
	// failure yields an empty but valid AggregatedData, never an
	// error: callers must treat zero evidence as a legitimate state.
	Aggregate(ctx context.Context, topic domain.Topic, opts domain.AggregateOptions) (*domain.AggregatedData, error)

	// QuickSearch queries only the most reliable always-on provider
	// for low-latency exploratory lookups outside the full
	// aggregation flow.
	QuickSearch(ctx context.Context, query string) []domain.EvidenceItem

	// SourceStatus reports per-provider diagnostics. Read-only, no
	// side effects.
	SourceStatus(ctx context.Context) []domain.SourceStatus
}
