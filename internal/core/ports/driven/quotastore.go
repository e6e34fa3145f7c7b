package driven

import (
	"context"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
)

// QuotaStore persists usage counters for metered providers.
// Counters must survive process restarts: the quota ceiling is a
// hard commercial limit, not a per-session politeness budget.
type QuotaStore interface {
	// GetQuota returns the persisted state for a provider, or
	// domain.ErrNotFound when the provider has never been used.
	GetQuota(ctx context.Context, provider string) (*domain.QuotaState, error)

	// PutQuota overwrites the persisted state for a provider.
	PutQuota(ctx context.Context, provider string, state domain.QuotaState) error

	// ResetQuota zeroes the counter for a provider. Administrative
	// escape hatch for when new quota is purchased.
	ResetQuota(ctx context.Context, provider string) error
}

// RunStore persists the aggregation run log.
type RunStore interface {
	// SaveRun records one completed aggregation run.
	SaveRun(ctx context.Context, rec domain.RunRecord) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
