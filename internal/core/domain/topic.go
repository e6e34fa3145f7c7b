package domain

import "time"

// Topic describes what to aggregate evidence about. Topics come from
// configuration (YAML topic packs) and are treated as opaque input:
// the core never mutates them.
type Topic struct {
	// Name is the display name of the topic.
	Name string `json:"name" yaml:"name"`

	// Keywords is the ordered list of search keywords, most
	// specific first. Adapters may use only a prefix of the list.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Providers optionally restricts which providers apply to this
	// topic. Empty means all.
	Providers []string `json:"providers,omitempty" yaml:"providers,omitempty"`
}

// AggregateOptions tunes one aggregation run.
type AggregateOptions struct {
	// UseOptionalProviders enables the credential/quota gated third
	// wave (metered search, YouTube).
	UseOptionalProviders bool

	// MaxItemsPerSource caps how many items each adapter may
	// return. Zero means the adapter's own default cap.
	MaxItemsPerSource int
}

// RunRecord summarises one completed aggregation run for the run log.
type RunRecord struct {
	ID          string        `json:"id"`
	Topic       string        `json:"topic"`
	SourcesUsed []string      `json:"sourcesUsed"`
	TotalItems  int           `json:"totalItems"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// SourceStatus is one row of the read-only provider diagnostic.
type SourceStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
	Available  bool   `json:"available"`
	RateLimit  string `json:"rateLimit"`
}

// QuotaState is the persisted usage counter of a metered provider.
// It survives process restarts; the safety buffer in the client
// absorbs any race between concurrent increments.
type QuotaState struct {
	Count       int       `json:"count"`
	FirstUsedAt time.Time `json:"firstUsedAt"`
	LastUsedAt  time.Time `json:"lastUsedAt"`
	Disabled    bool      `json:"disabled"`
}

// UsageStats is the read-only view of a quota-tracked client.
type UsageStats struct {
	Used        int     `json:"used"`
	Remaining   int     `json:"remaining"`
	Limit       int     `json:"limit"`
	Disabled    bool    `json:"disabled"`
	PercentUsed float64 `json:"percentUsed"`
}
