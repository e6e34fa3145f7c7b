// Package providers assembles the evidence provider set. Each feed
// pairs a provider with the semantic bucket its results land in; a
// provider with more than one query intent (e.g. Hacker News pain
// search vs. front-page trending) appears as multiple feeds.
package providers

import (
	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/providers/appstore"
	"github.com/veridian-labs/oppscan-cli/internal/providers/capterra"
	"github.com/veridian-labs/oppscan-cli/internal/providers/devto"
	"github.com/veridian-labs/oppscan-cli/internal/providers/g2"
	"github.com/veridian-labs/oppscan-cli/internal/providers/github"
	"github.com/veridian-labs/oppscan-cli/internal/providers/googlenews"
	"github.com/veridian-labs/oppscan-cli/internal/providers/hackernews"
	"github.com/veridian-labs/oppscan-cli/internal/providers/indiehackers"
	"github.com/veridian-labs/oppscan-cli/internal/providers/lobsters"
	"github.com/veridian-labs/oppscan-cli/internal/providers/producthunt"
	"github.com/veridian-labs/oppscan-cli/internal/providers/reddit"
	"github.com/veridian-labs/oppscan-cli/internal/providers/serp"
	"github.com/veridian-labs/oppscan-cli/internal/providers/stackexchange"
	"github.com/veridian-labs/oppscan-cli/internal/providers/trustpilot"
	"github.com/veridian-labs/oppscan-cli/internal/providers/youtube"
)

// BuildFeeds wires every provider with its dependencies and returns
// the full feed set plus the metered search client, which the quota
// tooling addresses directly. Credential-gated providers are always
// included; the orchestrator filters on Available at run time.
func BuildFeeds(cfg driven.ConfigStore, fetcher driven.Fetcher, quotaStore driven.QuotaStore) ([]driven.Feed, *serp.Client) {
	serpClient := serp.New(cfg.GetString(driven.KeySerpAPIKey), fetcher, quotaStore)

	return []driven.Feed{
		// Wave 1: always-on JSON APIs.
		{Provider: reddit.New(), Bucket: domain.BucketPainPoints},
		{Provider: hackernews.New(), Bucket: domain.BucketPainPoints},
		{Provider: hackernews.NewTrending(), Bucket: domain.BucketTrendingTopics},
		{Provider: stackexchange.New(), Bucket: domain.BucketPainPoints},
		{Provider: devto.New(), Bucket: domain.BucketPainPoints},
		{Provider: lobsters.New(), Bucket: domain.BucketTrendingTopics},
		{Provider: googlenews.New(), Bucket: domain.BucketTrendingTopics},
		{Provider: github.New(cfg.GetString(driven.KeyGitHubToken)), Bucket: domain.BucketPainPoints},

		// Wave 2: proxied scrapes.
		{Provider: producthunt.New(fetcher), Bucket: domain.BucketCompetitors},
		{Provider: g2.New(fetcher), Bucket: domain.BucketCompetitors},
		{Provider: capterra.New(fetcher), Bucket: domain.BucketCompetitors},
		{Provider: trustpilot.New(fetcher), Bucket: domain.BucketPainPoints},
		{Provider: indiehackers.New(fetcher), Bucket: domain.BucketTrendingTopics},
		{Provider: appstore.New(fetcher), Bucket: domain.BucketPainPoints},

		// Wave 3: credential or quota gated.
		{Provider: serpClient, Bucket: domain.BucketCompetitors},
		{Provider: youtube.New(cfg.GetString(driven.KeyYouTubeAPIKey)), Bucket: domain.BucketTrendingTopics},
	}, serpClient
}

// QuickSearchProvider returns the most reliable always-on provider,
// used for low-latency lookups outside the full aggregation flow.
func QuickSearchProvider() driven.EvidenceProvider {
	return hackernews.New()
}
