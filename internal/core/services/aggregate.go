package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driving"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

// Ensure AggregationService implements the interface.
var _ driving.AggregationService = (*AggregationService)(nil)

// painPhrases are crossed with topic keywords by providers that
// issue multiple query permutations. Complaint language surfaces
// friction posts that a bare keyword search misses.
var painPhrases = []string{
	"frustrating",
	"annoying",
	"wish there was",
	"workaround",
	"waste of time",
}

// leadUserTerms detect users who built their own workaround. Matches
// in the pain-points bucket are additionally copied into the
// lead-user bucket.
var leadUserTerms = []string{
	"script", "macro", "spreadsheet", "zapier", "airtable", "notion",
	"automation", "built my own", "wrote my own", "no-code", "cobbled",
}

// leadUserTag marks items copied by the lexicon sweep.
const leadUserTag = "lead-user"

const quickSearchMaxItems = 10

// AggregationService orchestrates the evidence providers: three
// ordered waves, concurrent within a wave, each provider failure
// absorbed so the run always produces a bundle.
type AggregationService struct {
	feeds    []driven.Feed
	quick    driven.EvidenceProvider
	runStore driven.RunStore

	// now is overridable for tests.
	now func() time.Time
}

// NewAggregationService creates the orchestrator. runStore may be
// nil, in which case runs are not logged.
func NewAggregationService(feeds []driven.Feed, quick driven.EvidenceProvider, runStore driven.RunStore) *AggregationService {
	return &AggregationService{
		feeds:    feeds,
		quick:    quick,
		runStore: runStore,
		now:      time.Now,
	}
}

// Aggregate runs the full fan-out for one topic.
//
// Cancellation is observed at wave boundaries only: an in-flight
// wave finishes so its network work is not wasted, but no further
// wave starts, and the whole call then fails with the context error
// instead of returning a partial bundle.
func (s *AggregationService) Aggregate(ctx context.Context, topic domain.Topic, opts domain.AggregateOptions) (*domain.AggregatedData, error) {
	started := s.now()
	logger.Section("Aggregation Run")
	logger.Info("Topic: %s (%d keywords)", topic.Name, len(topic.Keywords))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	waves := []driven.Wave{driven.WaveDirect, driven.WaveProxied}
	if opts.UseOptionalProviders {
		waves = append(waves, driven.WaveOptional)
	}

	searchOpts := driven.SearchOptions{
		MaxItems:    opts.MaxItemsPerSource,
		PainPhrases: painPhrases,
	}

	buckets := map[domain.Bucket][]domain.EvidenceItem{}
	var sourcesUsed []string
	var mu sync.Mutex

	for _, wave := range waves {
		feeds := s.admissibleFeeds(wave, topic)
		if len(feeds) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("Aggregation cancelled before wave %d", wave)
			return nil, err
		}
		logger.Debug("Wave %d: %d feeds", wave, len(feeds))

		g := new(errgroup.Group)
		for _, f := range feeds {
			f := f
			sourcesUsed = append(sourcesUsed, string(f.Provider.Info().Name))

			g.Go(func() error {
				if !f.Provider.Available(ctx) {
					logger.Debug("Provider %s unavailable, skipped", f.Provider.Info().Name)
					return nil
				}
				items := f.Provider.Search(ctx, topic.Keywords, searchOpts)
				logger.Debug("Provider %s: %d items -> %s", f.Provider.Info().Name, len(items), f.Bucket)

				// Append only after the call fully resolves.
				mu.Lock()
				buckets[f.Bucket] = append(buckets[f.Bucket], items...)
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	// Cancellation during the final wave: the wave was allowed to
	// finish, but its results are discarded.
	if err := ctx.Err(); err != nil {
		logger.Warn("Aggregation cancelled during final wave")
		return nil, err
	}

	s.sweepLeadUsers(buckets)

	data := &domain.AggregatedData{
		PainPoints:      domain.DedupeAndSort(buckets[domain.BucketPainPoints]),
		LeadUserSignals: domain.DedupeAndSort(buckets[domain.BucketLeadUserSignals]),
		Competitors:     domain.DedupeAndSort(buckets[domain.BucketCompetitors]),
		TrendingTopics:  domain.DedupeAndSort(buckets[domain.BucketTrendingTopics]),
		SourcesUsed:     dedupeStrings(sourcesUsed),
	}
	data.TotalItems = len(data.PainPoints) + len(data.LeadUserSignals) +
		len(data.Competitors) + len(data.TrendingTopics)

	logger.Info("Aggregated %d items from %d sources", data.TotalItems, len(data.SourcesUsed))

	s.logRun(ctx, topic, data, s.now().Sub(started))
	return data, nil
}

// QuickSearch queries only the most reliable always-on provider.
func (s *AggregationService) QuickSearch(ctx context.Context, query string) []domain.EvidenceItem {
	if s.quick == nil {
		return nil
	}
	return s.quick.Search(ctx, []string{query}, driven.SearchOptions{MaxItems: quickSearchMaxItems})
}

// SourceStatus reports per-provider diagnostics without issuing
// search traffic.
func (s *AggregationService) SourceStatus(ctx context.Context) []domain.SourceStatus {
	seen := map[domain.Source]bool{}
	var out []domain.SourceStatus
	for _, f := range s.feeds {
		info := f.Provider.Info()
		if seen[info.Name] {
			continue
		}
		seen[info.Name] = true

		out = append(out, domain.SourceStatus{
			Provider:   string(info.Name),
			Configured: !info.RequiresCredential || info.Configured,
			Available:  f.Provider.Available(ctx),
			RateLimit:  info.RateLimit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// admissibleFeeds returns the feeds for one wave, honouring the
// topic's optional provider restriction.
func (s *AggregationService) admissibleFeeds(wave driven.Wave, topic domain.Topic) []driven.Feed {
	var allowed map[string]bool
	if len(topic.Providers) > 0 {
		allowed = make(map[string]bool, len(topic.Providers))
		for _, p := range topic.Providers {
			allowed[p] = true
		}
	}

	var out []driven.Feed
	for _, f := range s.feeds {
		info := f.Provider.Info()
		if info.Wave != wave {
			continue
		}
		if allowed != nil && !allowed[string(info.Name)] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// sweepLeadUsers copies pain-point items whose text matches the
// lead-user lexicon into the lead-user bucket. Additive: the item
// stays in pain points, and the copy carries an extra tag.
func (s *AggregationService) sweepLeadUsers(buckets map[domain.Bucket][]domain.EvidenceItem) {
	for _, item := range buckets[domain.BucketPainPoints] {
		text := strings.ToLower(item.Title + " " + item.Content)
		if !matchesAny(text, leadUserTerms) {
			continue
		}
		tagged := item
		tagged.Tags = append(append([]string(nil), item.Tags...), leadUserTag)
		buckets[domain.BucketLeadUserSignals] = append(buckets[domain.BucketLeadUserSignals], tagged)
	}
}

// logRun records the completed run. Failure to persist the log never
// fails the aggregation.
func (s *AggregationService) logRun(ctx context.Context, topic domain.Topic, data *domain.AggregatedData, took time.Duration) {
	if s.runStore == nil {
		return
	}
	rec := domain.RunRecord{
		ID:          uuid.NewString(),
		Topic:       topic.Name,
		SourcesUsed: data.SourcesUsed,
		TotalItems:  data.TotalItems,
		Duration:    took,
		CreatedAt:   s.now(),
	}
	if err := s.runStore.SaveRun(ctx, rec); err != nil {
		logger.Warn("Failed to record run: %v", err)
	}
}

// dedupeStrings removes duplicates and sorts for a stable
// presentation order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
