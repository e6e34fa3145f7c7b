package domain

import (
	"fmt"
	"sort"
	"time"
)

// MaxContentLength bounds the free-text content of an evidence item.
// Evidence is later embedded into language-model prompts, so content
// is truncated at collection time to keep prompt size predictable.
const MaxContentLength = 500

// Source identifies the external provider an evidence item came from.
type Source string

// Known providers.
const (
	SourceReddit        Source = "reddit"
	SourceHackerNews    Source = "hackernews"
	SourceStackExchange Source = "stackexchange"
	SourceDevTo         Source = "devto"
	SourceLobsters      Source = "lobsters"
	SourceGitHub        Source = "github"
	SourceProductHunt   Source = "producthunt"
	SourceG2            Source = "g2"
	SourceCapterra      Source = "capterra"
	SourceTrustpilot    Source = "trustpilot"
	SourceIndieHackers  Source = "indiehackers"
	SourceAppStore      Source = "appstore"
	SourceSerp          Source = "serp"
	SourceYouTube       Source = "youtube"
	SourceGoogleNews    Source = "googlenews"
)

// EvidenceItem is one normalised unit of external user signal:
// a complaint, feature request, review, or workaround report.
type EvidenceItem struct {
	// ID uniquely identifies the item as "<source>-<native-id>".
	// Identical IDs imply the same origin record; deduplication
	// keys on this field.
	ID string `json:"id"`

	// Source is the provider that produced this item.
	Source Source `json:"source"`

	// Title is the headline text of the item.
	Title string `json:"title"`

	// Content is the body text, truncated to MaxContentLength.
	Content string `json:"content"`

	// URL is the canonical link back to the origin record.
	URL string `json:"url"`

	// Score is a provider-specific engagement proxy (e.g. upvotes
	// plus weighted comment count). Not comparable across sources;
	// used only for ranking within one bucket.
	Score int `json:"score"`

	// Timestamp is the origin creation time in epoch milliseconds.
	// Defaults to fetch time when the provider does not expose one.
	Timestamp int64 `json:"timestamp"`

	// Author is the origin author, when known.
	Author string `json:"author,omitempty"`

	// Tags carries provider or orchestrator annotations. Order is
	// not meaningful.
	Tags []string `json:"tags,omitempty"`

	// IsImportOpportunity marks an item describing a solution
	// validated in one market and absent from the target market.
	IsImportOpportunity bool `json:"isImportOpportunity,omitempty"`
}

// EvidenceID builds the source-namespaced identifier for a native
// provider record.
func EvidenceID(source Source, nativeID string) string {
	return fmt.Sprintf("%s-%s", source, nativeID)
}

// TruncateContent trims s to MaxContentLength runes, appending an
// ellipsis when anything was cut.
func TruncateContent(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxContentLength {
		return s
	}
	return string(runes[:MaxContentLength]) + "..."
}

// NowMillis returns the current time in epoch milliseconds, the unit
// EvidenceItem timestamps use.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Bucket names one of the four semantic result categories an
// aggregation run produces.
type Bucket string

// Semantic buckets.
const (
	BucketPainPoints      Bucket = "pain_points"
	BucketLeadUserSignals Bucket = "lead_user_signals"
	BucketCompetitors     Bucket = "competitors"
	BucketTrendingTopics  Bucket = "trending_topics"
)

// AggregatedData is the immutable result of one aggregation run.
// Each sequence is deduplicated by ID and sorted descending by Score.
type AggregatedData struct {
	PainPoints      []EvidenceItem `json:"painPoints"`
	LeadUserSignals []EvidenceItem `json:"leadUserSignals"`
	Competitors     []EvidenceItem `json:"competitors"`
	TrendingTopics  []EvidenceItem `json:"trendingTopics"`

	// SourcesUsed lists every provider attempted in this run,
	// whether or not it returned data. Observability only.
	SourcesUsed []string `json:"sourcesUsed"`

	// TotalItems is the sum of the four deduplicated bucket sizes.
	TotalItems int `json:"totalItems"`
}

// DedupeAndSort removes duplicate IDs from items (keeping the
// first-seen instance) and sorts the survivors descending by Score,
// with ID as a deterministic tiebreak so concurrent arrival order
// never changes the final ranking.
func DedupeAndSort(items []EvidenceItem) []EvidenceItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]EvidenceItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
