// Package serp wraps a metered web-search API (Serper-style) behind a
// persisted usage counter. The provider self-disables before the paid
// quota is exceeded, and the counter survives process restarts.
//
// The counter is incremented and persisted BEFORE each network call.
// A crash mid-request therefore burns one counted query rather than
// risking an uncounted one: the design errs toward under-counting
// available quota, never toward over-spending it. Concurrent callers
// are not serialised; the safety buffer absorbs increment races.
package serp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	// ProviderKey is the quota-store key for this provider.
	ProviderKey = "serp"

	defaultEndpoint = "https://google.serper.dev/search"
	defaultMaxItems = 10

	// MaxQueries is the hard quota of the paid plan.
	MaxQueries = 2500

	// SafetyBuffer is withheld from the hard quota so that races
	// between concurrent increments can never overrun it.
	SafetyBuffer = 100
)

// Ensure Client implements the provider interface.
var _ driven.EvidenceProvider = (*Client)(nil)

// Client is the quota-tracked search provider.
type Client struct {
	apiKey   string
	endpoint string
	fetcher  driven.Fetcher
	store    driven.QuotaStore
	now      func() time.Time
}

// New creates the quota-tracked search client. An empty apiKey leaves
// the provider permanently unavailable.
func New(apiKey string, fetcher driven.Fetcher, store driven.QuotaStore) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		fetcher:  fetcher,
		store:    store,
		now:      time.Now,
	}
}

// NewWithEndpoint creates a client against an explicit endpoint.
func NewWithEndpoint(apiKey, endpoint string, fetcher driven.Fetcher, store driven.QuotaStore) *Client {
	c := New(apiKey, fetcher, store)
	c.endpoint = endpoint
	return c
}

// Info returns the provider description.
func (c *Client) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:               domain.SourceSerp,
		RequiresCredential: true,
		Configured:         c.apiKey != "",
		RateLimit:          fmt.Sprintf("%d lifetime queries, %d reserved as buffer", MaxQueries, SafetyBuffer),
		Wave:               driven.WaveOptional,
	}
}

// Available reports whether the provider may issue a query right now.
func (c *Client) Available(ctx context.Context) bool {
	return c.CanUse(ctx)
}

// CanUse returns true iff the provider is configured, not disabled,
// and below the effective limit (MaxQueries - SafetyBuffer).
func (c *Client) CanUse(ctx context.Context) bool {
	if c.apiKey == "" {
		return false
	}
	state, err := c.state(ctx)
	if err != nil {
		logger.Warn("serp quota read failed: %v", err)
		return false
	}
	return !state.Disabled && state.Count < MaxQueries-SafetyBuffer
}

// Search issues one metered query per run. When the quota is
// unavailable it silently returns empty: callers must treat empty as
// "unavailable", not "no results exist".
func (c *Client) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	if len(keywords) == 0 || !c.CanUse(ctx) {
		return nil
	}
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	// Count the query before the network call.
	if err := c.consume(ctx); err != nil {
		logger.Warn("serp quota update failed, skipping query: %v", err)
		return nil
	}

	items, err := c.searchOne(ctx, keywords[0]+" alternatives", max)
	if err != nil {
		logger.Warn("serp query failed: %v", err)
		return nil
	}
	return domain.DedupeAndSort(items)
}

// consume increments and persists the counter, disabling the provider
// once the effective limit is crossed.
func (c *Client) consume(ctx context.Context) error {
	state, err := c.state(ctx)
	if err != nil {
		return err
	}

	now := c.now()
	if state.FirstUsedAt.IsZero() {
		state.FirstUsedAt = now
	}
	state.LastUsedAt = now
	state.Count++
	if state.Count >= MaxQueries-SafetyBuffer {
		state.Disabled = true
		logger.Info("serp quota reached %d, disabling provider", state.Count)
	}

	return c.store.PutQuota(ctx, ProviderKey, *state)
}

// UsageStats returns a pure read of the persisted quota state.
func (c *Client) UsageStats(ctx context.Context) (domain.UsageStats, error) {
	state, err := c.state(ctx)
	if err != nil {
		return domain.UsageStats{}, err
	}

	limit := MaxQueries - SafetyBuffer
	remaining := limit - state.Count
	if remaining < 0 {
		remaining = 0
	}
	return domain.UsageStats{
		Used:        state.Count,
		Remaining:   remaining,
		Limit:       limit,
		Disabled:    state.Disabled,
		PercentUsed: float64(state.Count) / float64(limit) * 100,
	}, nil
}

// ResetUsage zeroes the counter. Administrative escape hatch for when
// new quota is purchased; never called automatically.
func (c *Client) ResetUsage(ctx context.Context) error {
	return c.store.ResetQuota(ctx, ProviderKey)
}

func (c *Client) state(ctx context.Context) (*domain.QuotaState, error) {
	state, err := c.store.GetQuota(ctx, ProviderKey)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.QuotaState{}, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

type serpResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic"`
}

func (c *Client) searchOne(ctx context.Context, query string, limit int) ([]domain.EvidenceItem, error) {
	body, err := json.Marshal(map[string]any{"q": query, "num": limit})
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("X-API-KEY", c.apiKey)
	header.Set("Content-Type", "application/json")

	resp, err := c.fetcher.Post(ctx, c.endpoint, header, body)
	if err != nil {
		return nil, err
	}

	var sr serpResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]domain.EvidenceItem, 0, len(sr.Organic))
	for i, org := range sr.Organic {
		pos := org.Position
		if pos == 0 {
			pos = i + 1
		}
		items = append(items, domain.EvidenceItem{
			ID:        domain.EvidenceID(domain.SourceSerp, fmt.Sprintf("%s-%d", hashQuery(query), pos)),
			Source:    domain.SourceSerp,
			Title:     org.Title,
			Content:   domain.TruncateContent(org.Snippet),
			URL:       org.Link,
			Score:     limit - i,
			Timestamp: domain.NowMillis(),
		})
	}
	return items, nil
}

// hashQuery makes a short stable token from the query text for ID
// namespacing.
func hashQuery(q string) string {
	var h uint32 = 2166136261
	for i := 0; i < len(q); i++ {
		h ^= uint32(q[i])
		h *= 16777619
	}
	return fmt.Sprintf("%08x", h)
}
