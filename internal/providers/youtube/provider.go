// Package youtube queries the YouTube Data API v3 for tutorial and
// complaint videos around a topic. High view-count "how do I ..."
// content signals trending demand. API-key gated; only runs in the
// optional wave.
package youtube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const defaultMaxItems = 15

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the YouTube evidence source.
type Provider struct {
	apiKey string

	mu      sync.Mutex
	service *yt.Service

	// extraOpts lets tests point the service at a local server.
	extraOpts []option.ClientOption
}

// New creates the YouTube provider. An empty key leaves it
// unavailable.
func New(apiKey string, opts ...option.ClientOption) *Provider {
	return &Provider{apiKey: apiKey, extraOpts: opts}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:               domain.SourceYouTube,
		RequiresCredential: true,
		Configured:         p.apiKey != "",
		RateLimit:          "10000 units/day; one search costs 100 units",
		Wave:               driven.WaveOptional,
	}
}

// Available reports whether an API key is configured.
func (p *Provider) Available(_ context.Context) bool {
	return p.apiKey != ""
}

// Search issues one video search for the primary keyword.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	if len(keywords) == 0 || p.apiKey == "" {
		return nil
	}
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	svc, err := p.ensureService(ctx)
	if err != nil {
		logger.Warn("youtube service init failed: %v", err)
		return nil
	}

	query := keywords[0] + " problems"
	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Order("viewCount").
		MaxResults(int64(max)).
		Context(ctx).
		Do()
	if err != nil {
		logger.Warn("youtube search %q failed: %v", query, err)
		return nil
	}

	items := make([]domain.EvidenceItem, 0, len(resp.Items))
	for i, result := range resp.Items {
		if result.Id == nil || result.Snippet == nil {
			continue
		}
		ts := domain.NowMillis()
		if t, err := time.Parse(time.RFC3339, result.Snippet.PublishedAt); err == nil {
			ts = t.UnixMilli()
		}
		items = append(items, domain.EvidenceItem{
			ID:      domain.EvidenceID(domain.SourceYouTube, result.Id.VideoId),
			Source:  domain.SourceYouTube,
			Title:   result.Snippet.Title,
			Content: domain.TruncateContent(result.Snippet.Description),
			URL:     "https://www.youtube.com/watch?v=" + result.Id.VideoId,
			// The search endpoint exposes no view counts; rank
			// position under a view-count ordering stands in.
			Score:     (max - i) * 10,
			Timestamp: ts,
			Author:    result.Snippet.ChannelTitle,
		})
	}
	return domain.DedupeAndSort(items)
}

func (p *Provider) ensureService(ctx context.Context) (*yt.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.service != nil {
		return p.service, nil
	}

	opts := append([]option.ClientOption{option.WithAPIKey(p.apiKey)}, p.extraOpts...)
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	p.service = svc
	return svc, nil
}
