// Package appstore collects App Store customer reviews for the
// top-ranked app matching a topic. Two calls per run: the iTunes
// Search API finds the app, then the customer-reviews RSS feed is
// parsed with gofeed. Low-rated reviews of category leaders are
// high-signal pain evidence. Both endpoints are fetched through the
// proxy chain, which also serves iTunes' regional edge servers more
// reliably than direct calls.
package appstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	defaultBaseURL  = "https://itunes.apple.com"
	defaultMaxItems = 20

	// maxRating caps which reviews count as pain evidence; a
	// 5-star review rarely describes unmet needs.
	maxRating = 3
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the App Store reviews evidence source.
type Provider struct {
	fetcher driven.Fetcher
	baseURL string
	parser  *gofeed.Parser
}

// New creates the App Store provider.
func New(fetcher driven.Fetcher) *Provider {
	return NewWithBaseURL(fetcher, defaultBaseURL)
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(fetcher driven.Fetcher, baseURL string) *Provider {
	return &Provider{
		fetcher: fetcher,
		baseURL: baseURL,
		parser:  gofeed.NewParser(),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceAppStore,
		RateLimit: "~20 requests/minute (iTunes public endpoints)",
		Wave:      driven.WaveProxied,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search finds the top app for the primary keyword and maps its
// critical reviews into evidence.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	if len(keywords) == 0 {
		return nil
	}
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	appID, appName, err := p.topApp(ctx, keywords[0])
	if err != nil {
		logger.Warn("appstore lookup %q failed: %v", keywords[0], err)
		return nil
	}
	if appID == 0 {
		return nil
	}

	items, err := p.reviews(ctx, appID, appName, max)
	if err != nil {
		logger.Warn("appstore reviews for %s failed: %v", appName, err)
		return nil
	}
	return domain.DedupeAndSort(items)
}

type searchResult struct {
	Results []struct {
		TrackID   int64  `json:"trackId"`
		TrackName string `json:"trackName"`
	} `json:"results"`
}

func (p *Provider) topApp(ctx context.Context, keyword string) (int64, string, error) {
	u := fmt.Sprintf("%s/search?term=%s&entity=software&limit=1",
		p.baseURL, url.QueryEscape(keyword))

	var sr searchResult
	if err := p.fetcher.JSON(ctx, u, &sr); err != nil {
		return 0, "", err
	}
	if len(sr.Results) == 0 {
		return 0, "", nil
	}
	return sr.Results[0].TrackID, sr.Results[0].TrackName, nil
}

func (p *Provider) reviews(ctx context.Context, appID int64, appName string, limit int) ([]domain.EvidenceItem, error) {
	u := fmt.Sprintf("%s/us/rss/customerreviews/id=%d/sortby=mostrecent/xml", p.baseURL, appID)
	raw, err := p.fetcher.Text(ctx, u)
	if err != nil {
		return nil, err
	}

	feed, err := p.parser.ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var items []domain.EvidenceItem
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		rating := entryRating(entry)
		if rating > maxRating {
			continue
		}

		ts := domain.NowMillis()
		if entry.PublishedParsed != nil {
			ts = entry.PublishedParsed.UnixMilli()
		}
		author := ""
		if entry.Author != nil {
			author = entry.Author.Name
		}

		items = append(items, domain.EvidenceItem{
			ID:      domain.EvidenceID(domain.SourceAppStore, entry.GUID),
			Source:  domain.SourceAppStore,
			Title:   fmt.Sprintf("[%s] %s", appName, entry.Title),
			Content: domain.TruncateContent(entry.Description),
			URL:     entry.Link,
			// Lower star rating means stronger pain.
			Score:     (maxRating - rating + 1) * 10,
			Timestamp: ts,
			Author:    author,
			Tags:      []string{fmt.Sprintf("rating-%d", rating)},
		})
	}
	return items, nil
}

// entryRating pulls the star rating from the im:rating extension,
// defaulting to the worst assumption of 1 when missing.
func entryRating(entry *gofeed.Item) int {
	for prefix, ext := range entry.Extensions {
		if prefix != "im" {
			continue
		}
		for _, ratings := range ext["rating"] {
			if n, err := strconv.Atoi(strings.TrimSpace(ratings.Value)); err == nil {
				return n
			}
		}
	}
	return 1
}
