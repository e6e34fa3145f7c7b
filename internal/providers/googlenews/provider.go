// Package googlenews searches the Google News RSS endpoint for topic
// keywords. The feed is credential-free and keyword-searchable, so it
// runs in the direct wave as an always-on press-coverage signal. RSS
// carries no engagement counts; items are scored by feed position
// instead.
package googlenews

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mmcdole/gofeed"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
	"github.com/veridian-labs/oppscan-cli/internal/providers/httpx"
)

const (
	defaultBaseURL  = "https://news.google.com"
	defaultMaxItems = 15
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Google News evidence source.
type Provider struct {
	client  *http.Client
	baseURL string
	parser  *gofeed.Parser
}

// New creates the Google News provider.
func New() *Provider {
	return NewWithBaseURL(defaultBaseURL, nil)
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(baseURL string, client *http.Client) *Provider {
	if client == nil {
		client = httpx.DefaultClient()
	}
	return &Provider{client: client, baseURL: baseURL, parser: gofeed.NewParser()}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceGoogleNews,
		RateLimit: "one feed fetch per query, unauthenticated",
		Wave:      driven.WaveDirect,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search queries the RSS search feed with the primary keyword and
// maps the entries into evidence.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	if len(keywords) == 0 {
		return nil
	}
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	u := fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		p.baseURL, url.QueryEscape(keywords[0]))
	raw, err := httpx.GetText(ctx, p.client, u)
	if err != nil {
		logger.Warn("googlenews search %q failed: %v", keywords[0], err)
		return nil
	}

	feed, err := p.parser.ParseString(raw)
	if err != nil {
		logger.Warn("googlenews feed parse failed: %v", err)
		return nil
	}

	var items []domain.EvidenceItem
	for pos, entry := range feed.Items {
		if len(items) >= max {
			break
		}
		items = append(items, toEvidence(entry, pos))
	}
	return domain.DedupeAndSort(items)
}

func toEvidence(entry *gofeed.Item, pos int) domain.EvidenceItem {
	ts := domain.NowMillis()
	if entry.PublishedParsed != nil {
		ts = entry.PublishedParsed.UnixMilli()
	}
	id := entry.GUID
	if id == "" {
		id = entry.Link
	}
	author := ""
	if entry.Author != nil {
		author = entry.Author.Name
	}

	return domain.EvidenceItem{
		ID:      domain.EvidenceID(domain.SourceGoogleNews, id),
		Source:  domain.SourceGoogleNews,
		Title:   entry.Title,
		Content: domain.TruncateContent(entry.Description),
		URL:     entry.Link,
		// Earlier feed positions rank higher in the absence of
		// engagement counts.
		Score:     100 - 5*pos,
		Timestamp: ts,
		Author:    author,
		Tags:      []string{"news"},
	}
}
