// Package capterra scrapes Capterra search pages for competing
// products in a software category. Feeds the competitors bucket;
// fetched through the proxy chain.
package capterra

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	defaultBaseURL  = "https://www.capterra.com"
	defaultMaxItems = 15
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Capterra evidence source.
type Provider struct {
	fetcher driven.Fetcher
	baseURL string
}

// New creates the Capterra provider.
func New(fetcher driven.Fetcher) *Provider {
	return NewWithBaseURL(fetcher, defaultBaseURL)
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(fetcher driven.Fetcher, baseURL string) *Provider {
	return &Provider{fetcher: fetcher, baseURL: baseURL}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceCapterra,
		RateLimit: "proxied scrape, one page/run",
		Wave:      driven.WaveProxied,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search scrapes the search page for the primary keyword. Missing
// fields are tolerated; anything without a product name is skipped.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	if len(keywords) == 0 {
		return nil
	}
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	u := fmt.Sprintf("%s/search/?query=%s", p.baseURL, strings.ReplaceAll(keywords[0], " ", "%20"))
	html, err := p.fetcher.Text(ctx, u)
	if err != nil {
		logger.Warn("capterra scrape %q failed: %v", keywords[0], err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("capterra parse failed: %v", err)
		return nil
	}

	var items []domain.EvidenceItem
	doc.Find("div[data-testid='product-card'], div.product-card").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= max {
			return false
		}
		name := strings.TrimSpace(s.Find("h2, a[data-testid='product-name']").First().Text())
		if name == "" {
			return true
		}
		desc := strings.TrimSpace(s.Find("p, span.description").First().Text())
		href, _ := s.Find("a").First().Attr("href")
		link := href
		if strings.HasPrefix(href, "/") {
			link = p.baseURL + href
		}

		items = append(items, domain.EvidenceItem{
			ID:        domain.EvidenceID(domain.SourceCapterra, slug(name)),
			Source:    domain.SourceCapterra,
			Title:     name,
			Content:   domain.TruncateContent(desc),
			URL:       link,
			Score:     max - i,
			Timestamp: domain.NowMillis(),
		})
		return true
	})

	return domain.DedupeAndSort(items)
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
