// Package indiehackers scrapes Indie Hackers search pages. Posts
// there mix complaints with build-in-public revenue reports, so the
// adapter feeds the trending bucket and tags revenue mentions.
// Fetched through the proxy chain.
package indiehackers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	defaultBaseURL  = "https://www.indiehackers.com"
	defaultMaxItems = 15
)

// mrrPattern matches "$4,200 MRR" style revenue mentions.
var mrrPattern = regexp.MustCompile(`(?i)\$[\d,]+k?\s*(?:/\s*mo|mrr)`)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Indie Hackers evidence source.
type Provider struct {
	fetcher driven.Fetcher
	baseURL string
}

// New creates the Indie Hackers provider.
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
		Name:      domain.SourceIndieHackers,
		RateLimit: "proxied scrape, one page/run",
		Wave:      driven.WaveProxied,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search scrapes post search results for the primary keyword.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	if len(keywords) == 0 {
		return nil
	}
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	u := fmt.Sprintf("%s/search?q=%s", p.baseURL, strings.ReplaceAll(keywords[0], " ", "%20"))
	html, err := p.fetcher.Text(ctx, u)
	if err != nil {
		logger.Warn("indiehackers scrape %q failed: %v", keywords[0], err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("indiehackers parse failed: %v", err)
		return nil
	}

	var items []domain.EvidenceItem
	doc.Find("a[href^='/post/'], div.feed-item").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= max {
			return false
		}
		title := strings.TrimSpace(s.Find("h3, span.feed-item__title").First().Text())
		if title == "" {
			title = strings.TrimSpace(s.Text())
		}
		if title == "" {
			return true
		}
		snippet := strings.TrimSpace(s.Find("p").First().Text())
		href, _ := s.Attr("href")
		if href == "" {
			href, _ = s.Find("a").First().Attr("href")
		}

		var tags []string
		if mrrPattern.MatchString(title + " " + snippet) {
			tags = append(tags, "revenue-mention")
		}

		items = append(items, domain.EvidenceItem{
			ID:        domain.EvidenceID(domain.SourceIndieHackers, slug(title)),
			Source:    domain.SourceIndieHackers,
			Title:     title,
			Content:   domain.TruncateContent(snippet),
			URL:       p.baseURL + href,
			Score:     max - i,
			Timestamp: domain.NowMillis(),
			Tags:      tags,
		})
		return true
	})

	items = domain.DedupeAndSort(items)
	if len(items) > max {
		items = items[:max]
	}
	return items
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() > 60 {
		return b.String()[:60]
	}
	return b.String()
}
