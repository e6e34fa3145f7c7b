// Package g2 scrapes G2 category search pages for established
// competitors and their review sentiment. Feeds the competitors
// bucket; fetched through the proxy chain.
package g2

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	defaultBaseURL  = "https://www.g2.com"
	defaultMaxItems = 15
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the G2 evidence source.
type Provider struct {
	fetcher driven.Fetcher
	baseURL string
}

// New creates the G2 provider.
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
		Name:      domain.SourceG2,
		RateLimit: "proxied scrape, one page/run",
		Wave:      driven.WaveProxied,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search scrapes the product search page for the primary keyword.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	if len(keywords) == 0 {
		return nil
	}
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	u := fmt.Sprintf("%s/search?query=%s", p.baseURL, strings.ReplaceAll(keywords[0], " ", "+"))
	html, err := p.fetcher.Text(ctx, u)
	if err != nil {
		logger.Warn("g2 scrape %q failed: %v", keywords[0], err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("g2 parse failed: %v", err)
		return nil
	}

	var items []domain.EvidenceItem
	doc.Find("div.product-listing, div[class*='product-card']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= max {
			return false
		}
		name := strings.TrimSpace(s.Find("div.product-listing__product-name, h3").First().Text())
		if name == "" {
			return true
		}
		desc := strings.TrimSpace(s.Find("p").First().Text())
		href, _ := s.Find("a").First().Attr("href")

		// "(1,234)" review counts when present; position otherwise.
		score := max - i
		if count := parseReviewCount(s.Find("span[aria-label*='review'], .review-count").First().Text()); count > 0 {
			score = count
		}

		items = append(items, domain.EvidenceItem{
			ID:        domain.EvidenceID(domain.SourceG2, slug(name)),
			Source:    domain.SourceG2,
			Title:     name,
			Content:   domain.TruncateContent(desc),
			URL:       p.baseURL + href,
			Score:     score,
			Timestamp: domain.NowMillis(),
		})
		return true
	})

	return domain.DedupeAndSort(items)
}

func parseReviewCount(s string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
