// Package producthunt scrapes Product Hunt search pages for existing
// products in a topic space. Results feed the competitors bucket.
// Product Hunt rejects direct requests from unfamiliar origins, so
// pages are fetched through the proxy chain.
package producthunt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	defaultBaseURL  = "https://www.producthunt.com"
	defaultMaxItems = 15
	maxKeywords     = 2
)

// tractionWords suggest a product already has real adoption
// somewhere, which is what makes a missing local variant an import
// opportunity.
var tractionWords = []string{
	"customers", "users", "revenue", "popular", "growing", "launched",
}

// targetMarketTerms indicate the product already addresses the
// Spanish-speaking market, so importing it there adds nothing.
var targetMarketTerms = []string{
	"spain", "spanish", "españa", "español", "latam", ".es",
}

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Product Hunt evidence source.
type Provider struct {
	fetcher driven.Fetcher
	baseURL string
	limiter *rate.Limiter
}

// New creates the Product Hunt provider.
func New(fetcher driven.Fetcher) *Provider {
	return NewWithBaseURL(fetcher, defaultBaseURL)
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(fetcher driven.Fetcher, baseURL string) *Provider {
	return &Provider{
		fetcher: fetcher,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(600*time.Millisecond), 1),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceProductHunt,
		RateLimit: "proxied scrape, throttled to ~2 pages/run",
		Wave:      driven.WaveProxied,
	}
}

// Available always reports true; failures degrade to empty results.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search scrapes the search page for each leading keyword.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	var items []domain.EvidenceItem
	for i, kw := range keywords {
		if i >= maxKeywords {
			break
		}
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}
		batch, err := p.scrapeSearch(ctx, kw, max)
		if err != nil {
			logger.Warn("producthunt scrape %q failed: %v", kw, err)
			continue
		}
		items = append(items, batch...)
	}

	items = domain.DedupeAndSort(items)
	if len(items) > max {
		items = items[:max]
	}
	return items
}

func (p *Provider) scrapeSearch(ctx context.Context, keyword string, limit int) ([]domain.EvidenceItem, error) {
	u := fmt.Sprintf("%s/search?q=%s", p.baseURL, strings.ReplaceAll(keyword, " ", "+"))
	html, err := p.fetcher.Text(ctx, u)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var items []domain.EvidenceItem
	doc.Find("[data-test^='post-item']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		name := strings.TrimSpace(s.Find("a[data-test='post-name']").First().Text())
		if name == "" {
			name = strings.TrimSpace(s.Find("h3").First().Text())
		}
		if name == "" {
			return true
		}
		tagline := strings.TrimSpace(s.Find("[data-test='post-tagline']").First().Text())
		href, _ := s.Find("a").First().Attr("href")

		nativeID, ok := s.Attr("data-test")
		if !ok || nativeID == "" {
			nativeID = fmt.Sprintf("pos-%d-%s", i, slug(name))
		}

		text := name + " " + tagline
		items = append(items, domain.EvidenceItem{
			ID:      domain.EvidenceID(domain.SourceProductHunt, nativeID),
			Source:  domain.SourceProductHunt,
			Title:   name,
			Content: domain.TruncateContent(tagline),
			URL:     p.baseURL + href,
			// No engagement counts survive the proxied HTML
			// reliably; rank position stands in.
			Score:               2 * (limit - i),
			Timestamp:           domain.NowMillis(),
			IsImportOpportunity: isImportOpportunity(text),
		})
		return true
	})

	return items, nil
}

// isImportOpportunity flags products with traction language that do
// not mention the Spanish-speaking target market.
func isImportOpportunity(text string) bool {
	lower := strings.ToLower(text)
	hasTraction := false
	for _, w := range tractionWords {
		if strings.Contains(lower, w) {
			hasTraction = true
			break
		}
	}
	if !hasTraction {
		return false
	}
	for _, term := range targetMarketTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
