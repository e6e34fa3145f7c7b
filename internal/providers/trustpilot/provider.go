// Package trustpilot scrapes Trustpilot review search pages. Low-star
// reviews of incumbent products are concentrated friction evidence,
// so results feed the pain-points bucket. Fetched through the proxy
// chain.
package trustpilot

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
	defaultBaseURL  = "https://www.trustpilot.com"
	defaultMaxItems = 20
	maxKeywords     = 2
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Trustpilot evidence source.
type Provider struct {
	fetcher driven.Fetcher
	baseURL string
	limiter *rate.Limiter
}

// New creates the Trustpilot provider.
func New(fetcher driven.Fetcher) *Provider {
	return NewWithBaseURL(fetcher, defaultBaseURL)
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(fetcher driven.Fetcher, baseURL string) *Provider {
	return &Provider{
		fetcher: fetcher,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(700*time.Millisecond), 1),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceTrustpilot,
		RateLimit: "proxied scrape, throttled to ~2 pages/run",
		Wave:      driven.WaveProxied,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search scrapes review search results for each leading keyword.
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
		batch, err := p.scrape(ctx, kw, max)
		if err != nil {
			logger.Warn("trustpilot scrape %q failed: %v", kw, err)
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

func (p *Provider) scrape(ctx context.Context, keyword string, limit int) ([]domain.EvidenceItem, error) {
	u := fmt.Sprintf("%s/search?query=%s", p.baseURL, strings.ReplaceAll(keyword, " ", "%20"))
	html, err := p.fetcher.Text(ctx, u)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var items []domain.EvidenceItem
	doc.Find("article[class*='review'], div.review-card").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		title := strings.TrimSpace(s.Find("h2, a[data-review-title-typography]").First().Text())
		body := strings.TrimSpace(s.Find("p").First().Text())
		if title == "" && body == "" {
			return true
		}
		if title == "" {
			title = domain.TruncateContent(body)
		}
		href, _ := s.Find("a").First().Attr("href")

		items = append(items, domain.EvidenceItem{
			ID:        domain.EvidenceID(domain.SourceTrustpilot, fmt.Sprintf("%s-%d", slug(keyword), i)),
			Source:    domain.SourceTrustpilot,
			Title:     title,
			Content:   domain.TruncateContent(body),
			URL:       p.baseURL + href,
			Score:     limit - i,
			Timestamp: domain.NowMillis(),
		})
		return true
	})

	return items, nil
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}
