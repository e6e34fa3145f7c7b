// Package devto queries the public dev.to articles API. Developer
// writeups about tooling friction feed the pain-points bucket.
package devto

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
	"github.com/veridian-labs/oppscan-cli/internal/providers/httpx"
)

const (
	defaultBaseURL  = "https://dev.to/api"
	defaultMaxItems = 20
	maxKeywords     = 2
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the dev.to evidence source.
type Provider struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// New creates the dev.to provider.
func New() *Provider {
	return NewWithBaseURL(defaultBaseURL, nil)
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(baseURL string, client *http.Client) *Provider {
	if client == nil {
		client = httpx.DefaultClient()
	}
	return &Provider{
		client:  client,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(400*time.Millisecond), 1),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceDevTo,
		RateLimit: "no published limit, politeness throttled",
		Wave:      driven.WaveDirect,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search fetches articles tagged with each keyword. dev.to tags are
// lowercase alphanumerics, so keywords are slugified first.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	var items []domain.EvidenceItem
	count := 0
	for _, kw := range keywords {
		if count >= maxKeywords {
			break
		}
		tag := slugify(kw)
		if tag == "" {
			continue
		}
		if count > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}
		count++

		batch, err := p.fetchTag(ctx, tag, max)
		if err != nil {
			logger.Warn("devto tag %q failed: %v", tag, err)
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

type article struct {
	ID                     int64    `json:"id"`
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	URL                    string   `json:"url"`
	PositiveReactionsCount int      `json:"positive_reactions_count"`
	CommentsCount          int      `json:"comments_count"`
	PublishedTimestamp     string   `json:"published_timestamp"`
	TagList                []string `json:"tag_list"`
	User                   struct {
		Username string `json:"username"`
	} `json:"user"`
}

func (p *Provider) fetchTag(ctx context.Context, tag string, limit int) ([]domain.EvidenceItem, error) {
	u := fmt.Sprintf("%s/articles?tag=%s&per_page=%d", p.baseURL, url.QueryEscape(tag), limit)

	var articles []article
	if err := httpx.GetJSON(ctx, p.client, u, &articles); err != nil {
		return nil, err
	}

	items := make([]domain.EvidenceItem, 0, len(articles))
	for _, a := range articles {
		ts := domain.NowMillis()
		if t, err := time.Parse(time.RFC3339, a.PublishedTimestamp); err == nil {
			ts = t.UnixMilli()
		}
		items = append(items, domain.EvidenceItem{
			ID:        domain.EvidenceID(domain.SourceDevTo, fmt.Sprintf("%d", a.ID)),
			Source:    domain.SourceDevTo,
			Title:     a.Title,
			Content:   domain.TruncateContent(a.Description),
			URL:       a.URL,
			Score:     a.PositiveReactionsCount + 2*a.CommentsCount,
			Timestamp: ts,
			Author:    a.User.Username,
			Tags:      a.TagList,
		})
	}
	return items, nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
