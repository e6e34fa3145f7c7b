// Package stackexchange queries the Stack Exchange 2.3 API for
// unanswered pain expressed as questions. Works unauthenticated with
// a shared IP quota.
package stackexchange

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
	"github.com/veridian-labs/oppscan-cli/internal/providers/httpx"
)

const (
	defaultBaseURL  = "https://api.stackexchange.com/2.3"
	defaultSite     = "stackoverflow"
	defaultMaxItems = 20
	maxKeywords     = 2
)

// Ensure Provider implements the interface.
var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Stack Exchange evidence source.
type Provider struct {
	client  *http.Client
	baseURL string
	site    string
	limiter *rate.Limiter
}

// New creates the Stack Exchange provider against Stack Overflow.
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
		site:    defaultSite,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceStackExchange,
		RateLimit: "300 requests/day per IP unauthenticated",
		Wave:      driven.WaveDirect,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search queries /search/advanced per keyword, sorted by votes.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	queries := httpx.CrossQueries(keywords, nil, maxKeywords)

	var items []domain.EvidenceItem
	for i, q := range queries {
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}
		batch, err := p.searchOne(ctx, q, max)
		if err != nil {
			logger.Warn("stackexchange query %q failed: %v", q, err)
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

type searchResponse struct {
	Items []question `json:"items"`
}

type question struct {
	QuestionID   int64    `json:"question_id"`
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Score        int      `json:"score"`
	AnswerCount  int      `json:"answer_count"`
	CreationDate int64    `json:"creation_date"`
	Tags         []string `json:"tags"`
	Owner        struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

func (p *Provider) searchOne(ctx context.Context, query string, limit int) ([]domain.EvidenceItem, error) {
	u := fmt.Sprintf("%s/search/advanced?order=desc&sort=votes&q=%s&site=%s&pagesize=%d",
		p.baseURL, url.QueryEscape(query), p.site, limit)

	var sr searchResponse
	if err := httpx.GetJSON(ctx, p.client, u, &sr); err != nil {
		return nil, err
	}

	items := make([]domain.EvidenceItem, 0, len(sr.Items))
	for _, q := range sr.Items {
		ts := q.CreationDate * 1000
		if ts == 0 {
			ts = domain.NowMillis()
		}
		items = append(items, domain.EvidenceItem{
			ID:     domain.EvidenceID(domain.SourceStackExchange, fmt.Sprintf("%d", q.QuestionID)),
			Source: domain.SourceStackExchange,
			// The API HTML-escapes titles.
			Title:     html.UnescapeString(q.Title),
			URL:       q.Link,
			Score:     q.Score + 2*q.AnswerCount,
			Timestamp: ts,
			Author:    q.Owner.DisplayName,
			Tags:      q.Tags,
		})
	}
	return items, nil
}
