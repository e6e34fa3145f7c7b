// Package hackernews queries the Algolia Hacker News search API.
// It is the most reliable always-on source and therefore also backs
// the quick-search path. Two provider variants exist: the default one
// feeds the pain-points bucket from story and comment text, and the
// trending variant feeds the trending-topics bucket from recent
// front-page stories.
package hackernews

import (
	"context"
	"fmt"
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
	defaultBaseURL  = "https://hn.algolia.com/api/v1"
	defaultMaxItems = 30
	maxKeywords     = 2
)

// Ensure Provider implements the interface.
var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Hacker News evidence source.
type Provider struct {
	client   *http.Client
	baseURL  string
	limiter  *rate.Limiter
	trending bool
}

// New creates the pain-point variant.
func New() *Provider {
	return NewWithBaseURL(defaultBaseURL, nil)
}

// NewTrending creates the trending variant, which searches recent
// front-page stories by date instead of relevance.
func NewTrending() *Provider {
	p := NewWithBaseURL(defaultBaseURL, nil)
	p.trending = true
	return p
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(baseURL string, client *http.Client) *Provider {
	if client == nil {
		client = httpx.DefaultClient()
	}
	return &Provider{
		client:  client,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	name := domain.SourceHackerNews
	return driven.ProviderInfo{
		Name:      name,
		RateLimit: "10000 requests/hour (Algolia public)",
		Wave:      driven.WaveDirect,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search queries the Algolia API for each keyword permutation.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	phrases := opts.PainPhrases
	if p.trending {
		// Trending wants raw topic reach, not complaint language.
		phrases = nil
	}
	queries := httpx.CrossQueries(keywords, phrases, maxKeywords)

	var items []domain.EvidenceItem
	for i, q := range queries {
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}
		batch, err := p.searchOne(ctx, q, max)
		if err != nil {
			logger.Warn("hackernews query %q failed: %v", q, err)
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
	Hits []hit `json:"hits"`
}

type hit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	StoryTitle  string `json:"story_title"`
	StoryText   string `json:"story_text"`
	CommentText string `json:"comment_text"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
}

func (p *Provider) searchOne(ctx context.Context, query string, limit int) ([]domain.EvidenceItem, error) {
	endpoint := "search"
	tags := "story"
	if p.trending {
		endpoint = "search_by_date"
		tags = "front_page"
	}
	u := fmt.Sprintf("%s/%s?query=%s&tags=%s&hitsPerPage=%d",
		p.baseURL, endpoint, url.QueryEscape(query), tags, limit)

	var sr searchResponse
	if err := httpx.GetJSON(ctx, p.client, u, &sr); err != nil {
		return nil, err
	}

	items := make([]domain.EvidenceItem, 0, len(sr.Hits))
	for _, h := range sr.Hits {
		items = append(items, toEvidence(h))
	}
	return items, nil
}

func toEvidence(h hit) domain.EvidenceItem {
	title := h.Title
	if title == "" {
		title = h.StoryTitle
	}
	content := h.StoryText
	if content == "" {
		content = h.CommentText
	}
	link := h.URL
	if link == "" {
		link = "https://news.ycombinator.com/item?id=" + h.ObjectID
	}
	ts := h.CreatedAtI * 1000
	if ts == 0 {
		ts = domain.NowMillis()
	}
	return domain.EvidenceItem{
		ID:        domain.EvidenceID(domain.SourceHackerNews, h.ObjectID),
		Source:    domain.SourceHackerNews,
		Title:     title,
		Content:   domain.TruncateContent(content),
		URL:       link,
		Score:     h.Points + 2*h.NumComments,
		Timestamp: ts,
		Author:    h.Author,
	}
}
