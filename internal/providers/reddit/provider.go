// Package reddit queries Reddit's public search JSON API for
// complaint and feature-request posts. No credential is required; the
// public listing endpoint accepts direct requests.
package reddit

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
	defaultBaseURL  = "https://www.reddit.com"
	defaultMaxItems = 25

	// maxKeywords bounds how many topic keywords are crossed with
	// pain phrases; the rest add latency without much new signal.
	maxKeywords = 2
)

// Ensure Provider implements the interface.
var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Reddit evidence source.
type Provider struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// New creates the Reddit provider.
func New() *Provider {
	return NewWithBaseURL(defaultBaseURL, nil)
}

// NewWithBaseURL creates a provider against an explicit base URL.
// Used by tests to point at a local server.
func NewWithBaseURL(baseURL string, client *http.Client) *Provider {
	if client == nil {
		client = httpx.DefaultClient()
	}
	return &Provider{
		client:  client,
		baseURL: baseURL,
		// Self-imposed politeness between query permutations.
		limiter: rate.NewLimiter(rate.Every(400*time.Millisecond), 1),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceReddit,
		RateLimit: "~60 requests/minute unauthenticated",
		Wave:      driven.WaveDirect,
	}
}

// Available always reports true: the public API needs no credential.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search crosses topic keywords with pain phrases, queries each
// permutation, and deduplicates locally before returning.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	queries := httpx.CrossQueries(keywords, opts.PainPhrases, maxKeywords)

	var items []domain.EvidenceItem
	for i, q := range queries {
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}
		batch, err := p.searchOne(ctx, q, max)
		if err != nil {
			logger.Warn("reddit query %q failed: %v", q, err)
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

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
}

func (p *Provider) searchOne(ctx context.Context, query string, limit int) ([]domain.EvidenceItem, error) {
	u := fmt.Sprintf("%s/search.json?q=%s&sort=relevance&t=year&limit=%d",
		p.baseURL, url.QueryEscape(query), limit)

	var l listing
	if err := httpx.GetJSON(ctx, p.client, u, &l); err != nil {
		return nil, err
	}

	items := make([]domain.EvidenceItem, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		items = append(items, p.toEvidence(child.Data))
	}
	return items, nil
}

func (p *Provider) toEvidence(po post) domain.EvidenceItem {
	ts := int64(po.CreatedUTC * 1000)
	if ts == 0 {
		ts = domain.NowMillis()
	}
	return domain.EvidenceItem{
		ID:      domain.EvidenceID(domain.SourceReddit, po.ID),
		Source:  domain.SourceReddit,
		Title:   po.Title,
		Content: domain.TruncateContent(po.SelfText),
		URL:     "https://www.reddit.com" + po.Permalink,
		// Upvotes plus weighted comment count: discussion volume is
		// a stronger friction signal than raw votes on Reddit.
		Score:     po.Ups + 2*po.NumComments,
		Timestamp: ts,
		Author:    po.Author,
		Tags:      []string{"r/" + po.Subreddit},
	}
}
