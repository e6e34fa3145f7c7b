// Package github searches GitHub issues for friction reports: open
// bug reports and feature requests are direct evidence of workflow
// gaps. Uses the go-github search API; a token raises the rate limit
// but is not required.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	defaultMaxItems = 20

	// maxQueries bounds search API calls per run; the issue search
	// endpoint has the tightest limit on GitHub (30/minute).
	maxQueries = 2
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the GitHub issues evidence source.
type Provider struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// New creates the GitHub provider. An empty token means anonymous
// access with GitHub's lower unauthenticated rate limit.
func New(token string) *Provider {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	return NewWithClient(gh.NewClient(httpClient))
}

// NewWithClient creates a provider around an existing go-github
// client. Used by tests with a client pointed at a local server.
func NewWithClient(client *gh.Client) *Provider {
	return &Provider{
		gh:      client,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceGitHub,
		RateLimit: "30 search requests/minute authenticated, 10 anonymous",
		Wave:      driven.WaveDirect,
	}
}

// Available always reports true: anonymous access is permitted.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

// Search runs issue searches for the leading keywords.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	var items []domain.EvidenceItem
	for i, kw := range keywords {
		if i >= maxQueries {
			break
		}
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}

		query := fmt.Sprintf("%q in:title,body is:issue is:open", kw)
		result, _, err := p.gh.Search.Issues(ctx, query, &gh.SearchOptions{
			Sort:        "reactions",
			Order:       "desc",
			ListOptions: gh.ListOptions{PerPage: max},
		})
		if err != nil {
			logger.Warn("github issue search %q failed: %v", kw, err)
			continue
		}

		for _, issue := range result.Issues {
			items = append(items, toEvidence(issue))
		}
	}

	items = domain.DedupeAndSort(items)
	if len(items) > max {
		items = items[:max]
	}
	return items
}

func toEvidence(issue *gh.Issue) domain.EvidenceItem {
	ts := domain.NowMillis()
	if created := issue.GetCreatedAt(); !created.IsZero() {
		ts = created.Time.UnixMilli()
	}

	var tags []string
	for _, label := range issue.Labels {
		tags = append(tags, label.GetName())
	}

	return domain.EvidenceItem{
		ID:        domain.EvidenceID(domain.SourceGitHub, fmt.Sprintf("%d", issue.GetID())),
		Source:    domain.SourceGitHub,
		Title:     issue.GetTitle(),
		Content:   domain.TruncateContent(issue.GetBody()),
		URL:       issue.GetHTMLURL(),
		Score:     issue.GetReactions().GetTotalCount() + issue.GetComments(),
		Timestamp: ts,
		Author:    issue.GetUser().GetLogin(),
		Tags:      tags,
	}
}
