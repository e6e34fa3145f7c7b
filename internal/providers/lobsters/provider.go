// Package lobsters pulls the Lobsters hottest-stories JSON feed and
// filters it by topic keywords. There is no search endpoint, so this
// provider trades recall for zero-credential trending signal.
package lobsters

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
	"github.com/veridian-labs/oppscan-cli/internal/providers/httpx"
)

const (
	defaultBaseURL  = "https://lobste.rs"
	defaultMaxItems = 15
)

var _ driven.EvidenceProvider = (*Provider)(nil)

// Provider is the Lobsters evidence source.
type Provider struct {
	client  *http.Client
	baseURL string
}

// New creates the Lobsters provider.
func New() *Provider {
	return NewWithBaseURL(defaultBaseURL, nil)
}

// NewWithBaseURL creates a provider against an explicit base URL.
func NewWithBaseURL(baseURL string, client *http.Client) *Provider {
	if client == nil {
		client = httpx.DefaultClient()
	}
	return &Provider{client: client, baseURL: baseURL}
}

// Info returns the provider description.
func (p *Provider) Info() driven.ProviderInfo {
	return driven.ProviderInfo{
		Name:      domain.SourceLobsters,
		RateLimit: "single feed fetch per run",
		Wave:      driven.WaveDirect,
	}
}

// Available always reports true.
func (p *Provider) Available(_ context.Context) bool {
	return true
}

type story struct {
	ShortID      string   `json:"short_id"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Score        int      `json:"score"`
	CommentCount int      `json:"comment_count"`
	Description  string   `json:"description_plain"`
	CreatedAt    string   `json:"created_at"`
	Tags         []string `json:"tags"`
	SubmitterUser string  `json:"submitter_user"`
	CommentsURL  string   `json:"comments_url"`
}

// Search fetches the hottest feed once and keeps stories whose title
// or tags mention any topic keyword.
func (p *Provider) Search(ctx context.Context, keywords []string, opts driven.SearchOptions) []domain.EvidenceItem {
	max := opts.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	var stories []story
	if err := httpx.GetJSON(ctx, p.client, p.baseURL+"/hottest.json", &stories); err != nil {
		logger.Warn("lobsters feed failed: %v", err)
		return nil
	}

	var items []domain.EvidenceItem
	for _, st := range stories {
		if !matchesAny(st, keywords) {
			continue
		}
		items = append(items, toEvidence(st))
	}

	items = domain.DedupeAndSort(items)
	if len(items) > max {
		items = items[:max]
	}
	return items
}

func matchesAny(st story, keywords []string) bool {
	haystack := strings.ToLower(st.Title + " " + st.Description + " " + strings.Join(st.Tags, " "))
	for _, kw := range keywords {
		for _, word := range strings.Fields(strings.ToLower(kw)) {
			if strings.Contains(haystack, word) {
				return true
			}
		}
	}
	return false
}

func toEvidence(st story) domain.EvidenceItem {
	ts := domain.NowMillis()
	if t, err := time.Parse(time.RFC3339, st.CreatedAt); err == nil {
		ts = t.UnixMilli()
	}
	link := st.URL
	if link == "" {
		link = st.CommentsURL
	}
	return domain.EvidenceItem{
		ID:        domain.EvidenceID(domain.SourceLobsters, st.ShortID),
		Source:    domain.SourceLobsters,
		Title:     st.Title,
		Content:   domain.TruncateContent(st.Description),
		URL:       link,
		Score:     st.Score + 2*st.CommentCount,
		Timestamp: ts,
		Author:    st.SubmitterUser,
		Tags:      st.Tags,
	}
}
