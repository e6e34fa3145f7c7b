package producthunt

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
)

type stubFetcher struct {
	html string
	err  error
}

func (f *stubFetcher) Fetch(context.Context, string, http.Header) (*driven.FetchResponse, error) {
	return nil, errors.New("not used")
}
func (f *stubFetcher) JSON(context.Context, string, any) error { return errors.New("not used") }
func (f *stubFetcher) Text(context.Context, string) (string, error) {
	return f.html, f.err
}
func (f *stubFetcher) Post(context.Context, string, http.Header, []byte) (*driven.FetchResponse, error) {
	return nil, errors.New("not used")
}

const searchHTML = `<html><body>
<div data-test="post-item-1">
  <a href="/posts/invoicely" data-test="post-name">Invoicely</a>
  <div data-test="post-tagline">Invoicing loved by 50,000 growing customers</div>
</div>
<div data-test="post-item-2">
  <a href="/posts/facturar" data-test="post-name">Facturar</a>
  <div data-test="post-tagline">Invoicing for freelancers in España, growing fast</div>
</div>
<div data-test="post-item-3">
  <a href="/posts/papertrail" data-test="post-name">PaperTrail</a>
  <div data-test="post-tagline">Keep receipts organised</div>
</div>
</body></html>`

func TestSearch_ExtractsProducts(t *testing.T) {
	p := NewWithBaseURL(&stubFetcher{html: searchHTML}, "https://ph.test")
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{})

	require.Len(t, items, 3)
	byID := map[string]domain.EvidenceItem{}
	for _, it := range items {
		byID[it.ID] = it
	}

	inv := byID["producthunt-post-item-1"]
	assert.Equal(t, "Invoicely", inv.Title)
	assert.Equal(t, "https://ph.test/posts/invoicely", inv.URL)
	assert.Equal(t, domain.SourceProductHunt, inv.Source)
	assert.NotZero(t, inv.Score)
}

func TestSearch_ImportOpportunityFlag(t *testing.T) {
	p := NewWithBaseURL(&stubFetcher{html: searchHTML}, "https://ph.test")
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{})
	require.Len(t, items, 3)

	flags := map[string]bool{}
	for _, it := range items {
		flags[it.Title] = it.IsImportOpportunity
	}

	// Traction language without target-market terms qualifies.
	assert.True(t, flags["Invoicely"])
	// Already serves the Spanish-speaking market.
	assert.False(t, flags["Facturar"])
	// No traction language at all.
	assert.False(t, flags["PaperTrail"])
}

func TestSearch_RanksByPagePosition(t *testing.T) {
	p := NewWithBaseURL(&stubFetcher{html: searchHTML}, "https://ph.test")
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{MaxItems: 2})

	require.Len(t, items, 2)
	assert.Greater(t, items[0].Score, items[1].Score)
	assert.Equal(t, "Invoicely", items[0].Title)
}

func TestSearch_FetchFailureReturnsEmpty(t *testing.T) {
	p := NewWithBaseURL(&stubFetcher{err: errors.New("all proxies failed")}, "https://ph.test")
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{})
	assert.Empty(t, items)
}
