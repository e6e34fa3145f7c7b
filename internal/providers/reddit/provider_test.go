package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
)

const listingJSON = `{"data":{"children":[
	{"data":{"id":"abc","title":"Invoicing is a nightmare","selftext":"I wrote a python script to fix it","permalink":"/r/smallbusiness/abc","ups":40,"num_comments":12,"created_utc":1700000000,"author":"tired_founder","subreddit":"smallbusiness"}},
	{"data":{"id":"def","title":"Best invoicing tool?","selftext":"","permalink":"/r/smallbusiness/def","ups":5,"num_comments":3,"created_utc":1700000100,"author":"asker","subreddit":"smallbusiness"}}
]}}`

func TestSearch_MapsListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.Write([]byte(listingJSON))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL, srv.Client())
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{})

	require.Len(t, items, 2)
	// Sorted descending by engagement: 40+2*12=64 beats 5+2*3=11.
	assert.Equal(t, "reddit-abc", items[0].ID)
	assert.Equal(t, 64, items[0].Score)
	assert.Equal(t, domain.SourceReddit, items[0].Source)
	assert.Equal(t, "https://www.reddit.com/r/smallbusiness/abc", items[0].URL)
	assert.Equal(t, int64(1700000000000), items[0].Timestamp)
	assert.Equal(t, []string{"r/smallbusiness"}, items[0].Tags)
}

func TestSearch_DeduplicatesAcrossQueryPermutations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(listingJSON))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL, srv.Client())
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{
		PainPhrases: []string{"frustrating", "wish there was"},
	})

	// Two permutations return the same posts; only one instance of
	// each ID survives.
	assert.Len(t, items, 2)
}

func TestSearch_NeverFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL, srv.Client())
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{})
	assert.Empty(t, items)
}

func TestSearch_RespectsMaxItems(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(listingJSON))
	}))
	defer srv.Close()

	p := NewWithBaseURL(srv.URL, srv.Client())
	items := p.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{MaxItems: 1})
	assert.Len(t, items, 1)
}
