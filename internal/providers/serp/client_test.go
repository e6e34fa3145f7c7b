package serp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/oppscan-cli/internal/adapters/driven/fetch"
	"github.com/veridian-labs/oppscan-cli/internal/adapters/driven/storage/memory"
	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *memory.QuotaStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fc := fetch.NewWithStrategies([]fetch.Strategy{
		{Name: "test", Rewrite: func(string) string { return srv.URL }},
	}, nil)
	store := memory.NewQuotaStore()
	return NewWithEndpoint("test-key", srv.URL, fc, store), store
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"organic":[
			{"title":"InvoiceBot","link":"https://example.com/a","snippet":"automated invoicing","position":1},
			{"title":"BillFlow","link":"https://example.com/b","snippet":"billing workflows","position":2}
		]}`))
	})
}

func TestSearch_MapsResults(t *testing.T) {
	c, _ := newTestClient(t, okHandler())

	items := c.Search(context.Background(), []string{"invoicing"}, driven.SearchOptions{})
	require.Len(t, items, 2)
	assert.Equal(t, domain.SourceSerp, items[0].Source)
	assert.Equal(t, "InvoiceBot", items[0].Title)
	assert.Contains(t, items[0].ID, "serp-")
}

func TestQuota_Monotonicity(t *testing.T) {
	c, _ := newTestClient(t, okHandler())
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		require.True(t, c.CanUse(ctx))
		c.Search(ctx, []string{"invoicing"}, driven.SearchOptions{})
	}

	stats, err := c.UsageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, stats.Used)
	assert.Equal(t, MaxQueries-SafetyBuffer, stats.Limit)
	assert.Equal(t, stats.Limit-n, stats.Remaining)
	assert.False(t, stats.Disabled)
}

func TestQuota_DisablesAtLimit(t *testing.T) {
	c, store := newTestClient(t, okHandler())
	ctx := context.Background()

	// One query below the effective limit.
	require.NoError(t, store.PutQuota(ctx, ProviderKey, domain.QuotaState{
		Count: MaxQueries - SafetyBuffer - 1,
	}))
	require.True(t, c.CanUse(ctx))

	items := c.Search(ctx, []string{"invoicing"}, driven.SearchOptions{})
	assert.NotEmpty(t, items, "the final in-quota query still runs")

	// Crossing the limit disables the provider persistently.
	assert.False(t, c.CanUse(ctx))
	state, err := store.GetQuota(ctx, ProviderKey)
	require.NoError(t, err)
	assert.True(t, state.Disabled)

	// Subsequent calls short-circuit to empty without touching the
	// network.
	items = c.Search(ctx, []string{"invoicing"}, driven.SearchOptions{})
	assert.Empty(t, items)

	// Exhausting quota makes the client unavailable, not
	// unconfigured: the key is still present.
	info := c.Info()
	assert.True(t, info.Configured)
	assert.False(t, c.Available(ctx))
}

func TestQuota_RemainsDisabledUntilReset(t *testing.T) {
	c, _ := newTestClient(t, okHandler())
	ctx := context.Background()

	require.NoError(t, c.store.PutQuota(ctx, ProviderKey, domain.QuotaState{
		Count:    MaxQueries,
		Disabled: true,
	}))
	assert.False(t, c.CanUse(ctx))

	require.NoError(t, c.ResetUsage(ctx))
	assert.True(t, c.CanUse(ctx))

	stats, err := c.UsageStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Used)
}

func TestQuota_CountsBeforeNetworkCall(t *testing.T) {
	// The endpoint always fails; the counter must still advance.
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	ctx := context.Background()

	items := c.Search(ctx, []string{"invoicing"}, driven.SearchOptions{})
	assert.Empty(t, items)

	state, err := store.GetQuota(ctx, ProviderKey)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Count, "a failed query still spends quota")
}

func TestSearch_UnconfiguredReturnsEmpty(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	fc := fetch.NewWithStrategies([]fetch.Strategy{
		{Name: "test", Rewrite: func(string) string { return srv.URL }},
	}, nil)
	c := NewWithEndpoint("", srv.URL, fc, memory.NewQuotaStore())

	assert.False(t, c.CanUse(context.Background()))
	assert.Empty(t, c.Search(context.Background(), []string{"x"}, driven.SearchOptions{}))
	assert.Zero(t, hits.Load())
}
