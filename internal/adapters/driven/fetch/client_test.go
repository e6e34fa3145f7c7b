package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
)

// passthrough builds a strategy that routes every request to a fixed
// URL, ignoring the target. Stands in for a URL-rewriting proxy.
func passthrough(name, to string) Strategy {
	return Strategy{Name: name, Rewrite: func(string) string { return to }}
}

func TestFetch_Failover(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer good.Close()

	c := NewWithStrategies([]Strategy{
		passthrough("bad", bad.URL),
		passthrough("good", good.URL),
	}, nil)

	resp, err := c.Fetch(context.Background(), "https://example.com/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(resp.Body))

	// The winning strategy becomes last-known-good: a second call
	// starts there and never touches the failing strategy again.
	assert.Equal(t, "good", c.LastGoodStrategy())

	var badHits atomic.Int32
	bad.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		badHits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err = c.Fetch(context.Background(), "https://example.com/y", nil)
	require.NoError(t, err)
	assert.Zero(t, badHits.Load())
}

func TestFetch_AllStrategiesExhausted(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	c := NewWithStrategies([]Strategy{
		passthrough("one", bad.URL),
		passthrough("two", bad.URL),
	}, nil)

	_, err := c.Fetch(context.Background(), "https://example.com", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllProxiesFailed)
	// The aggregate error names every underlying cause.
	assert.Contains(t, err.Error(), "one")
	assert.Contains(t, err.Error(), "two")
}

func TestFetch_SkipsStrategyOverFailureLimit(t *testing.T) {
	var hits [2]atomic.Int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits[0].Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits[1].Add(1)
		w.Write([]byte("ok"))
	}))
	defer good.Close()

	c := NewWithStrategies([]Strategy{
		passthrough("flaky", bad.URL),
		passthrough("solid", good.URL),
	}, nil)
	c.failures[0] = FailureLimit
	// Force iteration to start at the over-limit strategy.
	c.lastGood = 0

	_, err := c.Fetch(context.Background(), "https://example.com", nil)
	require.NoError(t, err)
	assert.Zero(t, hits[0].Load(), "over-limit strategy must be skipped")
	assert.Equal(t, int32(1), hits[1].Load())
}

func TestFetch_LastUntriedStrategyAlwaysAttempted(t *testing.T) {
	var hit atomic.Int32
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit.Add(1)
		w.Write([]byte("ok"))
	}))
	defer good.Close()

	// Single strategy, already over the failure limit. It is the
	// last untried strategy for the call, so it still runs instead
	// of the client failing outright.
	c := NewWithStrategies([]Strategy{passthrough("only", good.URL)}, nil)
	c.failures[0] = FailureLimit + 2

	resp, err := c.Fetch(context.Background(), "https://example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, int32(1), hit.Load())
}

func TestFetch_FailureCountersResetAfterInterval(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer good.Close()

	c := NewWithStrategies([]Strategy{
		passthrough("a", good.URL),
		passthrough("b", good.URL),
	}, nil)
	c.failures[0] = FailureLimit
	c.failures[1] = FailureLimit

	base := time.Now()
	c.now = func() time.Time { return base.Add(ResetInterval + time.Second) }

	c.attemptOrder()
	assert.Zero(t, c.failures[0], "counters must clear after the reset interval")
	assert.Zero(t, c.failures[1])
}

func TestFetch_SuccessResetsFailureCounter(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer good.Close()

	c := NewWithStrategies([]Strategy{passthrough("a", good.URL)}, nil)
	c.failures[0] = 2

	_, err := c.Fetch(context.Background(), "https://example.com", nil)
	require.NoError(t, err)
	assert.Zero(t, c.failures[0])
}

func TestJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"name":"widget","count":3}`))
	}))
	defer srv.Close()

	c := NewWithStrategies([]Strategy{passthrough("p", srv.URL)}, nil)

	var got struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, c.JSON(context.Background(), "https://example.com", &got))
	assert.Equal(t, "widget", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>hi</html>"))
	}))
	defer srv.Close()

	c := NewWithStrategies([]Strategy{passthrough("p", srv.URL)}, nil)

	got, err := c.Text(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<html>hi</html>", got)
}

func TestPost_DirectFirst(t *testing.T) {
	var direct, proxied atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		direct.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte("direct"))
	}))
	defer srv.Close()
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		proxied.Add(1)
		w.Write([]byte("proxied"))
	}))
	defer proxy.Close()

	c := NewWithStrategies([]Strategy{passthrough("p", proxy.URL)}, nil)

	resp, err := c.Post(context.Background(), srv.URL, nil, []byte(`{"q":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, "direct", string(resp.Body))
	assert.Equal(t, int32(1), direct.Load())
	assert.Zero(t, proxied.Load())
}

func TestPost_FallsBackToProxies(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte("proxied"))
	}))
	defer proxy.Close()

	c := NewWithStrategies([]Strategy{passthrough("p", proxy.URL)}, nil)

	// Direct target refuses connections; the proxy chain takes over.
	resp, err := c.Post(context.Background(), "http://127.0.0.1:1", nil, []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "proxied", string(resp.Body))
}

func TestFetch_IsolatedInstances(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer good.Close()

	a := NewWithStrategies([]Strategy{passthrough("a1", good.URL), passthrough("a2", good.URL)}, nil)
	b := NewWithStrategies([]Strategy{passthrough("b1", good.URL), passthrough("b2", good.URL)}, nil)

	a.failures[0] = FailureLimit
	assert.Zero(t, b.failures[0], "health state must not be shared across instances")
}
