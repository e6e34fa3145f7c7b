// Package fetch implements the resilient HTTP client used by scrape
// providers. Certain hosts reject direct requests from unfamiliar
// origins, so the client routes each request through an ordered chain
// of public proxy strategies with short-term proxy-health memory:
// a last-known-good index and rolling per-strategy failure counters
// that clear on a fixed interval.
//
// The health state is a convenience optimisation, not a correctness
// requirement. It is safe to reset to defaults at any time; a raced
// counter update merely costs a sub-optimal proxy choice.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/veridian-labs/oppscan-cli/internal/core/domain"
	"github.com/veridian-labs/oppscan-cli/internal/core/ports/driven"
	"github.com/veridian-labs/oppscan-cli/internal/logger"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 20 * time.Second

	// FailureLimit is how many rolling failures a strategy may
	// accumulate before it is skipped.
	FailureLimit = 3

	// ResetInterval is how often all failure counters clear, so a
	// misbehaving strategy is never locked out permanently.
	ResetInterval = 5 * time.Minute

	// MaxBodySize caps how much of a response body is read.
	MaxBodySize = 10 << 20
)

// Strategy is one proxy route: a pure function rewriting the target
// URL into a proxied URL.
type Strategy struct {
	Name    string
	Rewrite func(target string) string
}

// DefaultStrategies returns the built-in proxy chain, most reliable
// first.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "allorigins",
			Rewrite: func(target string) string {
				return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
			},
		},
		{
			Name: "corsproxy",
			Rewrite: func(target string) string {
				return "https://corsproxy.io/?url=" + url.QueryEscape(target)
			},
		},
		{
			Name: "codetabs",
			Rewrite: func(target string) string {
				return "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(target)
			},
		},
		{
			Name: "thingproxy",
			Rewrite: func(target string) string {
				return "https://thingproxy.freeboard.io/fetch/" + target
			},
		},
	}
}

// Ensure Client implements the interface.
var _ driven.Fetcher = (*Client)(nil)

// Client is the resilient fetch client. Each instance owns its own
// proxy-health state; construct one per process and inject it into
// whatever builds the scrape providers, so tests can use isolated
// instances instead of hidden globals.
type Client struct {
	httpClient *http.Client

	mu         sync.Mutex
	strategies []Strategy
	failures   []int
	lastGood   int
	lastReset  time.Time

	// now is a clock hook for tests.
	now func() time.Time
}

// New creates a client with the default strategy chain.
func New() *Client {
	return NewWithStrategies(DefaultStrategies(), nil)
}

// NewWithStrategies creates a client with an explicit strategy chain.
// If httpClient is nil a default client with DefaultTimeout is used.
func NewWithStrategies(strategies []Strategy, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		strategies: strategies,
		failures:   make([]int, len(strategies)),
		lastReset:  time.Now(),
		now:        time.Now,
	}
}

// Fetch retrieves rawURL through the proxy chain.
//
// Strategies are tried starting from the last-known-good index.
// A strategy at or over FailureLimit is skipped unless it is the last
// untried strategy for this call: the final candidate always gets a
// chance rather than failing the request outright. On success the
// winning strategy becomes the new last-known-good and its counter
// resets. When every strategy is exhausted the call fails with a
// single aggregate error wrapping domain.ErrAllProxiesFailed.
func (c *Client) Fetch(ctx context.Context, rawURL string, header http.Header) (*driven.FetchResponse, error) {
	return c.fetch(ctx, http.MethodGet, rawURL, header, nil)
}

func (c *Client) fetch(ctx context.Context, method, rawURL string, header http.Header, body []byte) (*driven.FetchResponse, error) {
	order := c.attemptOrder()
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no strategies configured", domain.ErrAllProxiesFailed)
	}

	var causes []error
	for i, idx := range order {
		c.mu.Lock()
		name := c.strategies[idx].Name
		proxied := c.strategies[idx].Rewrite(rawURL)
		failures := c.failures[idx]
		c.mu.Unlock()

		lastUntried := i == len(order)-1
		if failures >= FailureLimit && !lastUntried {
			logger.Debug("proxy %s skipped (%d recent failures)", name, failures)
			causes = append(causes, fmt.Errorf("%s: skipped after %d failures", name, failures))
			continue
		}

		resp, err := c.attempt(ctx, method, proxied, header, body)
		if err != nil {
			logger.Debug("proxy %s failed: %v", name, err)
			c.recordFailure(idx)
			causes = append(causes, fmt.Errorf("%s: %w", name, err))
			continue
		}

		c.recordSuccess(idx)
		logger.Debug("proxy %s ok (%d bytes)", name, len(resp.Body))
		return resp, nil
	}

	return nil, fmt.Errorf("%w for %s: %w", domain.ErrAllProxiesFailed, rawURL, errors.Join(causes...))
}

// attemptOrder returns strategy indices starting from the
// last-known-good index, clearing stale failure counters first.
func (c *Client) attemptOrder() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.now().Sub(c.lastReset) >= ResetInterval {
		for i := range c.failures {
			c.failures[i] = 0
		}
		c.lastReset = c.now()
	}

	order := make([]int, len(c.strategies))
	for i := range order {
		order[i] = (c.lastGood + i) % len(c.strategies)
	}
	return order
}

func (c *Client) attempt(ctx context.Context, method, proxied string, header http.Header, body []byte) (*driven.FetchResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, proxied, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "oppscan/1.0")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodySize))
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &driven.FetchResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}

func (c *Client) recordFailure(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[idx]++
}

func (c *Client) recordSuccess(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastGood = idx
	c.failures[idx] = 0
}

// JSON fetches rawURL and decodes the body into v.
func (c *Client) JSON(ctx context.Context, rawURL string, v any) error {
	header := http.Header{}
	header.Set("Accept", "application/json")
	resp, err := c.Fetch(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// Text fetches rawURL and returns the body as a string.
func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := c.Fetch(ctx, rawURL, header)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// Post sends a POST request. A direct request is attempted first,
// since some providers accept those; any direct failure is treated as
// an ordinary failure and the proxy chain takes over.
func (c *Client) Post(ctx context.Context, rawURL string, header http.Header, body []byte) (*driven.FetchResponse, error) {
	resp, err := c.attempt(ctx, http.MethodPost, rawURL, header, body)
	if err == nil {
		return resp, nil
	}
	logger.Debug("direct POST to %s failed, falling back to proxies: %v", rawURL, err)
	return c.fetch(ctx, http.MethodPost, rawURL, header, body)
}

// LastGoodStrategy returns the name of the current last-known-good
// strategy. Diagnostic only.
func (c *Client) LastGoodStrategy() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.strategies) == 0 {
		return ""
	}
	return c.strategies[c.lastGood].Name
}
