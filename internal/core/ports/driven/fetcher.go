package driven

import (
	"context"
	"net/http"
)

// FetchResponse is the materialised result of a proxied fetch.
// The body is read fully so proxy strategies can be retried without
// leaking half-consumed response bodies.
type FetchResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fetcher fetches URLs through an ordered chain of proxy strategies
// with short-term proxy-health memory. Implemented by the fetch
// adapter; injected into scrape providers so tests can substitute
// isolated instances instead of sharing hidden global state.
type Fetcher interface {
	// Fetch retrieves rawURL, falling back through the proxy chain.
	// Fails with an aggregate error wrapping domain.ErrAllProxiesFailed
	// when every strategy is exhausted.
	Fetch(ctx context.Context, rawURL string, header http.Header) (*FetchResponse, error)

	// JSON fetches rawURL and decodes the response body into v.
	JSON(ctx context.Context, rawURL string, v any) error

	// Text fetches rawURL and returns the response body as a string.
	Text(ctx context.Context, rawURL string) (string, error)

	// Post sends a POST request, attempting a direct request first
	// (some providers permit it) before falling back through the
	// proxy chain.
	Post(ctx context.Context, rawURL string, header http.Header, body []byte) (*FetchResponse, error)
}
