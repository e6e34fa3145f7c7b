// Package driving defines the interfaces the core exposes to its
// callers: evidence aggregation, opportunity scoring, and the
// provider diagnostics surface.
package driving
