// Package domain contains the core business types of oppscan:
// evidence items collected from external sources, the aggregated
// evidence bundle, opportunity candidates, and scoring results.
//
// Types in this package are pure data with small helper methods.
// They never perform I/O and have no dependencies outside the
// standard library.
package domain
