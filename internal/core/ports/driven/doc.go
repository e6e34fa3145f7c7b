// Package driven defines the interfaces the core depends on:
// evidence providers, the resilient fetch client, configuration,
// and persistence for quota counters and the run log.
//
// Adapters under internal/adapters and internal/providers implement
// these interfaces; the core services consume them.
package driven
