// Package services implements the driving port interfaces: the
// aggregation orchestrator and the scoring engine. Services contain
// the core business logic and orchestrate calls to driven ports
// (adapters).
package services
