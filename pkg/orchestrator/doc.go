// Package orchestrator wires the schema loader, detail aggregator, validation
// engine, record store and renderers into a single entry point. A submission
// flows sanitize → recompute → validate → upsert.
package orchestrator
