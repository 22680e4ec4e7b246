/*
Package observability provides lifecycle hooks for monitoring scenario runs.

Metrics exposes prometheus counters and histograms fed by the runner's lifecycle
hooks. LogHooks writes the same events as structured log records.
*/
package observability
