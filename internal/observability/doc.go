// Package observability provides logging, the JSONL run event log, metrics
// derived from it, and delivery of run summaries to chat channels.
package observability
