// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, stage names, and correlation
//     identifiers for logging.
//   - The failure taxonomy (unreachable source, extraction, sponsor fetch,
//     download, probe, malformed progress, encode) plus the Wrap helper that
//     tags errors with a marker while keeping the underlying cause.
//
// Use these helpers when wiring new stage logic so error classification and
// observability stay uniform across the pipeline.
package services
