// Package pipeline runs one item end to end: resolve the locator, fetch and
// merge sponsor intervals, download the streams, probe the duration, encode
// with exclusions, validate the output, and move it into the library.
//
// The Orchestrator owns the Job for the lifetime of a run. Temp files are
// removed in a deferred cleanup stage on every exit path, including
// cancellation. Sponsor lookup failures are logged and the item continues
// with nothing excluded; every other failure ends the item.
package pipeline
