// Package preflight provides readiness checks for the directories, devices
// and services sponsorcut depends on.
//
// These checks run in two contexts:
//   - fetch and batch call RunAll before the first item. A failed check
//     aborts the run before any download starts.
//   - "sponsorcut status" calls RunAll and CheckSystemDeps and renders every
//     result.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
