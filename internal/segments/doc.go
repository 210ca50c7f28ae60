// Package segments models sponsor intervals and merges them into the
// non-overlapping exclusion set consumed by the filter builder.
//
// Merge is the only place intervals are combined: it sorts by start, coalesces
// anything overlapping or separated by at most GapTolerance seconds, and keeps
// the categories of every raw segment that fed a merged interval.
package segments
