// Package filtergraph renders a merged exclusion set into the ffmpeg select
// filters that drop excluded frames and samples and re-time what remains.
package filtergraph

import (
	"strconv"
	"strings"

	"sponsorcut/internal/segments"
)

// Filter holds the rendered video and audio filter chains for one exclusion set.
type Filter struct {
	// Predicate is true for timestamps outside every excluded interval.
	Predicate string
	// Video selects frames and rewrites presentation timestamps so the output
	// timeline stays contiguous.
	Video string
	// Audio selects decoded audio frames and rewrites timestamps from the
	// sample count. aselect keeps or drops whole frames, so audio cuts land on
	// frame boundaries (about 20 ms for AAC and Opus) rather than on exact
	// samples.
	Audio string
}

// Build renders set into keep-predicate filters. It reports false for an empty
// set, meaning no filter should be applied at all.
func Build(set segments.MergedSet) (Filter, bool) {
	if set.Empty() {
		return Filter{}, false
	}
	predicate := Predicate(set)
	return Filter{
		Predicate: predicate,
		Video:     "select='" + predicate + "',setpts=N/FRAME_RATE/TB",
		Audio:     "aselect='" + predicate + "',asetpts=N/SR/TB",
	}, true
}

// Predicate returns the conjunction of not(between(t,start,end)) terms for
// every interval in set. ffmpeg expressions have no boolean AND, so terms are
// multiplied.
func Predicate(set segments.MergedSet) string {
	intervals := set.Intervals()
	terms := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		terms = append(terms, "not(between(t,"+formatSeconds(iv.Start)+","+formatSeconds(iv.End)+"))")
	}
	return strings.Join(terms, "*")
}

// formatSeconds renders seconds with millisecond precision and no trailing zeros.
func formatSeconds(value float64) string {
	s := strconv.FormatFloat(value, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
