package segments

import (
	"slices"
	"sort"
)

// MergedInterval is one exclusion span together with the categories of the
// raw segments that were coalesced into it, in first-seen order.
type MergedInterval struct {
	TimeInterval
	Categories []string
}

// MergedSet is an ordered, non-overlapping sequence of exclusion intervals.
// Adjacent intervals are always more than GapTolerance apart. The zero value
// is the empty set, meaning the whole media is kept.
type MergedSet struct {
	intervals []MergedInterval
}

// Merge sorts segments by start and coalesces every interval that overlaps or
// sits within GapTolerance of the current one. The input is trusted to be
// valid (see Validate) and is not modified.
func Merge(segs []SponsorSegment) MergedSet {
	if len(segs) == 0 {
		return MergedSet{}
	}
	sorted := slices.Clone(segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make([]MergedInterval, 0, len(sorted))
	current := openInterval(sorted[0])
	for _, next := range sorted[1:] {
		if next.Start <= current.End+GapTolerance {
			current.End = max(current.End, next.End)
			current.Categories = appendCategory(current.Categories, next.Category)
			continue
		}
		merged = append(merged, current)
		current = openInterval(next)
	}
	merged = append(merged, current)
	return MergedSet{intervals: merged}
}

func openInterval(seg SponsorSegment) MergedInterval {
	return MergedInterval{
		TimeInterval: seg.TimeInterval,
		Categories:   appendCategory(nil, seg.Category),
	}
}

func appendCategory(categories []string, category string) []string {
	if category == "" || slices.Contains(categories, category) {
		return categories
	}
	return append(categories, category)
}

// Len returns the number of merged intervals.
func (s MergedSet) Len() int {
	return len(s.intervals)
}

// Empty reports whether nothing is excluded.
func (s MergedSet) Empty() bool {
	return len(s.intervals) == 0
}

// Intervals returns a copy of the merged intervals in ascending order.
func (s MergedSet) Intervals() []MergedInterval {
	out := make([]MergedInterval, len(s.intervals))
	for i, iv := range s.intervals {
		out[i] = MergedInterval{TimeInterval: iv.TimeInterval, Categories: slices.Clone(iv.Categories)}
	}
	return out
}

// Segments expands the set back into raw segments, one per contributing
// category. Merging the result yields the same set.
func (s MergedSet) Segments() []SponsorSegment {
	out := make([]SponsorSegment, 0, len(s.intervals))
	for _, iv := range s.intervals {
		if len(iv.Categories) == 0 {
			out = append(out, SponsorSegment{TimeInterval: iv.TimeInterval})
			continue
		}
		for _, category := range iv.Categories {
			out = append(out, SponsorSegment{TimeInterval: iv.TimeInterval, Category: category})
		}
	}
	return out
}

// TotalDuration returns the summed length of all excluded intervals.
func (s MergedSet) TotalDuration() float64 {
	var total float64
	for _, iv := range s.intervals {
		total += iv.Duration()
	}
	return total
}

// ClampTo trims the set to media of the given duration: intervals starting at
// or after the end are dropped and an interval running past it is cut short.
// A non-positive duration returns the set unchanged.
func (s MergedSet) ClampTo(duration float64) MergedSet {
	if duration <= 0 || len(s.intervals) == 0 {
		return s
	}
	out := make([]MergedInterval, 0, len(s.intervals))
	for _, iv := range s.intervals {
		if iv.Start >= duration {
			break
		}
		clamped := MergedInterval{TimeInterval: iv.TimeInterval, Categories: slices.Clone(iv.Categories)}
		if clamped.End > duration {
			clamped.End = duration
		}
		if clamped.End > clamped.Start {
			out = append(out, clamped)
		}
	}
	return MergedSet{intervals: out}
}
