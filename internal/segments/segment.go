package segments

import (
	"errors"
	"fmt"
	"math"
)

// GapTolerance is the largest gap, in seconds, between two intervals that is
// still coalesced into a single exclusion.
const GapTolerance = 0.02

// TimeInterval is a span of source media in seconds. End is always greater
// than Start once validated.
type TimeInterval struct {
	Start float64
	End   float64
}

// Duration returns the interval length in seconds.
func (i TimeInterval) Duration() float64 {
	return i.End - i.Start
}

// SponsorSegment is a raw interval reported by the sponsor-interval provider.
// Category, UUID and ActionType are informational and never affect merging.
type SponsorSegment struct {
	TimeInterval
	Category   string
	UUID       string
	ActionType string
}

// Validate rejects intervals that cannot be excluded: NaN or infinite bounds,
// negative starts, and empty or inverted spans.
func Validate(seg SponsorSegment) error {
	start, end := seg.Start, seg.End
	switch {
	case math.IsNaN(start) || math.IsNaN(end):
		return errors.New("segment bound is NaN")
	case math.IsInf(start, 0) || math.IsInf(end, 0):
		return errors.New("segment bound is infinite")
	case start < 0:
		return fmt.Errorf("segment start %.3f is negative", start)
	case end <= start:
		return fmt.Errorf("segment end %.3f does not follow start %.3f", end, start)
	}
	return nil
}
