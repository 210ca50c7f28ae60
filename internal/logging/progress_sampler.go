package logging

import "math"

// ProgressSampler limits progress logging to one line per step of percent.
type ProgressSampler struct {
	step   float64
	logged float64
	done   bool
}

// NewProgressSampler returns a sampler that logs every step percent (10 when
// step is not in (0, 100]).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 || step > 100 {
		step = 10
	}
	return &ProgressSampler{step: step, logged: -1}
}

// ShouldLog reports whether percent starts a new step. The first known
// percentage and completion are each logged once; negative (unknown) values
// and values inside an already logged step are not.
func (s *ProgressSampler) ShouldLog(percent float64) bool {
	if s == nil {
		return true
	}
	if percent < 0 || s.done {
		return false
	}
	if percent >= 100 {
		s.done = true
		return true
	}
	floor := math.Floor(percent/s.step) * s.step
	if floor <= s.logged {
		return false
	}
	s.logged = floor
	return true
}
