package pipeline

import (
	"time"

	"sponsorcut/internal/encoding"
	"sponsorcut/internal/segments"
	"sponsorcut/internal/source"
)

// Request is what the caller asks for.
type Request struct {
	Locator     string
	Profile     encoding.Profile
	AudioFormat encoding.AudioFormat
	// LibraryDir overrides the configured library directory when set.
	LibraryDir string
	// SkipSegments disables the sponsor lookup for this request.
	SkipSegments bool
	// Categories overrides the configured categories when set.
	Categories []string
}

// AudioOnly reports whether the request drops the video stream.
func (r Request) AudioOnly() bool {
	return r.Profile == encoding.ProfileAudioOnly
}

// Job is the mutable state of one run. Only the orchestrator writes it.
type Job struct {
	Locator     string
	VideoID     string
	Title       string
	Profile     encoding.Profile
	AudioFormat encoding.AudioFormat
	Stage       Stage

	// Duration is the probed source duration in seconds.
	Duration float64
	// Expected is the duration left after exclusions.
	Expected float64

	VideoPath   string
	AudioPath   string
	EncodedPath string
	OutputPath  string

	Raw      []segments.SponsorSegment
	Segments segments.MergedSet
	Video    *source.StreamInfo
	Audio    *source.StreamInfo
}

// Outcome summarizes a finished run.
type Outcome struct {
	Locator     string
	VideoID     string
	Title       string
	OutputPath  string
	Stage       Stage
	FailedStage Stage
	Segments    segments.MergedSet
	Duration    float64
	Expected    float64
	Report      encoding.OutputReport
	Elapsed     time.Duration

	// SegmentsErr is the non-fatal sponsor lookup failure, if any.
	SegmentsErr error
	Err         error
}

// Succeeded reports whether the run produced an output.
func (o Outcome) Succeeded() bool {
	return o.Stage == StageSucceeded && o.Err == nil
}

// Removed returns the seconds cut from the output.
func (o Outcome) Removed() float64 {
	if o.Duration <= 0 {
		return 0
	}
	return o.Duration - o.Expected
}
