package encoding

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"sponsorcut/internal/media/ffprobe"
	"sponsorcut/internal/services"
)

const (
	minDurationTolerance      = 2.0
	relativeDurationTolerance = 0.02
)

var inspectOutput = ffprobe.Inspect

// OutputReport summarizes a validated output file.
type OutputReport struct {
	SizeBytes  int64
	BitRate    int64
	Duration   float64
	VideoCodec string
	AudioCodec string
	Width      int
	Height     int

	// DurationDrift is the probed duration minus the expected one.
	DurationDrift float64
}

// DriftExceeded reports whether the duration differs from the expected one by
// more than the larger of two seconds and two percent.
func (r OutputReport) DriftExceeded(expected float64) bool {
	if expected <= 0 {
		return false
	}
	tolerance := math.Max(minDurationTolerance, expected*relativeDurationTolerance)
	return math.Abs(r.DurationDrift) > tolerance
}

// ValidateOutput probes the encoded file and checks it has the streams job
// promised: one video and one audio stream for video profiles, audio only for
// audio-only jobs. expected is the expected duration in seconds; drift is
// reported, not enforced.
func ValidateOutput(ctx context.Context, ffprobeBinary string, job Job, expected float64) (OutputReport, error) {
	fail := func(message string, err error) error {
		return services.Wrap(services.ErrEncode, "encoding", "validate output", message, err)
	}

	info, err := os.Stat(job.OutputPath)
	if err != nil {
		return OutputReport{}, fail("output missing", err)
	}
	if info.Size() == 0 {
		return OutputReport{}, fail("output is empty", nil)
	}

	result, err := inspectOutput(ctx, ffprobeBinary, job.OutputPath)
	if err != nil {
		return OutputReport{}, fail("probe output", err)
	}

	video, audio := result.VideoStreamCount(), result.AudioStreamCount()
	switch {
	case audio < 1:
		return OutputReport{}, fail("output has no audio stream", nil)
	case job.AudioOnly() && video > 0:
		return OutputReport{}, fail(fmt.Sprintf("audio-only output has %d video stream(s)", video), nil)
	case !job.AudioOnly() && video < 1:
		return OutputReport{}, fail("output has no video stream", nil)
	}

	report := OutputReport{SizeBytes: info.Size(), BitRate: result.BitRate()}
	if d := result.DurationSeconds(); !math.IsNaN(d) {
		report.Duration = d
	}
	if expected > 0 && report.Duration > 0 {
		report.DurationDrift = report.Duration - expected
	}
	if stream, ok := result.FirstStream("video"); ok {
		report.VideoCodec = strings.ToLower(stream.CodecName)
		report.Width = stream.Width
		report.Height = stream.Height
	}
	if stream, ok := result.FirstStream("audio"); ok {
		report.AudioCodec = strings.ToLower(stream.CodecName)
	}
	return report, nil
}
