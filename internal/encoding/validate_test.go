package encoding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sponsorcut/internal/media/ffprobe"
	"sponsorcut/internal/services"
)

func stubInspect(t *testing.T, result ffprobe.Result, err error) {
	t.Helper()
	original := inspectOutput
	inspectOutput = func(context.Context, string, string) (ffprobe.Result, error) { return result, err }
	t.Cleanup(func() { inspectOutput = original })
}

func writeOutput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	return path
}

func TestValidateOutputAcceptsVideo(t *testing.T) {
	stubInspect(t, ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", CodecName: "HEVC", Width: 1920, Height: 1080},
			{CodecType: "audio", CodecName: "aac"},
		},
		Format: ffprobe.Format{Duration: "570.0"},
	}, nil)
	job := Job{OutputPath: writeOutput(t), Profile: ProfileX265}
	report, err := ValidateOutput(context.Background(), "", job, 575)
	if err != nil {
		t.Fatalf("ValidateOutput: %v", err)
	}
	if report.VideoCodec != "hevc" || report.Width != 1920 || report.AudioCodec != "aac" {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.DurationDrift != -5 {
		t.Fatalf("unexpected drift %v", report.DurationDrift)
	}
	if report.DriftExceeded(575) {
		t.Fatal("5s drift on 575s is within tolerance")
	}
	if !(OutputReport{DurationDrift: 30}).DriftExceeded(575) {
		t.Fatal("expected 30s drift on 575s to exceed tolerance")
	}
	if report.DriftExceeded(0) {
		t.Fatal("no expectation means no drift")
	}
}

func TestValidateOutputRejectsMissingStreams(t *testing.T) {
	cases := []struct {
		name    string
		job     Job
		streams []ffprobe.Stream
	}{
		{"video without video stream", Job{Profile: ProfileNVENC}, []ffprobe.Stream{{CodecType: "audio"}}},
		{"video without audio", Job{Profile: ProfileX265}, []ffprobe.Stream{{CodecType: "video"}}},
		{"audio-only with video", Job{Profile: ProfileAudioOnly, AudioFormat: AudioMP3}, []ffprobe.Stream{{CodecType: "video"}, {CodecType: "audio"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stubInspect(t, ffprobe.Result{Streams: tc.streams}, nil)
			tc.job.OutputPath = writeOutput(t)
			if _, err := ValidateOutput(context.Background(), "", tc.job, 0); !errors.Is(err, services.ErrEncode) {
				t.Fatalf("expected encode failure, got %v", err)
			}
		})
	}
}

func TestValidateOutputRequiresNonEmptyFile(t *testing.T) {
	stubInspect(t, ffprobe.Result{}, errors.New("should not be called"))
	path := filepath.Join(t.TempDir(), "empty.mp4")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ValidateOutput(context.Background(), "", Job{OutputPath: path, Profile: ProfileX265}, 0); !errors.Is(err, services.ErrEncode) {
		t.Fatalf("expected encode failure, got %v", err)
	}
	if _, err := ValidateOutput(context.Background(), "", Job{OutputPath: filepath.Join(t.TempDir(), "missing"), Profile: ProfileX265}, 0); err == nil {
		t.Fatal("expected error for missing output")
	}
}
