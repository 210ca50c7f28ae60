package ffprobe

import (
	"context"
	"math"
	"strings"
	"testing"

	"sponsorcut/internal/testsupport"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestParseDuration(t *testing.T) {
	got, err := parseDuration("615.480000\n")
	if err != nil {
		t.Fatalf("parseDuration: %v", err)
	}
	if got != 615.48 {
		t.Fatalf("unexpected duration %v", got)
	}
	for _, bad := range []string{"", "N/A\n", "abc", "0", "-3.5"} {
		if _, err := parseDuration(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDurationRunsBinary(t *testing.T) {
	script := testsupport.WriteScript(t, t.TempDir(), "ffprobe", "echo 42.250000\n")
	got, err := Duration(context.Background(), script, "/tmp/input.mp4")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != 42.25 {
		t.Fatalf("unexpected duration %v", got)
	}
}

func TestDurationReportsFailure(t *testing.T) {
	script := testsupport.WriteScript(t, t.TempDir(), "ffprobe", "echo 'input.mp4: Invalid data found when processing input' >&2\nexit 1\n")
	_, err := Duration(context.Background(), script, "/tmp/input.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestFirstStream(t *testing.T) {
	result := Result{Streams: []Stream{{Index: 0, CodecType: "audio"}, {Index: 1, CodecType: "video", CodecName: "hevc"}}}
	stream, ok := result.FirstStream("video")
	if !ok || stream.CodecName != "hevc" {
		t.Fatalf("unexpected stream %+v ok=%v", stream, ok)
	}
	if _, ok := result.FirstStream("subtitle"); ok {
		t.Fatal("expected no subtitle stream")
	}
}
