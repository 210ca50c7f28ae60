package filtergraph

import (
	"strings"
	"testing"

	"sponsorcut/internal/segments"
)

func set(pairs ...[2]float64) segments.MergedSet {
	segs := make([]segments.SponsorSegment, 0, len(pairs))
	for _, p := range pairs {
		segs = append(segs, segments.SponsorSegment{TimeInterval: segments.TimeInterval{Start: p[0], End: p[1]}})
	}
	return segments.Merge(segs)
}

func TestBuildEmptyMeansNoFiltering(t *testing.T) {
	f, ok := Build(segments.Merge(nil))
	if ok {
		t.Fatalf("expected no filter for empty set, got %+v", f)
	}
	if f.Video != "" || f.Audio != "" || f.Predicate != "" {
		t.Fatalf("expected zero filter, got %+v", f)
	}
}

func TestBuildSingleInterval(t *testing.T) {
	f, ok := Build(set([2]float64{10, 25.5}))
	if !ok {
		t.Fatal("expected filter")
	}
	if f.Predicate != "not(between(t,10,25.5))" {
		t.Fatalf("unexpected predicate %q", f.Predicate)
	}
	if f.Video != "select='not(between(t,10,25.5))',setpts=N/FRAME_RATE/TB" {
		t.Fatalf("unexpected video filter %q", f.Video)
	}
	if f.Audio != "aselect='not(between(t,10,25.5))',asetpts=N/SR/TB" {
		t.Fatalf("unexpected audio filter %q", f.Audio)
	}
}

func TestBuildConjoinsIntervalsInOrder(t *testing.T) {
	f, ok := Build(set([2]float64{60, 90.125}, [2]float64{0, 5}))
	if !ok {
		t.Fatal("expected filter")
	}
	want := "not(between(t,0,5))*not(between(t,60,90.125))"
	if f.Predicate != want {
		t.Fatalf("predicate = %q, want %q", f.Predicate, want)
	}
	if !strings.Contains(f.Video, want) || !strings.Contains(f.Audio, want) {
		t.Fatalf("video and audio must share the predicate: %+v", f)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		0:         "0",
		5:         "5",
		5.5:       "5.5",
		12.3456:   "12.346",
		100.10000: "100.1",
	}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Fatalf("formatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}
