package segments

import (
	"reflect"
	"testing"
)

func seg(start, end float64, category string) SponsorSegment {
	return SponsorSegment{TimeInterval: TimeInterval{Start: start, End: end}, Category: category}
}

func spans(set MergedSet) []TimeInterval {
	out := make([]TimeInterval, 0, set.Len())
	for _, iv := range set.Intervals() {
		out = append(out, iv.TimeInterval)
	}
	return out
}

func TestMergeExamples(t *testing.T) {
	tests := []struct {
		name  string
		input []SponsorSegment
		want  []TimeInterval
	}{
		{
			name:  "overlapping",
			input: []SponsorSegment{seg(0, 5, "sponsor"), seg(4, 10, "sponsor")},
			want:  []TimeInterval{{0, 10}},
		},
		{
			name:  "gap within tolerance",
			input: []SponsorSegment{seg(0, 5, "sponsor"), seg(5.01, 10, "sponsor")},
			want:  []TimeInterval{{0, 10}},
		},
		{
			name:  "gap beyond tolerance",
			input: []SponsorSegment{seg(0, 5, "sponsor"), seg(6, 10, "sponsor")},
			want:  []TimeInterval{{0, 5}, {6, 10}},
		},
		{
			name:  "unsorted with containment",
			input: []SponsorSegment{seg(30, 40, "outro"), seg(2, 20, "intro"), seg(5, 8, "sponsor")},
			want:  []TimeInterval{{2, 20}, {30, 40}},
		},
		{
			name:  "transitive chain",
			input: []SponsorSegment{seg(0, 1, ""), seg(1.01, 2, ""), seg(2.015, 3, "")},
			want:  []TimeInterval{{0, 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spans(Merge(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeEmpty(t *testing.T) {
	set := Merge(nil)
	if !set.Empty() || set.Len() != 0 {
		t.Fatalf("expected empty set, got %v", set.Intervals())
	}
	if set.TotalDuration() != 0 {
		t.Fatalf("expected zero duration, got %v", set.TotalDuration())
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	first := Merge([]SponsorSegment{
		seg(50, 60, "selfpromo"),
		seg(0, 5, "sponsor"),
		seg(4, 10, "intro"),
		seg(58, 70, "sponsor"),
	})
	second := Merge(first.Segments())
	if !reflect.DeepEqual(first.Intervals(), second.Intervals()) {
		t.Fatalf("merge not idempotent: %v vs %v", first.Intervals(), second.Intervals())
	}
}

func TestMergeKeepsCategoryProvenance(t *testing.T) {
	set := Merge([]SponsorSegment{
		seg(0, 5, "sponsor"),
		seg(4, 10, "selfpromo"),
		seg(9, 12, "sponsor"),
		seg(20, 25, "outro"),
	})
	got := set.Intervals()
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %v", got)
	}
	if !reflect.DeepEqual(got[0].Categories, []string{"sponsor", "selfpromo"}) {
		t.Fatalf("unexpected categories for first interval: %v", got[0].Categories)
	}
	if !reflect.DeepEqual(got[1].Categories, []string{"outro"}) {
		t.Fatalf("unexpected categories for second interval: %v", got[1].Categories)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	input := []SponsorSegment{seg(10, 20, "a"), seg(0, 5, "b")}
	Merge(input)
	if input[0].Start != 10 || input[1].Start != 0 {
		t.Fatalf("input was reordered: %v", input)
	}
}

func TestIntervalsReturnsCopy(t *testing.T) {
	set := Merge([]SponsorSegment{seg(0, 5, "sponsor")})
	ivs := set.Intervals()
	ivs[0].End = 100
	ivs[0].Categories[0] = "changed"
	again := set.Intervals()
	if again[0].End != 5 || again[0].Categories[0] != "sponsor" {
		t.Fatalf("set was mutated through Intervals: %v", again)
	}
}

func TestTotalDurationAndClamp(t *testing.T) {
	set := Merge([]SponsorSegment{seg(0, 5, ""), seg(10, 30, ""), seg(40, 50, "")})
	if got := set.TotalDuration(); got != 35 {
		t.Fatalf("TotalDuration = %v, want 35", got)
	}
	clamped := set.ClampTo(20)
	if got := spans(clamped); !reflect.DeepEqual(got, []TimeInterval{{0, 5}, {10, 20}}) {
		t.Fatalf("ClampTo(20) = %v", got)
	}
	if got := set.ClampTo(0); got.Len() != 3 {
		t.Fatalf("ClampTo(0) should keep the set, got %v", got.Intervals())
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(seg(1, 2, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []SponsorSegment{seg(2, 2, ""), seg(3, 1, ""), seg(-1, 2, "")} {
		if err := Validate(bad); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}

func TestCategoryLabels(t *testing.T) {
	cases := map[string]string{
		"sponsor":        "Sponsor",
		"selfpromo":      "Self Promotion",
		"music_offtopic": "Music Offtopic",
		"":               "Unknown",
	}
	for in, want := range cases {
		if got := CategoryLabel(in); got != want {
			t.Fatalf("CategoryLabel(%q) = %q, want %q", in, got, want)
		}
	}
	if got := CategoryLabels([]string{"sponsor", "intro"}); got != "Sponsor, Intro" {
		t.Fatalf("unexpected joined labels %q", got)
	}
	if !IsKnownCategory("filler") || IsKnownCategory("chapter") {
		t.Fatal("unexpected known-category result")
	}
}
