package source

import "testing"

func TestSelectStreamsPrefersMP4(t *testing.T) {
	formats := []StreamInfo{
		{Itag: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Height: 360, AudioChannels: 2, Bitrate: 500_000},
		{Itag: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Height: 1080, Bitrate: 4_000_000},
		{Itag: 248, MimeType: `video/webm; codecs="vp9"`, Height: 1080, Bitrate: 5_000_000},
		{Itag: 313, MimeType: `video/webm; codecs="vp9"`, Height: 2160, Bitrate: 18_000_000},
		{Itag: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130_000, AudioChannels: 2},
		{Itag: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160_000, AudioChannels: 2},
	}

	video, audio := SelectStreams(formats, true)
	if video == nil || video.Itag != 137 {
		t.Fatalf("expected itag 137, got %+v", video)
	}
	if audio == nil || audio.Itag != 140 {
		t.Fatalf("expected itag 140, got %+v", audio)
	}
	if video.Extension() != "mp4" || audio.Extension() != "m4a" {
		t.Fatalf("unexpected extensions %q %q", video.Extension(), audio.Extension())
	}

	video, audio = SelectStreams(formats, false)
	if video.Itag != 313 || audio.Itag != 251 {
		t.Fatalf("expected highest quality regardless of container, got %d/%d", video.Itag, audio.Itag)
	}
	if video.Extension() != "webm" {
		t.Fatalf("unexpected extension %q", video.Extension())
	}
}

func TestSelectStreamsFallsBack(t *testing.T) {
	formats := []StreamInfo{
		{Itag: 18, MimeType: "video/mp4", Height: 360, AudioChannels: 2},
		{Itag: 251, MimeType: "audio/webm", Bitrate: 160_000},
	}
	video, audio := SelectStreams(formats, true)
	if video == nil || video.Itag != 18 {
		t.Fatalf("expected muxed fallback, got %+v", video)
	}
	if audio == nil || audio.Itag != 251 {
		t.Fatalf("expected webm audio when no mp4 exists, got %+v", audio)
	}

	video, audio = SelectStreams(nil, true)
	if video != nil || audio != nil {
		t.Fatalf("expected no selection, got %+v %+v", video, audio)
	}
}

func TestStreamInfoContainer(t *testing.T) {
	cases := map[string]string{
		`audio/mp4; codecs="mp4a.40.2"`: "mp4",
		"VIDEO/WEBM":                    "webm",
		"":                              "",
	}
	for mime, want := range cases {
		if got := (StreamInfo{MimeType: mime}).Container(); got != want {
			t.Fatalf("Container(%q) = %q, want %q", mime, got, want)
		}
	}
	if got := (StreamInfo{}).Extension(); got != "bin" {
		t.Fatalf("expected bin for unknown container, got %q", got)
	}
}
