package source

import (
	"context"
	"io"
	"strings"
	"time"
)

// StreamKind selects one of the two streams a job downloads.
type StreamKind int

const (
	StreamVideo StreamKind = iota
	StreamAudio
)

func (k StreamKind) String() string {
	if k == StreamAudio {
		return "audio"
	}
	return "video"
}

// StreamInfo describes one downloadable format.
type StreamInfo struct {
	Itag          int
	MimeType      string
	Bitrate       int
	ContentLength int64
	QualityLabel  string
	Width         int
	Height        int
	AudioChannels int
}

// Container returns the container subtype of the MIME type, e.g. "mp4".
func (s StreamInfo) Container() string {
	mime := strings.ToLower(strings.TrimSpace(s.MimeType))
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	if idx := strings.IndexByte(mime, '/'); idx >= 0 {
		return strings.TrimSpace(mime[idx+1:])
	}
	return ""
}

// IsVideo reports whether the format carries a video track.
func (s StreamInfo) IsVideo() bool {
	return strings.HasPrefix(strings.ToLower(s.MimeType), "video/")
}

// IsAudioOnly reports whether the format carries only audio.
func (s StreamInfo) IsAudioOnly() bool {
	return strings.HasPrefix(strings.ToLower(s.MimeType), "audio/")
}

// IsVideoOnly reports whether the format carries video without audio.
func (s StreamInfo) IsVideoOnly() bool {
	return s.IsVideo() && s.AudioChannels == 0
}

// Extension returns the file extension for the stream's container.
func (s StreamInfo) Extension() string {
	switch container := s.Container(); {
	case container == "mp4" && s.IsAudioOnly():
		return "m4a"
	case container == "mp4", container == "webm":
		return container
	case container == "":
		return "bin"
	default:
		return container
	}
}

// Metadata is the resolved description of a remote item.
type Metadata struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration
	Video    *StreamInfo
	Audio    *StreamInfo
}

// Stream returns the selected stream of the given kind, or nil.
func (m Metadata) Stream(kind StreamKind) *StreamInfo {
	if kind == StreamAudio {
		return m.Audio
	}
	return m.Video
}

// Client resolves locators and opens selected streams. Resolve failures are
// marked services.ErrUnreachableSource or services.ErrExtraction.
type Client interface {
	Resolve(ctx context.Context, locator string) (Metadata, error)
	Open(ctx context.Context, meta Metadata, kind StreamKind) (io.ReadCloser, int64, error)
}
