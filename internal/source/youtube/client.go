package youtube

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"

	ytdl "github.com/kkdai/youtube/v2"

	"sponsorcut/internal/services"
	"sponsorcut/internal/source"
)

// Client resolves YouTube locators and opens their streams.
type Client struct {
	client    ytdl.Client
	preferMP4 bool

	mu     sync.Mutex
	videos map[string]*ytdl.Video
}

// NewClient constructs a client. preferMP4 favors mp4/m4a streams over
// higher-bitrate webm streams.
func NewClient(preferMP4 bool) *Client {
	return &Client{
		client:    ytdl.Client{},
		preferMP4: preferMP4,
		videos:    make(map[string]*ytdl.Video),
	}
}

// VideoID extracts the video id from a URL or bare id without network access.
func VideoID(locator string) (string, error) {
	id, err := ytdl.ExtractVideoID(strings.TrimSpace(locator))
	if err != nil {
		return "", services.Wrap(services.ErrUnreachableSource, "resolving", "parse locator", locator, err)
	}
	return id, nil
}

// Resolve fetches metadata for locator and selects the streams to download.
func (c *Client) Resolve(ctx context.Context, locator string) (source.Metadata, error) {
	id, err := VideoID(locator)
	if err != nil {
		return source.Metadata{}, err
	}
	video, err := c.client.GetVideoContext(ctx, id)
	if err != nil {
		return source.Metadata{}, classify(id, err)
	}

	formats := make([]source.StreamInfo, 0, len(video.Formats))
	for _, f := range video.Formats {
		formats = append(formats, streamInfo(f))
	}
	videoStream, audioStream := source.SelectStreams(formats, c.preferMP4)
	if audioStream == nil {
		return source.Metadata{}, services.Wrap(services.ErrExtraction, "resolving", "select streams", "no audio-only stream for "+id, nil)
	}

	c.mu.Lock()
	c.videos[video.ID] = video
	c.mu.Unlock()

	return source.Metadata{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
		Video:    videoStream,
		Audio:    audioStream,
	}, nil
}

// Open starts streaming the selected format of the given kind.
func (c *Client) Open(ctx context.Context, meta source.Metadata, kind source.StreamKind) (io.ReadCloser, int64, error) {
	selected := meta.Stream(kind)
	if selected == nil {
		return nil, 0, errors.New("no " + kind.String() + " stream selected")
	}
	video, err := c.video(ctx, meta.ID)
	if err != nil {
		return nil, 0, err
	}
	var format *ytdl.Format
	for i := range video.Formats {
		if video.Formats[i].ItagNo == selected.Itag {
			format = &video.Formats[i]
			break
		}
	}
	if format == nil {
		return nil, 0, errors.New("selected format is no longer offered")
	}
	return c.client.GetStreamContext(ctx, video, format)
}

func (c *Client) video(ctx context.Context, id string) (*ytdl.Video, error) {
	c.mu.Lock()
	video, ok := c.videos[id]
	c.mu.Unlock()
	if ok {
		return video, nil
	}
	video, err := c.client.GetVideoContext(ctx, id)
	if err != nil {
		return nil, classify(id, err)
	}
	c.mu.Lock()
	c.videos[id] = video
	c.mu.Unlock()
	return video, nil
}

// Forget drops cached metadata for id.
func (c *Client) Forget(id string) {
	c.mu.Lock()
	delete(c.videos, id)
	c.mu.Unlock()
}

func streamInfo(f ytdl.Format) source.StreamInfo {
	return source.StreamInfo{
		Itag:          f.ItagNo,
		MimeType:      f.MimeType,
		Bitrate:       f.Bitrate,
		ContentLength: f.ContentLength,
		QualityLabel:  f.QualityLabel,
		Width:         f.Width,
		Height:        f.Height,
		AudioChannels: f.AudioChannels,
	}
}

// classify maps transport failures to ErrUnreachableSource and everything
// else (unavailable, private, signature failures) to ErrExtraction.
func classify(id string, err error) error {
	if isNetworkError(err) {
		return services.Wrap(services.ErrUnreachableSource, "resolving", "fetch metadata", id, err)
	}
	return services.Wrap(services.ErrExtraction, "resolving", "fetch metadata", id, err)
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
