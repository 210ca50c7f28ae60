package source

import (
	"cmp"
	"slices"
)

// SelectStreams picks the best video-only and audio-only formats. When
// preferMP4 is set, mp4 formats win over higher-quality formats in other
// containers. A muxed video format is used only when no video-only format
// exists. Either result may be nil.
func SelectStreams(formats []StreamInfo, preferMP4 bool) (video, audio *StreamInfo) {
	var videoOnly, muxed, audioOnly []StreamInfo
	for _, f := range formats {
		switch {
		case f.IsVideoOnly():
			videoOnly = append(videoOnly, f)
		case f.IsVideo():
			muxed = append(muxed, f)
		case f.IsAudioOnly():
			audioOnly = append(audioOnly, f)
		}
	}
	if len(videoOnly) == 0 {
		videoOnly = muxed
	}
	return best(videoOnly, preferMP4, compareVideo), best(audioOnly, preferMP4, compareAudio)
}

func best(candidates []StreamInfo, preferMP4 bool, compare func(a, b StreamInfo) int) *StreamInfo {
	if len(candidates) == 0 {
		return nil
	}
	if preferMP4 {
		var mp4 []StreamInfo
		for _, c := range candidates {
			if c.Container() == "mp4" {
				mp4 = append(mp4, c)
			}
		}
		if len(mp4) > 0 {
			candidates = mp4
		}
	}
	top := slices.MaxFunc(candidates, compare)
	return &top
}

func compareVideo(a, b StreamInfo) int {
	return cmp.Or(
		cmp.Compare(a.Height, b.Height),
		cmp.Compare(a.Bitrate, b.Bitrate),
		cmp.Compare(a.ContentLength, b.ContentLength),
	)
}

func compareAudio(a, b StreamInfo) int {
	return cmp.Or(
		cmp.Compare(a.Bitrate, b.Bitrate),
		cmp.Compare(a.AudioChannels, b.AudioChannels),
	)
}
