package encoding

import (
	"fmt"
	"slices"
	"strings"
)

// Profile names a transcoding target.
type Profile string

const (
	ProfileNVENC     Profile = "nvenc"
	ProfileVAAPI     Profile = "vaapi"
	ProfileX265      Profile = "x265"
	ProfileRaw       Profile = "raw"
	ProfileAudioOnly Profile = "audio"
)

var profileAliases = map[string]Profile{
	"nvenc":    ProfileNVENC,
	"nvidia":   ProfileNVENC,
	"gpu":      ProfileNVENC,
	"vaapi":    ProfileVAAPI,
	"intel":    ProfileVAAPI,
	"amd":      ProfileVAAPI,
	"x265":     ProfileX265,
	"libx265":  ProfileX265,
	"cpu":      ProfileX265,
	"software": ProfileX265,
	"raw":      ProfileRaw,
	"rawfile":  ProfileRaw,
	"lossless": ProfileRaw,
	"audio":    ProfileAudioOnly,
}

// ParseProfile resolves a profile name or alias, case-insensitively.
func ParseProfile(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if profile, ok := profileAliases[key]; ok {
		return profile, nil
	}
	return "", fmt.Errorf("unknown profile %q (want one of %s)", name, strings.Join(profileNames(VideoProfiles()), ", "))
}

// VideoProfiles lists the profiles that produce a video file, in display order.
func VideoProfiles() []Profile {
	return []Profile{ProfileNVENC, ProfileVAAPI, ProfileX265, ProfileRaw}
}

// Aliases returns the accepted alternative names for p, sorted.
func (p Profile) Aliases() []string {
	var out []string
	for alias, target := range profileAliases {
		if target == p && alias != string(p) {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// Label is the human-readable profile name.
func (p Profile) Label() string {
	if spec, ok := videoSpecs[p]; ok {
		return spec.label
	}
	if p == ProfileAudioOnly {
		return "Audio only"
	}
	return string(p)
}

// Hardware reports whether the profile needs a GPU encoder.
func (p Profile) Hardware() bool {
	return p == ProfileNVENC || p == ProfileVAAPI
}

// Extension is the output file extension for video profiles. Audio-only
// output takes its extension from the AudioFormat.
func (p Profile) Extension() string {
	if spec, ok := videoSpecs[p]; ok {
		return spec.extension
	}
	return ""
}

// Encoder names the ffmpeg video encoder used by the profile.
func (p Profile) Encoder() string {
	if spec, ok := videoSpecs[p]; ok {
		return spec.videoCodec[1]
	}
	return ""
}

// AudioFormat names an audio-only output format.
type AudioFormat string

const (
	AudioAAC  AudioFormat = "aac"
	AudioMP3  AudioFormat = "mp3"
	AudioFLAC AudioFormat = "flac"
)

// AudioFormats lists the supported audio-only formats, in display order.
func AudioFormats() []AudioFormat {
	return []AudioFormat{AudioAAC, AudioMP3, AudioFLAC}
}

// ParseAudioFormat resolves an audio format name, case-insensitively. "m4a"
// is accepted for AAC.
func ParseAudioFormat(name string) (AudioFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aac", "m4a":
		return AudioAAC, nil
	case "mp3":
		return AudioMP3, nil
	case "flac":
		return AudioFLAC, nil
	default:
		return "", fmt.Errorf("unknown audio format %q (want aac, mp3 or flac)", name)
	}
}

// Extension is the output file extension.
func (f AudioFormat) Extension() string {
	if spec, ok := audioSpecs[f]; ok {
		return spec.extension
	}
	return ""
}

// Lossless reports whether the format carries no bitrate setting.
func (f AudioFormat) Lossless() bool {
	spec, ok := audioSpecs[f]
	return ok && spec.audio.bitrate == ""
}

// Encoder names the ffmpeg audio encoder used by the format.
func (f AudioFormat) Encoder() string {
	return audioSpecs[f].audio.codec
}

// Encoders lists every ffmpeg encoder used by any profile or audio format,
// without duplicates, in display order.
func Encoders() []string {
	var out []string
	add := func(name string) {
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	for _, p := range VideoProfiles() {
		add(p.Encoder())
		add(videoSpecs[p].audio.codec)
	}
	for _, f := range AudioFormats() {
		add(f.Encoder())
	}
	return out
}

type audioCodec struct {
	codec   string
	bitrate string
}

func (a audioCodec) args() []string {
	args := []string{"-c:a", a.codec}
	if a.bitrate != "" {
		args = append(args, "-b:a", a.bitrate)
	}
	return args
}

type videoSpec struct {
	label      string
	hwaccel    func(device string) []string
	upload     string
	videoCodec []string
	audio      audioCodec
	container  []string
	extension  string
}

type audioSpec struct {
	audio     audioCodec
	container []string
	extension string
}

var videoSpecs = map[Profile]videoSpec{
	ProfileNVENC: {
		label:      "NVIDIA NVENC (HEVC)",
		hwaccel:    func(string) []string { return []string{"-hwaccel", "cuda"} },
		upload:     "format=nv12,hwupload_cuda",
		videoCodec: []string{"-c:v", "hevc_nvenc", "-preset", "p5", "-rc", "vbr", "-cq", "24", "-b:v", "0"},
		audio:      audioCodec{codec: "aac", bitrate: "192k"},
		container:  []string{"-f", "mp4", "-movflags", "+faststart"},
		extension:  "mp4",
	},
	ProfileVAAPI: {
		label:      "VA-API (HEVC)",
		hwaccel:    func(device string) []string { return []string{"-vaapi_device", device} },
		upload:     "format=nv12,hwupload",
		videoCodec: []string{"-c:v", "hevc_vaapi", "-qp", "24"},
		audio:      audioCodec{codec: "aac", bitrate: "192k"},
		container:  []string{"-f", "mp4", "-movflags", "+faststart"},
		extension:  "mp4",
	},
	ProfileX265: {
		label:      "Software x265 (HEVC)",
		videoCodec: []string{"-c:v", "libx265", "-preset", "medium", "-crf", "23", "-tag:v", "hvc1"},
		audio:      audioCodec{codec: "aac", bitrate: "192k"},
		container:  []string{"-f", "mp4", "-movflags", "+faststart"},
		extension:  "mp4",
	},
	ProfileRaw: {
		label:      "Lossless (PNG/PCM)",
		videoCodec: []string{"-c:v", "png"},
		audio:      audioCodec{codec: "pcm_s16le"},
		container:  []string{"-f", "avi"},
		extension:  "avi",
	},
}

var audioSpecs = map[AudioFormat]audioSpec{
	AudioAAC: {
		audio:     audioCodec{codec: "aac", bitrate: "256k"},
		container: []string{"-f", "ipod", "-movflags", "+faststart"},
		extension: "m4a",
	},
	AudioMP3: {
		audio:     audioCodec{codec: "libmp3lame", bitrate: "320k"},
		container: []string{"-f", "mp3"},
		extension: "mp3",
	},
	AudioFLAC: {
		audio:     audioCodec{codec: "flac"},
		container: []string{"-f", "flac"},
		extension: "flac",
	},
}

func profileNames(profiles []Profile) []string {
	names := make([]string, 0, len(profiles)+1)
	for _, p := range profiles {
		names = append(names, string(p))
	}
	return append(names, string(ProfileAudioOnly))
}
