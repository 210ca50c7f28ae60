package encoding

import (
	"path/filepath"
	"strings"

	"sponsorcut/internal/filtergraph"
	"sponsorcut/internal/progress"
	"sponsorcut/internal/services"
	"sponsorcut/internal/textutil"
)

const (
	defaultFFmpegBinary = "ffmpeg"
	defaultVAAPIDevice  = "/dev/dri/renderD128"
)

// Job is everything the builder needs for one transcode.
type Job struct {
	// VideoPath is the downloaded video-only stream. Ignored for audio-only.
	VideoPath string
	// AudioPath is the downloaded audio-only stream.
	AudioPath   string
	OutputPath  string
	Profile     Profile
	AudioFormat AudioFormat
	// Filter is nil when nothing is excluded.
	Filter *filtergraph.Filter
}

// AudioOnly reports whether the job drops the video stream.
func (j Job) AudioOnly() bool {
	return j.Profile == ProfileAudioOnly
}

// Extension is the output file extension implied by the profile and format.
func (j Job) Extension() string {
	if j.AudioOnly() {
		return j.AudioFormat.Extension()
	}
	return j.Profile.Extension()
}

// FrameMarker is the stats-line marker the progress monitor should expect.
func (j Job) FrameMarker() string {
	if j.AudioOnly() {
		return progress.AudioFrameMarker
	}
	return progress.VideoFrameMarker
}

// Builder renders Jobs into ffmpeg commands.
type Builder struct {
	binary      string
	vaapiDevice string
}

// NewBuilder constructs a builder. Empty arguments fall back to "ffmpeg" on
// PATH and the first DRM render node.
func NewBuilder(ffmpegBinary, vaapiDevice string) *Builder {
	binary := strings.TrimSpace(ffmpegBinary)
	if binary == "" {
		binary = defaultFFmpegBinary
	}
	device := strings.TrimSpace(vaapiDevice)
	if device == "" {
		device = defaultVAAPIDevice
	}
	return &Builder{binary: binary, vaapiDevice: device}
}

// Build renders job into a command.
func (b *Builder) Build(job Job) (Command, error) {
	if strings.TrimSpace(job.OutputPath) == "" {
		return Command{}, invalidJob("output path is required")
	}
	if strings.TrimSpace(job.AudioPath) == "" {
		return Command{}, invalidJob("audio input is required")
	}

	cmd := Command{Binary: b.binary}
	cmd.Set(SlotGlobal, "-hide_banner", "-nostdin", "-y", "-stats")
	cmd.Set(SlotOutput, job.OutputPath)

	if job.AudioOnly() {
		spec, ok := audioSpecs[job.AudioFormat]
		if !ok {
			return Command{}, invalidJob("unknown audio format " + string(job.AudioFormat))
		}
		cmd.Set(SlotInputs, "-i", job.AudioPath)
		cmd.Set(SlotMaps, "-map", "0:a:0")
		cmd.Set(SlotVideoCodec, "-vn")
		if job.Filter != nil && job.Filter.Audio != "" {
			cmd.Set(SlotAudioFilter, "-af", job.Filter.Audio)
		}
		cmd.Set(SlotAudioCodec, spec.audio.args()...)
		cmd.Set(SlotContainer, spec.container...)
		return cmd, nil
	}

	spec, ok := videoSpecs[job.Profile]
	if !ok {
		return Command{}, invalidJob("unknown profile " + string(job.Profile))
	}
	if strings.TrimSpace(job.VideoPath) == "" {
		return Command{}, invalidJob("video input is required")
	}
	if spec.hwaccel != nil {
		cmd.Set(SlotHWAccel, spec.hwaccel(b.vaapiDevice)...)
	}
	cmd.Set(SlotInputs, "-i", job.VideoPath, "-i", job.AudioPath)
	cmd.Set(SlotMaps, "-map", "0:v:0", "-map", "1:a:0")

	chain := make([]string, 0, 2)
	if job.Filter != nil && job.Filter.Video != "" {
		chain = append(chain, job.Filter.Video)
	}
	if spec.upload != "" {
		chain = append(chain, spec.upload)
	}
	if len(chain) > 0 {
		cmd.Set(SlotVideoFilter, "-vf", strings.Join(chain, ","))
	}
	cmd.Set(SlotVideoCodec, spec.videoCodec...)
	if job.Filter != nil && job.Filter.Audio != "" {
		cmd.Set(SlotAudioFilter, "-af", job.Filter.Audio)
	}
	cmd.Set(SlotAudioCodec, spec.audio.args()...)
	cmd.Set(SlotContainer, spec.container...)
	return cmd, nil
}

// OutputPath returns <libraryDir>/<sanitized title>.<ext>, falling back to
// fallback (normally the video id) when the title sanitizes to nothing.
func OutputPath(libraryDir, title, fallback, ext string) string {
	name := textutil.SanitizeTitle(title)
	if name == "" {
		name = textutil.SanitizeToken(fallback)
	}
	if ext = strings.TrimPrefix(strings.TrimSpace(ext), "."); ext != "" {
		name += "." + ext
	}
	return filepath.Join(libraryDir, name)
}

func invalidJob(message string) error {
	return services.Wrap(services.ErrValidation, "encoding", "build command", message, nil)
}
