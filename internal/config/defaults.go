package config

import "sponsorcut/internal/segments"

const (
	defaultConfigPath          = "~/.config/sponsorcut/config.toml"
	defaultLibraryDir          = "~/Videos"
	defaultTempDir             = "~/.local/share/sponsorcut/tmp"
	defaultLogDir              = "~/.local/share/sponsorcut/logs"
	defaultProfile             = "x265"
	defaultAudioFormat         = "aac"
	defaultVAAPIDevice         = "/dev/dri/renderD128"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultSponsorBlockBaseURL = "https://sponsor.ajay.app"
	defaultSponsorBlockTimeout = 10
	defaultDownloadRetries     = 2
	defaultStaleTempHours      = 24
	defaultNtfyTimeout         = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			TempDir:    defaultTempDir,
			LogDir:     defaultLogDir,
		},
		Encoding: Encoding{
			DefaultProfile:     defaultProfile,
			DefaultAudioFormat: defaultAudioFormat,
			VAAPIDevice:        defaultVAAPIDevice,
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
		},
		SponsorBlock: SponsorBlock{
			Enabled:        true,
			BaseURL:        defaultSponsorBlockBaseURL,
			Categories:     segments.DefaultCategories(),
			RequestTimeout: defaultSponsorBlockTimeout,
		},
		Download: Download{
			Retries:        defaultDownloadRetries,
			PreferMP4:      true,
			StaleTempHours: defaultStaleTempHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
