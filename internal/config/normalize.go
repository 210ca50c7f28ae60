package config

import (
	"fmt"
	"os"
	"strings"

	"sponsorcut/internal/segments"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoding()
	c.normalizeSponsorBlock()
	c.normalizeDownload()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	overrideFromEnv(&c.Paths.LibraryDir, "SPONSORCUT_LIBRARY_DIR")
	overrideFromEnv(&c.Paths.TempDir, "SPONSORCUT_TEMP_DIR")
	overrideFromEnv(&c.Paths.LogDir, "SPONSORCUT_LOG_DIR")

	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.LibraryDir, err = expandPath(strings.TrimSpace(c.Paths.LibraryDir)); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoding() {
	c.Encoding.DefaultProfile = strings.ToLower(strings.TrimSpace(c.Encoding.DefaultProfile))
	if c.Encoding.DefaultProfile == "" {
		c.Encoding.DefaultProfile = defaultProfile
	}
	c.Encoding.DefaultAudioFormat = strings.ToLower(strings.TrimSpace(c.Encoding.DefaultAudioFormat))
	if c.Encoding.DefaultAudioFormat == "" {
		c.Encoding.DefaultAudioFormat = defaultAudioFormat
	}
	overrideFromEnv(&c.Encoding.VAAPIDevice, "SPONSORCUT_VAAPI_DEVICE")
	c.Encoding.VAAPIDevice = strings.TrimSpace(c.Encoding.VAAPIDevice)
	if c.Encoding.VAAPIDevice == "" {
		c.Encoding.VAAPIDevice = defaultVAAPIDevice
	}
	c.Encoding.FFmpegBinary = strings.TrimSpace(c.Encoding.FFmpegBinary)
	c.Encoding.FFprobeBinary = strings.TrimSpace(c.Encoding.FFprobeBinary)
}

func (c *Config) normalizeSponsorBlock() {
	overrideFromEnv(&c.SponsorBlock.BaseURL, "SPONSORBLOCK_BASE_URL")
	c.SponsorBlock.BaseURL = strings.TrimRight(strings.TrimSpace(c.SponsorBlock.BaseURL), "/")
	if c.SponsorBlock.BaseURL == "" {
		c.SponsorBlock.BaseURL = defaultSponsorBlockBaseURL
	}
	if c.SponsorBlock.RequestTimeout <= 0 {
		c.SponsorBlock.RequestTimeout = defaultSponsorBlockTimeout
	}

	categories := make([]string, 0, len(c.SponsorBlock.Categories))
	seen := make(map[string]struct{}, len(c.SponsorBlock.Categories))
	for _, category := range c.SponsorBlock.Categories {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		categories = append(categories, normalized)
	}
	if len(categories) == 0 {
		categories = segments.DefaultCategories()
	}
	c.SponsorBlock.Categories = categories
}

func (c *Config) normalizeDownload() {
	if c.Download.Retries < 0 {
		c.Download.Retries = 0
	}
	if c.Download.StaleTempHours <= 0 {
		c.Download.StaleTempHours = defaultStaleTempHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func overrideFromEnv(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeNotifications() {
	overrideFromEnv(&c.Notifications.NtfyTopic, "SPONSORCUT_NTFY_TOPIC")
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}
