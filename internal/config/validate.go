package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"sponsorcut/internal/segments"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateSponsorBlock(); err != nil {
		return err
	}
	if c.Download.Retries < 0 {
		return errors.New("download.retries must be >= 0")
	}
	if c.Download.StaleTempHours <= 0 {
		return errors.New("download.stale_temp_hours must be positive")
	}
	if topic := c.Notifications.NtfyTopic; topic != "" {
		parsed, err := url.Parse(topic)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("notifications.ntfy_topic %q must be a full topic URL", topic)
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("paths.library_dir is required. Set SPONSORCUT_LIBRARY_DIR or edit %s (create with 'sponsorcut config init')", defaultPath)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if c.Paths.TempDir == c.Paths.LibraryDir {
		return errors.New("paths.temp_dir must differ from paths.library_dir")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.DefaultProfile == "" {
		return errors.New("encoding.default_profile must be set")
	}
	if c.Encoding.DefaultAudioFormat == "" {
		return errors.New("encoding.default_audio_format must be set")
	}
	if c.Encoding.VAAPIDevice == "" {
		return errors.New("encoding.vaapi_device must be set")
	}
	return nil
}

func (c *Config) validateSponsorBlock() error {
	if !c.SponsorBlock.Enabled {
		return nil
	}
	parsed, err := url.Parse(c.SponsorBlock.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("sponsorblock.base_url %q must be an http(s) URL", c.SponsorBlock.BaseURL)
	}
	if c.SponsorBlock.RequestTimeout <= 0 {
		return errors.New("sponsorblock.request_timeout must be positive (seconds)")
	}
	for _, category := range c.SponsorBlock.Categories {
		if !segments.IsKnownCategory(category) {
			return fmt.Errorf("sponsorblock.categories: unknown category %q (known: %s)", category, strings.Join(segments.KnownCategories(), ", "))
		}
	}
	return nil
}
