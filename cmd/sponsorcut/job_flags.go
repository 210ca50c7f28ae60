package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sponsorcut/internal/config"
	"sponsorcut/internal/encoding"
	"sponsorcut/internal/pipeline"
	"sponsorcut/internal/segments"
	"sponsorcut/internal/services"
)

const (
	modeVideo = "video"
	modeAudio = "audio"
)

// jobFlags are shared by fetch and batch.
type jobFlags struct {
	mode           string
	profile        string
	format         string
	library        string
	noSponsorBlock bool
	categories     []string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.mode, "mode", "", "Output mode: video or audio")
	flags.StringVar(&f.profile, "profile", "", "Video encode profile (see 'sponsorcut profiles')")
	flags.StringVar(&f.format, "format", "", "Audio format for audio mode: aac, mp3 or flac")
	flags.StringVar(&f.library, "library", "", "Output directory (overrides paths.library_dir)")
	flags.BoolVar(&f.noSponsorBlock, "no-sponsorblock", false, "Keep sponsor segments")
	flags.StringSliceVar(&f.categories, "categories", nil, "SponsorBlock categories to remove (comma separated)")
}

// request turns the flags into a pipeline request. When prompt is set, values
// left out are asked for on stdin.
func (f *jobFlags) request(cmd *cobra.Command, cfg *config.Config, prompt bool) (pipeline.Request, error) {
	req := pipeline.Request{
		LibraryDir:   strings.TrimSpace(f.library),
		SkipSegments: f.noSponsorBlock,
	}
	categories, err := parseCategories(f.categories)
	if err != nil {
		return req, err
	}
	req.Categories = categories

	mode := strings.ToLower(strings.TrimSpace(f.mode))
	switch mode {
	case "", modeVideo, modeAudio:
	default:
		return req, services.Wrap(services.ErrValidation, "cli", "parse flags", fmt.Sprintf("unknown mode %q (want video or audio)", f.mode), nil)
	}
	if name := strings.TrimSpace(f.profile); mode == modeAudio && name != "" {
		profile, err := parseFlag(encoding.ParseProfile, name)
		if err != nil {
			return req, err
		}
		if profile != encoding.ProfileAudioOnly {
			return req, services.Wrap(services.ErrValidation, "cli", "parse flags", fmt.Sprintf("profile %s conflicts with --mode audio", profile), nil)
		}
	}

	var reader *bufio.Reader
	if prompt {
		reader = bufio.NewReader(cmd.InOrStdin())
	}
	out := cmd.ErrOrStderr()

	audioFormat, err := f.resolveFormat(reader, out, cfg)
	if err != nil {
		return req, err
	}
	req.AudioFormat = audioFormat

	if mode == modeAudio {
		req.Profile = encoding.ProfileAudioOnly
		return req, nil
	}
	profile, err := f.resolveProfile(reader, out, cfg)
	if err != nil {
		return req, err
	}
	if mode == modeVideo && profile == encoding.ProfileAudioOnly {
		return req, services.Wrap(services.ErrValidation, "cli", "parse flags", "profile audio conflicts with --mode video", nil)
	}
	req.Profile = profile
	return req, nil
}

func (f *jobFlags) resolveProfile(reader *bufio.Reader, out io.Writer, cfg *config.Config) (encoding.Profile, error) {
	if name := strings.TrimSpace(f.profile); name != "" {
		return parseFlag(encoding.ParseProfile, name)
	}
	fallback, err := parseFlag(encoding.ParseProfile, cfg.Encoding.DefaultProfile)
	if err != nil {
		return "", err
	}
	if reader == nil {
		return fallback, nil
	}
	return promptChoice(reader, out, "Encode profile:", encoding.VideoProfiles(), fallback, encoding.ParseProfile)
}

// resolveFormat only prompts when the output will be audio-only.
func (f *jobFlags) resolveFormat(reader *bufio.Reader, out io.Writer, cfg *config.Config) (encoding.AudioFormat, error) {
	if name := strings.TrimSpace(f.format); name != "" {
		return parseFlag(encoding.ParseAudioFormat, name)
	}
	fallback, err := parseFlag(encoding.ParseAudioFormat, cfg.Encoding.DefaultAudioFormat)
	if err != nil {
		return "", err
	}
	if reader == nil || !f.audioMode() {
		return fallback, nil
	}
	return promptChoice(reader, out, "Audio format:", encoding.AudioFormats(), fallback, encoding.ParseAudioFormat)
}

func (f *jobFlags) audioMode() bool {
	if strings.EqualFold(strings.TrimSpace(f.mode), modeAudio) {
		return true
	}
	profile, err := encoding.ParseProfile(f.profile)
	return err == nil && profile == encoding.ProfileAudioOnly
}

func parseFlag[T any](parse func(string) (T, error), value string) (T, error) {
	parsed, err := parse(value)
	if err != nil {
		return parsed, services.Wrap(services.ErrValidation, "cli", "parse flags", err.Error(), nil)
	}
	return parsed, nil
}

// parseCategories lowercases and trims values and rejects unknown categories.
func parseCategories(values []string) ([]string, error) {
	var out []string
	for _, value := range values {
		category := strings.ToLower(strings.TrimSpace(value))
		if category == "" {
			continue
		}
		if !segments.IsKnownCategory(category) {
			return nil, services.Wrap(services.ErrValidation, "cli", "parse flags",
				fmt.Sprintf("unknown category %q (known: %s)", value, strings.Join(segments.KnownCategories(), ", ")), nil)
		}
		out = append(out, category)
	}
	return out, nil
}
