package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sponsorcut/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// SponsorBlock is disabled and downloads are not retried unless an option
// says otherwise.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.SponsorBlock.Enabled = false
	cfgVal.Download.Retries = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSponsorBlock enables the segment provider at baseURL.
func WithSponsorBlock(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SponsorBlock.Enabled = true
		b.cfg.SponsorBlock.BaseURL = baseURL
	}
}

// WithOverwrite sets the library overwrite policy.
func WithOverwrite(overwrite bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.OverwriteExisting = overwrite
	}
}

// WithStubbedBinaries points ffmpeg and ffprobe at scripts that exit 0.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoding.FFmpegBinary = WriteScript(b.t, b.binDir(), "ffmpeg", "exit 0\n")
		b.cfg.Encoding.FFprobeBinary = WriteScript(b.t, b.binDir(), "ffprobe", "exit 0\n")
	}
}

// WithFFmpegScript points ffmpeg at a script running body.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoding.FFmpegBinary = WriteScript(b.t, b.binDir(), "ffmpeg", body)
	}
}

// WithFFprobeScript points ffprobe at a script running body.
func WithFFprobeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoding.FFprobeBinary = WriteScript(b.t, b.binDir(), "ffprobe", body)
	}
}

func (b *configBuilder) binDir() string {
	return filepath.Join(b.baseDir, "bin")
}

// WriteScript writes an executable shell script named name under dir and
// returns its path. body follows the #!/bin/sh line.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TempDir)
}
