package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sponsorcut/internal/config"
	"sponsorcut/internal/source"
	"sponsorcut/internal/testsupport"
)

const testVideoID = "dQw4w9WgXcQ"

type cliTestEnv struct {
	config     *config.Config
	baseDir    string
	configPath string
	libraryDir string
	tempDir    string
	source     *fakeSource

	// interactive makes prompts read from the test's stdin.
	interactive bool
}

// setupCLITestEnv writes a config file with stub ffmpeg/ffprobe binaries and
// SponsorBlock disabled unless opts say otherwise.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	for _, key := range []string{"SPONSORCUT_LIBRARY_DIR", "SPONSORCUT_TEMP_DIR", "SPONSORCUT_LOG_DIR", "SPONSORBLOCK_BASE_URL", "SPONSORCUT_NTFY_TOPIC"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		config:     cfg,
		baseDir:    base,
		configPath: filepath.Join(base, "sponsorcut.toml"),
		libraryDir: cfg.Paths.LibraryDir,
		tempDir:    cfg.Paths.TempDir,
		source:     newFakeSource(),
	}
	env.writeConfig(t)
	return env
}

// writeConfig persists e.config; call it again after changing the config.
func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := toml.Marshal(e.config)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(e.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

// runWithInput feeds stdin and treats it as a terminal when e.interactive is
// set.
func (e *cliTestEnv) runWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.newSource = func(*config.Config) source.Client { return e.source }
	ctx.isInteractive = func(io.Reader) bool { return e.interactive }
	return runCLIWithInput(t, ctx, stdin, append([]string{"--config", e.configPath}, args...))
}

func runCLI(t *testing.T, ctx *commandContext, args []string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, ctx, "", args)
}

func runCLIWithInput(t *testing.T, ctx *commandContext, stdin string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithContext(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

type fakeSource struct {
	mu         sync.Mutex
	resolveErr error
	resolved   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{}
}

func (f *fakeSource) Resolve(ctx context.Context, locator string) (source.Metadata, error) {
	f.mu.Lock()
	f.resolved = append(f.resolved, locator)
	f.mu.Unlock()
	if f.resolveErr != nil {
		return source.Metadata{}, f.resolveErr
	}
	return source.Metadata{
		ID:    testVideoID,
		Title: "My Video",
		Video: &source.StreamInfo{Itag: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Height: 1080, ContentLength: 5},
		Audio: &source.StreamInfo{Itag: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, ContentLength: 5},
	}, nil
}

func (f *fakeSource) Open(ctx context.Context, meta source.Metadata, kind source.StreamKind) (io.ReadCloser, int64, error) {
	return io.NopCloser(strings.NewReader("bytes")), 5, nil
}
