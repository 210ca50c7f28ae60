package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sponsorcut/internal/services"
	"sponsorcut/internal/testsupport"
)

const ffmpegStub = `for last; do :; done
printf 'Input #0, mov\n' >&2
printf 'frame=  10 fps=0.0 size=1kB time=00:00:45.00 bitrate=1.0kbits/s speed=1.0x\r' >&2
printf 'frame=  20 fps=0.0 size=2kB time=00:01:30.00 bitrate=1.0kbits/s speed=1.0x\r' >&2
printf 'encoded' > "$last"
`

const ffprobeStub = `case "$*" in
*show_entries*) echo 120.000000 ;;
*) echo '{"streams":[{"index":0,"codec_type":"video","codec_name":"hevc","width":1920,"height":1080},{"index":1,"codec_type":"audio","codec_name":"aac"}],"format":{"duration":"90.0","size":"7"}}' ;;
esac
`

func newSponsorBlockServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			fmt.Fprint(w, `{"uptime":1}`)
		case "/api/skipSegments":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProfilesListsProfilesAndFormats(t *testing.T) {
	stdout, _, err := runCLI(t, newCommandContext(), []string{"profiles"})
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	for _, want := range []string{"x265", "libx265", "hevc_nvenc", "gpu", "flac", "libmp3lame", "Lossless"} {
		requireContains(t, stdout, want)
	}
}

func TestConfigInitWritesSampleOnce(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	stdout, _, err := runCLI(t, newCommandContext(), []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration to "+target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	requireContains(t, string(data), "[sponsorblock]")

	if _, _, err := runCLI(t, newCommandContext(), []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, newCommandContext(), []string{"config", "init", "--path", target, "--overwrite"}); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReadsConfigFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, "Config path: "+env.configPath)
	requireContains(t, stdout, "Library: "+env.libraryDir)
	requireContains(t, stdout, "SponsorBlock: disabled")
	requireContains(t, stdout, "Notifications: disabled")
	requireContains(t, stdout, "Configuration valid")
}

func TestConfigValidateReportsSponsorBlock(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSponsorBlock("https://sponsor.example.test"))
	env.config.SponsorBlock.Categories = []string{"sponsor", "selfpromo"}
	env.writeConfig(t)

	stdout, _, err := env.run(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, "SponsorBlock: https://sponsor.example.test (Sponsor, Self Promotion)")
}

func TestConfigValidateRejectsBadCategory(t *testing.T) {
	env := setupCLITestEnv(t)
	env.config.SponsorBlock.Enabled = true
	env.config.SponsorBlock.Categories = []string{"ads"}
	env.writeConfig(t)

	_, _, err := env.run(t, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "ads") {
		t.Fatalf("expected category error, got %v", err)
	}
}

func TestSegmentsPrintsRawAndMerged(t *testing.T) {
	srv := newSponsorBlockServer(t, `[
		{"segment":[30,60],"UUID":"a","category":"sponsor","actionType":"skip"},
		{"segment":[55,90],"UUID":"b","category":"selfpromo","actionType":"skip"}
	]`)
	env := setupCLITestEnv(t, testsupport.WithSponsorBlock(srv.URL))

	stdout, _, err := env.run(t, "--no-color", "segments", "https://www.youtube.com/watch?v="+testVideoID)
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	requireContains(t, stdout, testVideoID)
	requireContains(t, stdout, "Submitted")
	requireContains(t, stdout, "Excluded")
	requireContains(t, stdout, "Sponsor, Self Promotion")
	requireContains(t, stdout, "1:00.00")
	requireContains(t, stdout, "not(between(t,30,90))")
}

func TestSegmentsReportsNoneSubmitted(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	env := setupCLITestEnv(t, testsupport.WithSponsorBlock(srv.URL))

	stdout, _, err := env.run(t, "segments", testVideoID)
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	requireContains(t, stdout, "none submitted")
}

func TestFetchProducesLibraryFile(t *testing.T) {
	srv := newSponsorBlockServer(t, `[{"segment":[30,60],"UUID":"a","category":"sponsor","actionType":"skip"}]`)
	env := setupCLITestEnv(t,
		testsupport.WithFFmpegScript(ffmpegStub),
		testsupport.WithFFprobeScript(ffprobeStub),
		testsupport.WithSponsorBlock(srv.URL),
	)

	stdout, _, err := env.run(t, "--no-color", "fetch", "--profile", "cpu", "https://youtu.be/"+testVideoID)
	if err != nil {
		t.Fatalf("fetch: %v\n%s", err, stdout)
	}
	requireContains(t, stdout, "[OK] My Video")
	requireContains(t, stdout, "2:00.00 -> 1:30.00")
	requireContains(t, stdout, "Removed:")
	requireContains(t, stdout, "0:30.00 in 1 interval(s)")

	output := filepath.Join(env.libraryDir, "My_Video.mp4")
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "encoded" {
		t.Fatalf("unexpected output contents %q", data)
	}
	entries, err := os.ReadDir(env.tempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("workspace files left behind: %d", len(entries))
	}
}

func TestFetchFailureExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	env.source.resolveErr = services.Wrap(services.ErrUnreachableSource, "resolving", "youtube", "video unavailable", nil)

	stdout, _, err := env.run(t, "--no-color", "fetch", testVideoID)
	if err == nil {
		t.Fatal("expected fetch to fail")
	}
	if !errors.Is(err, errReported) || !errors.Is(err, services.ErrUnreachableSource) {
		t.Fatalf("unexpected error %v", err)
	}
	requireContains(t, stdout, "[ERROR] "+testVideoID)
	requireContains(t, stdout, "unreachable_source")
}

func TestFetchRejectsUnknownProfile(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "fetch", "--profile", "av1", testVideoID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(env.source.resolved) != 0 {
		t.Fatalf("source should not be touched, got %v", env.source.resolved)
	}
}

func TestFetchRejectsConflictingMode(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "fetch", "--mode", "video", "--profile", "audio", testVideoID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFetchRejectsVideoProfileInAudioMode(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "fetch", "--mode", "audio", "--profile", "nvenc", testVideoID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(env.source.resolved) != 0 {
		t.Fatalf("source should not be touched, got %v", env.source.resolved)
	}
}

func TestFetchRejectsUnknownCategory(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "fetch", "--categories", "sponsor,ads", testVideoID)
	if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), `"ads"`) {
		t.Fatalf("expected category validation error, got %v", err)
	}
	if len(env.source.resolved) != 0 {
		t.Fatalf("source should not be touched, got %v", env.source.resolved)
	}
}

func TestFetchPromptsForProfileOnTerminal(t *testing.T) {
	env := setupCLITestEnv(t)
	env.interactive = true
	env.source.resolveErr = services.Wrap(services.ErrUnreachableSource, "resolving", "youtube", "video unavailable", nil)

	_, stderr, err := env.runWithInput(t, "nvenc\n", "--no-color", "fetch", testVideoID)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	requireContains(t, stderr, "Encode profile:")
	requireContains(t, stderr, "x265 (default)")
}

func TestBatchFromStdinDoesNotPrompt(t *testing.T) {
	env := setupCLITestEnv(t)
	env.interactive = true
	env.source.resolveErr = services.Wrap(services.ErrExtraction, "resolving", "youtube", "no streams", nil)

	_, stderr, err := env.runWithInput(t, "https://youtu.be/aaaaaaaaaaa\n", "--no-color", "batch", "-")
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported batch failure, got %v", err)
	}
	if strings.Contains(stderr, "Encode profile:") {
		t.Fatalf("batch - must not prompt, stderr:\n%s", stderr)
	}
	if len(env.source.resolved) != 1 {
		t.Fatalf("expected one item from stdin, got %v", env.source.resolved)
	}
}

func TestBatchContinuesPastFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	env.source.resolveErr = services.Wrap(services.ErrExtraction, "resolving", "youtube", "no streams", nil)
	list := filepath.Join(env.baseDir, "list.txt")
	content := "# queue\nhttps://youtu.be/aaaaaaaaaaa\n\nhttps://youtu.be/bbbbbbbbbbb\nhttps://youtu.be/aaaaaaaaaaa\nhttps://youtu.be/aaaaaaaaaaa\n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	stdout, _, err := env.run(t, "--no-color", "batch", list)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported batch failure, got %v", err)
	}
	if len(env.source.resolved) != 2 {
		t.Fatalf("expected both unique items to run, got %v", env.source.resolved)
	}
	requireContains(t, stdout, "[1/2] https://youtu.be/aaaaaaaaaaa")
	requireContains(t, stdout, "[2/2] https://youtu.be/bbbbbbbbbbb")
	requireContains(t, stdout, "Batch summary")
	requireContains(t, stdout, "(extraction_failure)")
}

func TestBatchRejectsEmptyList(t *testing.T) {
	env := setupCLITestEnv(t)
	list := filepath.Join(env.baseDir, "empty.txt")
	if err := os.WriteFile(list, []byte("# nothing yet\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	if _, _, err := env.run(t, "batch", list); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStatusReportsMissingFFmpeg(t *testing.T) {
	env := setupCLITestEnv(t)
	env.config.Encoding.FFmpegBinary = filepath.Join(t.TempDir(), "missing-ffmpeg")
	env.writeConfig(t)
	stdout, _, err := env.run(t, "--no-color", "status")
	if err == nil {
		t.Fatal("expected status to fail without ffmpeg")
	}
	requireContains(t, stdout, "== Dependencies ==")
	requireContains(t, stdout, "[ERROR]")
	requireContains(t, stdout, "== Workspace ==")
	requireContains(t, stdout, "[OK] empty")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := env.run(t, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, stdout, "Notifications disabled")
}
