package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sponsorcut/internal/config"
	"sponsorcut/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDevice(t *testing.T) {
	node := filepath.Join(t.TempDir(), "renderD128")
	if err := os.WriteFile(node, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if r := CheckDevice("VA-API device", node); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	if r := CheckDevice("VA-API device", filepath.Join(t.TempDir(), "missing")); r.Passed {
		t.Fatal("expected failure for missing device")
	}
}

func TestCheckSponsorBlock_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckSponsorBlock(context.Background(), srv.URL+"/")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckSponsorBlock_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	result := CheckSponsorBlock(context.Background(), srv.URL)
	if result.Passed || !strings.Contains(result.Detail, "502") {
		t.Fatalf("expected 502 failure, got %+v", result)
	}
}

func TestCheckSponsorBlock_MissingURL(t *testing.T) {
	if result := CheckSponsorBlock(context.Background(), " "); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.SponsorBlock.Enabled = false

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRunAll_ChecksVAAPIDeviceForVAAPIProfile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.SponsorBlock.Enabled = false
	cfg.Encoding.DefaultProfile = "intel"
	cfg.Encoding.VAAPIDevice = filepath.Join(t.TempDir(), "renderD128")

	results := RunAll(context.Background(), &cfg)
	if len(results) != 3 || results[2].Name != "VA-API device" || results[2].Passed {
		t.Fatalf("expected failing VA-API check, got %+v", results)
	}
	if err := Err(results); err == nil || !strings.Contains(err.Error(), "VA-API device") {
		t.Fatalf("expected device failure in error, got %v", err)
	}
}

func TestErrIgnoresSponsorBlockFailure(t *testing.T) {
	results := []Result{
		{Name: "Temp directory", Passed: true},
		{Name: sponsorBlockCheckName, Detail: "status check failed (503)"},
	}
	if err := Err(results); err != nil {
		t.Fatalf("sponsor reachability must not block runs: %v", err)
	}
	if len(Failed(results)) != 1 {
		t.Fatal("expected the failure to be listed")
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := config.Default()
	cfg.Encoding.FFmpegBinary = "clearly-missing-ffmpeg"
	cfg.Encoding.FFprobeBinary = "clearly-missing-ffprobe"
	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		if s.Available {
			t.Fatalf("expected %s to be unavailable", s.Name)
		}
	}
}

func TestCheckSystemDepsFindsConfiguredBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	for _, s := range CheckSystemDeps(context.Background(), cfg) {
		if !s.Available {
			t.Fatalf("expected %s to be available: %s", s.Name, s.Detail)
		}
	}
}
