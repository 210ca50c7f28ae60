package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"sponsorcut/internal/logging"
)

// CleanStaleResult contains the outcome of a cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes workspace artifacts older than maxAge whose workspace is
// not locked by a running job.
func CleanStale(ctx context.Context, tempDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	tempDir = strings.TrimSpace(tempDir)
	if tempDir == "" {
		return result
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: tempDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		id, ok := artifactID(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}

		path := filepath.Join(tempDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		lock := flock.New(filepath.Join(tempDir, id+lockSuffix))
		locked, err := lock.TryLock()
		if err != nil || !locked {
			continue
		}
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale temp file",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "staging_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
		} else {
			_ = os.Remove(lock.Path())
			result.Removed = append(result.Removed, path)
			if logger != nil {
				logger.Info("removed stale temp file",
					logging.String("path", path),
					logging.Duration("age", time.Since(info.ModTime())),
					logging.String(logging.FieldEventType, "staging_cleanup"),
				)
			}
		}
		_ = lock.Unlock()
	}

	return result
}

// Artifact describes a workspace file found in the temp directory.
type Artifact struct {
	Name    string
	Path    string
	VideoID string
	ModTime time.Time
	Size    int64
}

// ListArtifacts returns the workspace files in tempDir, oldest first.
func ListArtifacts(tempDir string) ([]Artifact, error) {
	tempDir = strings.TrimSpace(tempDir)
	if tempDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var artifacts []Artifact
	for _, entry := range entries {
		id, ok := artifactID(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    entry.Name(),
			Path:    filepath.Join(tempDir, entry.Name()),
			VideoID: id,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].ModTime.Before(artifacts[j].ModTime)
	})
	return artifacts, nil
}

// TotalSize sums the artifact sizes.
func TotalSize(artifacts []Artifact) int64 {
	var total int64
	for _, a := range artifacts {
		total += a.Size
	}
	return total
}

// artifactID returns the video id of a workspace file name.
func artifactID(name string) (string, bool) {
	for _, infix := range []string{videoInfix, audioInfix, encodedInfix} {
		if idx := strings.Index(name, infix); idx > 0 {
			return name[:idx], true
		}
	}
	return "", false
}
