package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"sponsorcut/internal/textutil"
)

const (
	videoInfix   = ".video."
	audioInfix   = ".audio."
	encodedInfix = ".encoded."
	lockSuffix   = ".lock"
)

// ErrBusy reports that another run holds the workspace for the same video.
var ErrBusy = errors.New("workspace is in use by another run")

// Workspace is the set of temp paths for one video.
type Workspace struct {
	Dir         string
	ID          string
	VideoPath   string
	AudioPath   string
	EncodedPath string

	lock *flock.Flock
}

// Extensions names the file extensions of the workspace files. An empty
// Video extension means the job downloads no video stream.
type Extensions struct {
	Video   string
	Audio   string
	Encoded string
}

// Acquire creates dir if needed, locks the workspace for videoID, and returns
// its paths.
func Acquire(dir, videoID string, ext Extensions) (*Workspace, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("staging: temp directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create %s: %w", dir, err)
	}
	id := textutil.SanitizeToken(videoID)

	lock := flock.New(filepath.Join(dir, id+lockSuffix))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("staging: lock %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("staging: %s: %w", id, ErrBusy)
	}

	ws := &Workspace{Dir: dir, ID: id, lock: lock}
	if ext.Video != "" {
		ws.VideoPath = filepath.Join(dir, id+videoInfix+trimDot(ext.Video))
	}
	ws.AudioPath = filepath.Join(dir, id+audioInfix+trimDot(ext.Audio))
	ws.EncodedPath = filepath.Join(dir, id+encodedInfix+trimDot(ext.Encoded))
	return ws, nil
}

// Files lists the workspace files in creation order.
func (w *Workspace) Files() []string {
	files := make([]string, 0, 3)
	if w.VideoPath != "" {
		files = append(files, w.VideoPath)
	}
	return append(files, w.AudioPath, w.EncodedPath)
}

// Cleanup removes every workspace file that exists and releases the lock.
// Missing files are not errors. It is safe to call more than once.
func (w *Workspace) Cleanup() CleanStaleResult {
	var result CleanStaleResult
	if w == nil {
		return result
	}
	for _, path := range w.Files() {
		err := os.Remove(path)
		switch {
		case err == nil:
			result.Removed = append(result.Removed, path)
		case errors.Is(err, os.ErrNotExist):
		default:
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
		}
	}
	if w.lock != nil {
		lockPath := w.lock.Path()
		if err := w.lock.Unlock(); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: lockPath, Error: err})
		}
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			result.Errors = append(result.Errors, CleanupError{Path: lockPath, Error: err})
		}
		w.lock = nil
	}
	return result
}

func trimDot(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}
