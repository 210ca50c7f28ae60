package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Placer moves encoded files into the library.
type Placer struct {
	Overwrite bool
	MoveFunc  func(sourcePath, targetPath string) error
}

// NewPlacer constructs a placer using FileMover.
func NewPlacer(overwrite bool) *Placer {
	return &Placer{Overwrite: overwrite, MoveFunc: FileMover}
}

// Place moves sourcePath to targetPath and returns the final path. When the
// target exists and overwrite is off, "_2", "_3", ... is appended to the stem.
func (p *Placer) Place(sourcePath, targetPath string) (string, error) {
	finalPath := targetPath
	if p.Overwrite {
		if err := removeExistingTarget(finalPath); err != nil {
			return "", err
		}
	} else {
		dir := filepath.Dir(targetPath)
		ext := filepath.Ext(targetPath)
		stem := strings.TrimSuffix(filepath.Base(targetPath), ext)
		counter := 2
		for {
			info, err := os.Stat(finalPath)
			if err != nil {
				if os.IsNotExist(err) {
					break
				}
				return "", fmt.Errorf("stat candidate path: %w", err)
			}
			if info.IsDir() {
				return "", fmt.Errorf("library target %q already exists as directory", finalPath)
			}
			finalPath = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
			counter++
		}
	}

	move := p.MoveFunc
	if move == nil {
		move = FileMover
	}
	if err := move(sourcePath, finalPath); err != nil {
		return "", err
	}
	return finalPath, nil
}

// Exists reports whether a regular file already occupies path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileMover moves a file, creating the target directory and copying across
// filesystems when a rename is not possible.
func FileMover(sourcePath, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}
	if err := os.Rename(sourcePath, targetPath); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if err := copyFileContents(sourcePath, targetPath); err != nil {
				_ = os.Remove(targetPath)
				return fmt.Errorf("copy file across devices: %w", err)
			}
			if err := os.Remove(sourcePath); err != nil {
				return fmt.Errorf("remove source after copy: %w", err)
			}
			return nil
		}
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}

func copyFileContents(sourcePath, targetPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dest, err := os.OpenFile(targetPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		return fmt.Errorf("copy data: %w", err)
	}
	if err := dest.Sync(); err != nil {
		dest.Close()
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

func removeExistingTarget(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat existing target: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("existing library path %q is a directory", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing target %q: %w", path, err)
	}
	return nil
}
