package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"sponsorcut/internal/logging"
	"sponsorcut/internal/services"
)

const (
	copyBufferSize = 32 * 1024
	retryBackoff   = 2 * time.Second
)

// ProgressFunc receives the bytes written so far and the expected total,
// which is 0 when the host does not report a length.
type ProgressFunc func(written, total int64)

// Downloader writes selected streams to disk, retrying transient failures.
type Downloader struct {
	Client  Client
	Retries int
	Logger  *slog.Logger

	// Backoff is the wait before retry n (1-based). Defaults to n*2s.
	Backoff func(attempt int) time.Duration
}

// Download fetches the stream of the given kind into path. A partial file is
// removed before every retry and on final failure. Failures are marked
// services.ErrDownload.
func (d *Downloader) Download(ctx context.Context, meta Metadata, kind StreamKind, path string, progress ProgressFunc) (int64, error) {
	if d == nil || d.Client == nil {
		return 0, services.Wrap(services.ErrDownload, "downloading", kind.String(), "no source client configured", nil)
	}
	if meta.Stream(kind) == nil {
		return 0, services.Wrap(services.ErrDownload, "downloading", kind.String(), "no "+kind.String()+" stream selected", nil)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(d.Logger, "downloader"))
	attempts := max(d.Retries, 0) + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := d.backoff(attempt - 1)
			logging.WarnWithContext(logger, "retrying download", "download_retry",
				logging.String("stream", kind.String()),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", attempts),
				logging.Duration("backoff", wait),
				logging.Error(lastErr),
				logging.String(logging.FieldErrorHint, "network or host throttling"),
				logging.String(logging.FieldImpact, "download restarts from the beginning"),
			)
			select {
			case <-ctx.Done():
				_ = os.Remove(path)
				return 0, services.Wrap(services.ErrDownload, "downloading", kind.String(), "interrupted", ctx.Err())
			case <-time.After(wait):
			}
		}

		written, err := d.attempt(ctx, meta, kind, path, progress)
		if err == nil {
			logger.Info("stream downloaded",
				logging.String(logging.FieldEventType, "download_complete"),
				logging.String("stream", kind.String()),
				logging.String("path", path),
				logging.String("size", humanize.IBytes(uint64(written))),
			)
			return written, nil
		}
		_ = os.Remove(path)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return 0, services.Wrap(services.ErrDownload, "downloading", kind.String(), fmt.Sprintf("failed after %d attempt(s)", attempts), lastErr)
}

func (d *Downloader) attempt(ctx context.Context, meta Metadata, kind StreamKind, path string, progress ProgressFunc) (int64, error) {
	stream, size, err := d.Client.Open(ctx, meta, kind)
	if err != nil {
		return 0, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	written, copyErr := copyWithProgress(ctx, file, stream, size, progress)
	closeErr := file.Close()
	if copyErr != nil {
		return written, copyErr
	}
	if closeErr != nil {
		return written, fmt.Errorf("close %s: %w", path, closeErr)
	}
	if size > 0 && written != size {
		return written, fmt.Errorf("short download: got %d of %d bytes", written, size)
	}
	if written == 0 {
		return 0, errors.New("empty stream")
	}
	return written, nil
}

func (d *Downloader) backoff(retry int) time.Duration {
	if d.Backoff != nil {
		return d.Backoff(retry)
	}
	return time.Duration(retry) * retryBackoff
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, err := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			written += int64(nw)
			if progress != nil && nw > 0 {
				progress(written, total)
			}
			if ew != nil {
				return written, ew
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, err
		}
	}
}
