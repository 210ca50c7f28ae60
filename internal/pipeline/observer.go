package pipeline

import (
	"sponsorcut/internal/progress"
	"sponsorcut/internal/source"
)

// Observer receives lifecycle and progress events. Implementations must be
// cheap; they run on the pipeline goroutine.
type Observer interface {
	StageChanged(job *Job, stage Stage)
	DownloadProgress(job *Job, kind source.StreamKind, written, total int64)
	EncodeProgress(job *Job, update progress.Update)
}

type nopObserver struct{}

func (nopObserver) StageChanged(*Job, Stage)                               {}
func (nopObserver) DownloadProgress(*Job, source.StreamKind, int64, int64) {}
func (nopObserver) EncodeProgress(*Job, progress.Update)                   {}
