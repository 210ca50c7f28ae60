package report

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"sponsorcut/internal/pipeline"
	"sponsorcut/internal/progress"
	"sponsorcut/internal/source"
)

const (
	barWidth    = 30
	barThrottle = 100 * time.Millisecond
	// encodeScale maps percent to bar steps so two decimals survive.
	encodeScale = 100
)

var barTheme = progressbar.Theme{
	Saucer:        "█",
	SaucerHead:    "█",
	SaucerPadding: "░",
	BarStart:      "▐",
	BarEnd:        "▌",
}

// ProgressObserver prints stage transitions and, on interactive terminals,
// download and encode progress bars.
type ProgressObserver struct {
	f      *Formatter
	bar    *progressbar.ProgressBar
	barKey string
}

// NewProgressObserver adapts f to pipeline.Observer.
func NewProgressObserver(f *Formatter) *ProgressObserver {
	return &ProgressObserver{f: f}
}

// StageChanged closes any open bar and announces non-terminal stages.
func (o *ProgressObserver) StageChanged(job *pipeline.Job, stage pipeline.Stage) {
	o.closeBar()
	if stage.Terminal() {
		return
	}
	subject := job.Title
	if subject == "" {
		subject = job.Locator
	}
	tag := o.f.palette.Muted(fmt.Sprintf("[%s]", stage))
	o.f.Println(fmt.Sprintf("%s%s %s", indent, tag, stageMessage(stage, subject)))
}

// DownloadProgress advances the bar for the stream being downloaded.
func (o *ProgressObserver) DownloadProgress(_ *pipeline.Job, kind source.StreamKind, written, total int64) {
	if !o.f.interactive {
		return
	}
	key := "download-" + kind.String()
	if o.barKey != key {
		limit := total
		if limit <= 0 {
			limit = -1
		}
		o.open(key, progressbar.NewOptions64(limit, o.barOptions("Downloading "+kind.String(),
			progressbar.OptionShowBytes(true),
		)...))
	}
	_ = o.bar.Set64(written)
}

// EncodeProgress advances the encode bar with the monotonic percentage.
func (o *ProgressObserver) EncodeProgress(_ *pipeline.Job, update progress.Update) {
	if !o.f.interactive {
		return
	}
	if o.barKey != "encode" {
		o.open("encode", progressbar.NewOptions(100*encodeScale, o.barOptions("Encoding",
			progressbar.OptionSetPredictTime(false),
		)...))
	}
	o.bar.Describe(update.Message(string(pipeline.StageEncoding)))
	_ = o.bar.Set(int(update.Displayed * encodeScale))
}

// Close finishes any open bar.
func (o *ProgressObserver) Close() {
	o.closeBar()
}

func (o *ProgressObserver) barOptions(description string, extra ...progressbar.Option) []progressbar.Option {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(o.f.out),
		progressbar.OptionSetDescription(indent + description),
		progressbar.OptionSetWidth(barWidth),
		progressbar.OptionThrottle(barThrottle),
		progressbar.OptionSetTheme(barTheme),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	}
	return append(opts, extra...)
}

func (o *ProgressObserver) open(key string, bar *progressbar.ProgressBar) {
	o.closeBar()
	o.bar = bar
	o.barKey = key
}

func (o *ProgressObserver) closeBar() {
	if o.bar == nil {
		return
	}
	_ = o.bar.Finish()
	o.bar = nil
	o.barKey = ""
}

func stageMessage(stage pipeline.Stage, subject string) string {
	switch stage {
	case pipeline.StageResolving:
		return "Resolving " + subject
	case pipeline.StageFetchingSegments:
		return "Looking up sponsor segments"
	case pipeline.StageDownloading:
		return "Downloading streams"
	case pipeline.StageProbing:
		return "Probing duration"
	case pipeline.StageEncoding:
		return "Encoding " + subject
	case pipeline.StageCleaningUp:
		return "Removing temp files"
	default:
		return stage.Label()
	}
}
