package progress

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"sponsorcut/internal/logging"
	"sponsorcut/internal/services"
)

// State is the lifecycle of a Monitor.
type State int

const (
	Running State = iota
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "running"
}

const (
	// VideoFrameMarker identifies stats lines for jobs with a video stream.
	VideoFrameMarker = "frame="
	// AudioFrameMarker identifies stats lines for audio-only jobs, which carry
	// no frame counter.
	AudioFrameMarker = "size="

	timeMarker  = "time="
	speedMarker = "speed="
	unknownTime = "N/A"

	maxScanToken = 1024 * 1024
)

// Update is one progress observation.
type Update struct {
	// Elapsed is the output timestamp reported by the transcoder, in seconds.
	Elapsed float64
	// Percent is the value computed from this line alone.
	Percent float64
	// Displayed is the monotonic value shown to the user.
	Displayed float64
	// Speed is the transcoder's realtime multiplier, 0 when unknown.
	Speed float64
	// ETA is the estimated remaining wall time, 0 when unknown.
	ETA time.Duration
}

// Message renders the update as a short human-readable status.
func (u Update) Message(stage string) string {
	base := fmt.Sprintf("%s %.2f%%", stageLabel(stage), u.Displayed)
	extras := make([]string, 0, 2)
	if formatted := formatETA(u.ETA); formatted != "" {
		extras = append(extras, "ETA "+formatted)
	}
	if u.Speed > 0 {
		extras = append(extras, fmt.Sprintf("@ %.1fx", u.Speed))
	}
	if len(extras) == 0 {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, strings.Join(extras, ", "))
}

// Options configures a Monitor.
type Options struct {
	// Total is the expected output duration in seconds. Required.
	Total float64
	// FrameMarker must appear on a line, together with time=, for the line to
	// count as progress. Defaults to VideoFrameMarker.
	FrameMarker string
	// Sink receives every update. Optional.
	Sink func(Update)
	// Logger receives sampled progress and malformed-line warnings. Optional.
	Logger *slog.Logger
	// Stage labels progress logs. Defaults to "encoding".
	Stage string
}

// Monitor tracks one transcode. It is not safe for concurrent use; the reader
// goroutine owns it for the lifetime of the process.
type Monitor struct {
	total       float64
	frameMarker string
	sink        func(Update)
	logger      *slog.Logger
	stage       string
	sampler     *logging.ProgressSampler

	state     State
	displayed float64
	updates   int
	malformed int
}

// New constructs a Monitor in the Running state.
func New(opts Options) (*Monitor, error) {
	if opts.Total <= 0 || math.IsNaN(opts.Total) || math.IsInf(opts.Total, 0) {
		return nil, fmt.Errorf("progress: total duration must be positive, got %v", opts.Total)
	}
	marker := opts.FrameMarker
	if marker == "" {
		marker = VideoFrameMarker
	}
	stage := strings.TrimSpace(opts.Stage)
	if stage == "" {
		stage = "encoding"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Monitor{
		total:       opts.Total,
		frameMarker: marker,
		sink:        opts.Sink,
		logger:      logger,
		stage:       stage,
		sampler:     logging.NewProgressSampler(10),
	}, nil
}

// State returns the current lifecycle state.
func (m *Monitor) State() State { return m.state }

// Displayed returns the last percentage shown to the user.
func (m *Monitor) Displayed() float64 { return m.displayed }

// Updates returns how many progress lines produced an update.
func (m *Monitor) Updates() int { return m.updates }

// Malformed returns how many progress lines could not be parsed.
func (m *Monitor) Malformed() int { return m.malformed }

// Feed processes one line. It reports false for lines that carry no usable
// progress: lines without both markers, malformed timestamps, and anything
// received after the monitor is done. A time of N/A, printed until the first
// frame is written, is not an update and is not counted as malformed.
func (m *Monitor) Feed(line string) (Update, bool) {
	if m.state == Done {
		return Update{}, false
	}
	if !strings.Contains(line, m.frameMarker) || !strings.Contains(line, timeMarker) {
		return Update{}, false
	}

	raw := fieldValue(line, timeMarker)
	if raw == unknownTime {
		return Update{}, false
	}
	elapsed, err := ParseTimestamp(raw)
	if err != nil {
		m.malformed++
		logging.WarnWithContext(m.logger, "skipping malformed progress line", "progress_line_malformed",
			logging.String("line", strings.TrimSpace(line)),
			logging.Error(services.Wrap(services.ErrMalformedProgress, m.stage, "parse time", raw, err)),
			logging.String(logging.FieldErrorHint, "transcoder output format may have changed"),
			logging.String(logging.FieldImpact, "progress display paused until the next valid line"),
		)
		return Update{}, false
	}

	update := Update{
		Elapsed: elapsed,
		Percent: Percent(elapsed, m.total),
		Speed:   parseSpeed(fieldValue(line, speedMarker)),
	}
	m.displayed = max(m.displayed, update.Percent)
	update.Displayed = m.displayed
	if update.Speed > 0 && elapsed < m.total {
		remaining := (m.total - elapsed) / update.Speed
		update.ETA = time.Duration(remaining * float64(time.Second))
	}
	m.updates++

	if m.sink != nil {
		m.sink(update)
	}
	if m.sampler.ShouldLog(update.Displayed) {
		m.logger.Info("transcode progress",
			logging.String(logging.FieldProgressStage, m.stage),
			logging.Float64(logging.FieldProgressPercent, update.Displayed),
			logging.String(logging.FieldProgressMessage, update.Message(m.stage)),
		)
	}
	return update, true
}

// Consume feeds every line from r until it is exhausted or ctx is done, then
// moves the monitor to Done. Lines that are not progress updates are passed
// to other, which may be nil.
func (m *Monitor) Consume(ctx context.Context, r io.Reader, other func(line string)) error {
	defer func() { m.state = Done }()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanToken)
	scanner.Split(ScanLines)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, ok := m.Feed(line); !ok && other != nil && !m.isProgressLine(line) {
			other(line)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read transcoder output: %w", err)
	}
	return nil
}

// Finish moves the monitor to Done and passes through the process exit
// error. Any non-nil exitErr is a hard failure for the transcode.
func (m *Monitor) Finish(exitErr error) error {
	m.state = Done
	return exitErr
}

func (m *Monitor) isProgressLine(line string) bool {
	return strings.Contains(line, m.frameMarker) && strings.Contains(line, timeMarker)
}

// Percent converts elapsed seconds into a completion percentage clamped to
// [0, 100] and rounded to two decimals.
func Percent(elapsed, total float64) float64 {
	if total <= 0 {
		return 0
	}
	pct := elapsed / total * 100
	pct = math.Min(math.Max(pct, 0), 100)
	return math.Round(pct*100) / 100
}

// ParseTimestamp parses HH:MM:SS.fraction into seconds. A leading minus sign,
// which ffmpeg emits before the first output frame, yields a negative value.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	sign := 1.0
	if strings.HasPrefix(value, "-") {
		sign = -1
		value = value[1:]
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: want HH:MM:SS.ff", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("timestamp %q: bad hours", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("timestamp %q: bad minutes", value)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 || math.IsNaN(seconds) {
		return 0, fmt.Errorf("timestamp %q: bad seconds", value)
	}
	return sign * (float64(hours)*3600 + float64(minutes)*60 + seconds), nil
}

// ScanLines is a bufio.SplitFunc that ends a line at '\n', '\r' or "\r\n".
func ScanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Need one more byte to tell "\r" from "\r\n".
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// fieldValue returns the token following marker, tolerating the padding
// ffmpeg inserts after '=' (e.g. "frame=  120").
func fieldValue(line, marker string) string {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(line[idx+len(marker):], " ")
	if end := strings.IndexAny(rest, " \t"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func parseSpeed(value string) float64 {
	value = strings.TrimSuffix(strings.TrimSpace(value), "x")
	if value == "" {
		return 0
	}
	speed, err := strconv.ParseFloat(value, 64)
	if err != nil || speed <= 0 || math.IsInf(speed, 0) {
		return 0
	}
	return speed
}
