package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"sponsorcut/internal/batch"
	"sponsorcut/internal/pipeline"
	"sponsorcut/internal/services"
)

const (
	labelWidth = 18
	indent     = "  "
)

// Formatter renders user-facing output.
type Formatter struct {
	out         io.Writer
	palette     Palette
	interactive bool
}

// NewFormatter builds a formatter for out. Colors and progress bars are used
// only when out is a terminal; noColor turns colors off regardless.
func NewFormatter(out io.Writer, noColor bool) *Formatter {
	tty := IsTerminal(out)
	return &Formatter{
		out:         out,
		palette:     NewPalette(tty && !noColor),
		interactive: tty,
	}
}

// Writer returns the destination writer.
func (f *Formatter) Writer() io.Writer { return f.out }

// Palette returns the formatter's palette.
func (f *Formatter) Palette() Palette { return f.palette }

// Interactive reports whether progress bars may be drawn.
func (f *Formatter) Interactive() bool { return f.interactive }

// Println writes lines to the output.
func (f *Formatter) Println(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(f.out, line)
	}
}

// StatusLine renders "  label:   [KIND] message".
func (f *Formatter) StatusLine(label string, kind Kind, message string) string {
	tag := fmt.Sprintf("[%s]", kind.Label())
	if message != "" {
		tag += " " + message
	}
	return fmt.Sprintf("%s%-*s %s", indent, labelWidth, label+":", f.palette.Kind(kind, tag))
}

// SectionHeader renders a title with an underline.
func (f *Formatter) SectionHeader(title string) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{f.palette.Heading(line), f.palette.Muted(rule)}
}

// Outcome summarizes a finished item.
func (f *Formatter) Outcome(o pipeline.Outcome) []string {
	name := o.Title
	if name == "" {
		name = o.Locator
	}
	if !o.Succeeded() {
		lines := []string{f.StatusLine("Failed", KindError, name)}
		lines = append(lines, f.field("Stage", o.FailedStage.Label()))
		if o.Err != nil {
			lines = append(lines, f.field("Reason", services.Kind(o.Err)))
			lines = append(lines, f.field("Error", o.Err.Error()))
		}
		return lines
	}

	lines := []string{f.StatusLine("Done", KindOK, name)}
	lines = append(lines, f.field("Output", o.OutputPath))
	if o.Report.SizeBytes > 0 {
		size := humanize.IBytes(uint64(o.Report.SizeBytes))
		if o.Report.BitRate > 0 {
			size += fmt.Sprintf(" (%sbit/s)", humanize.SIWithDigits(float64(o.Report.BitRate), 1, ""))
		}
		lines = append(lines, f.field("Size", size))
	}
	if o.Duration > 0 {
		lines = append(lines, f.field("Duration", fmt.Sprintf("%s -> %s", FormatSeconds(o.Duration), FormatSeconds(o.Expected))))
	}
	removed := "nothing"
	if o.Segments.Len() > 0 {
		removed = fmt.Sprintf("%s in %d interval(s)", FormatSeconds(o.Removed()), o.Segments.Len())
	}
	lines = append(lines, f.field("Removed", removed))
	if o.SegmentsErr != nil {
		lines = append(lines, f.StatusLine("Sponsors", KindWarn, "lookup failed; nothing was removed"))
	}
	lines = append(lines, f.field("Elapsed", o.Elapsed.Round(time.Second).String()))
	return lines
}

// BatchSummary summarizes a batch run, listing failures individually.
func (f *Formatter) BatchSummary(result batch.Result) []string {
	lines := f.SectionHeader("Batch summary")
	total := len(result.Items)
	lines = append(lines,
		f.field("Items", fmt.Sprintf("%d", total)),
		f.StatusLine("Succeeded", KindOK, fmt.Sprintf("%d", result.Succeeded)),
	)
	failKind := KindOK
	if result.Failed > 0 {
		failKind = KindError
	}
	lines = append(lines, f.StatusLine("Failed", failKind, fmt.Sprintf("%d", result.Failed)))
	for _, item := range result.Failures() {
		reason := services.Kind(item.Err)
		if reason == "unknown" && item.Err != nil {
			reason = item.Err.Error()
		}
		lines = append(lines, f.palette.Muted(fmt.Sprintf("%s%s- %s (%s)", indent, indent, item.Locator, reason)))
	}
	lines = append(lines, f.field("Elapsed", result.Elapsed.Round(time.Second).String()))
	return lines
}

func (f *Formatter) field(label, value string) string {
	return fmt.Sprintf("%s%-*s %s", indent, labelWidth, label+":", value)
}

// FormatSeconds renders seconds as H:MM:SS.ss, or M:SS.ss under an hour.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	centis := int64(math.Round(seconds * 100))
	hours := centis / 360000
	minutes := (centis / 6000) % 60
	secs := float64(centis%6000) / 100
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%05.2f", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%05.2f", minutes, secs)
}
