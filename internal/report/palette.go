package report

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Kind classifies a status line.
type Kind int

const (
	KindInfo Kind = iota
	KindOK
	KindWarn
	KindError
)

// Label is the bracketed tag shown for the kind.
func (k Kind) Label() string {
	switch k {
	case KindOK:
		return "OK"
	case KindWarn:
		return "WARN"
	case KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Palette colors text by role.
type Palette struct {
	enabled bool
	info    *color.Color
	ok      *color.Color
	warn    *color.Color
	err     *color.Color
	muted   *color.Color
	heading *color.Color
}

// NewPalette returns a palette; when enabled is false every method returns
// its input unchanged.
func NewPalette(enabled bool) Palette {
	p := Palette{
		enabled: enabled,
		info:    color.New(color.FgBlue),
		ok:      color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
		muted:   color.New(color.Faint),
		heading: color.New(color.FgCyan, color.Bold),
	}
	for _, c := range []*color.Color{p.info, p.ok, p.warn, p.err, p.muted, p.heading} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Enabled reports whether the palette emits escape codes.
func (p Palette) Enabled() bool { return p.enabled }

// Kind colors s for the given status kind.
func (p Palette) Kind(kind Kind, s string) string {
	switch kind {
	case KindOK:
		return p.ok.Sprint(s)
	case KindWarn:
		return p.warn.Sprint(s)
	case KindError:
		return p.err.Sprint(s)
	default:
		return p.info.Sprint(s)
	}
}

// Muted renders secondary text.
func (p Palette) Muted(s string) string { return p.muted.Sprint(s) }

// Heading renders section titles.
func (p Palette) Heading(s string) string { return p.heading.Sprint(s) }

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
