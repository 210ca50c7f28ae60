// Package report renders pipeline results for the terminal.
//
// A Formatter owns its palette: colors are enabled only when the output is a
// terminal and the user did not pass --no-color, and nothing here touches
// fatih/color's global NoColor switch. ProgressObserver adapts a Formatter to
// pipeline.Observer, drawing download and encode bars on interactive
// terminals and plain stage lines elsewhere.
package report
