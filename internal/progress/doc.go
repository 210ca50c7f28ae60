// Package progress turns the transcoder's line-oriented stats output into a
// completion percentage.
//
// A Monitor is created per transcode with the expected output duration. It
// reads stats lines (ffmpeg terminates them with carriage returns), extracts
// the time= field, and reports a clamped, rounded percentage that never moves
// backwards on screen. Malformed lines are logged and skipped; they never end
// the transcode.
package progress
