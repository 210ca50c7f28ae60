// Package ffprobe provides a typed wrapper around ffprobe.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Entry points:
//   - Duration: container duration in seconds, used as the progress total
//   - Inspect: full stream/format listing, used to validate encoded output
package ffprobe
